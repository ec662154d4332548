package slogx

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, parseLevel("warning"))
	require.Equal(t, slog.LevelError, parseLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestNewWritesJSONWithServiceFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Service: "ownerportal", Version: "test", Env: "test", Output: &buf})
	logger.Info("hello", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "hello", rec["msg"])
	require.Equal(t, "ownerportal", rec["service"])
	require.Equal(t, "v", rec["k"])
}

func TestNewAlsoWritesToFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "portal.log")
	logger := New(Config{Service: "ownerportal", Format: "text", File: file, Output: &buf})
	logger.Warn("rotated")

	require.Contains(t, buf.String(), "rotated")
	require.FileExists(t, file)
}

func TestHTTPMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	var fromCtx *slog.Logger
	h := HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates id when header is not a ulid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("X-Request-ID", "<script>")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusTeapot, rec.Code)
		require.NotEqual(t, "<script>", rec.Header().Get("X-Request-ID"))
		require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		require.NotSame(t, base, fromCtx)
	})

	t.Run("keeps a valid ulid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", rec.Header().Get("X-Request-ID"))
	})
}
