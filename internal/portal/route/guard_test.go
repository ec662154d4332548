package route_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nhatro/ownerportal/internal/portal/route"
	"github.com/nhatro/ownerportal/internal/portal/session"
)

type fixedSession session.Snapshot

func (f fixedSession) Snapshot() session.Snapshot { return session.Snapshot(f) }

type views struct{}

func (views) Pending(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) }
func (views) Denied(w http.ResponseWriter, r *http.Request)  { w.WriteHeader(http.StatusForbidden) }

func serve(h http.Handler) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	return rec
}

func TestGuard(t *testing.T) {
	t.Parallel()

	var seen session.UserIdentity
	page := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := route.UserFromContext(r.Context())
		require.True(t, ok)
		seen = u
		w.WriteHeader(http.StatusOK)
	})

	owner := &session.UserIdentity{ID: 1, Email: "a@b.com", Role: "OWNER"}

	t.Run("allow passes user", func(t *testing.T) {
		a := route.NewAuthorizer(fixedSession{State: session.StateAuthenticated, User: owner})
		rec := serve(route.Guard(a, views{})(page))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, *owner, seen)
	})

	t.Run("pending renders view", func(t *testing.T) {
		a := route.NewAuthorizer(fixedSession{State: session.StateRestoring})
		require.Equal(t, http.StatusServiceUnavailable, serve(route.Guard(a, views{})(page)).Code)
	})

	t.Run("deny renders view", func(t *testing.T) {
		a := route.NewAuthorizer(fixedSession{State: session.StateAuthenticated, User: &session.UserIdentity{Role: "TENANT"}})
		require.Equal(t, http.StatusForbidden, serve(route.Guard(a, views{})(page)).Code)
	})

	t.Run("unauthenticated redirects", func(t *testing.T) {
		a := route.NewAuthorizer(fixedSession{State: session.StateUnauthenticated})
		rec := serve(route.Guard(a, views{})(page))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, route.LoginPath, rec.Header().Get("Location"))
	})
}

func TestGuardAPI(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name string
		snap session.Snapshot
		code int
	}{
		{"allow", session.Snapshot{State: session.StateAuthenticated, User: &session.UserIdentity{Role: "ROLE_OWNER"}}, http.StatusNoContent},
		{"pending", session.Snapshot{State: session.StateUninitialized}, http.StatusServiceUnavailable},
		{"deny", session.Snapshot{State: session.StateAuthenticated, User: &session.UserIdentity{Role: "TENANT"}}, http.StatusForbidden},
		{"unauthenticated", session.Snapshot{State: session.StateUnauthenticated}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(route.GuardAPI(route.NewAuthorizer(fixedSession(tt.snap)))(ok))
			require.Equal(t, tt.code, rec.Code)
		})
	}
}
