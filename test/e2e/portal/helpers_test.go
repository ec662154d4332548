package portal_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Container setup and a fake rental backend for the owner portal
 * end-to-end tests.
 */

const (
	testImageName = "ownerportal-test:latest"

	ownerEmail  = "owner@example.com"
	tenantEmail = "tenant@example.com"
	password    = "secret1"
)

// TestMain builds the Docker image once before all tests and removes it
// afterwards.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Owner Portal Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Owner Portal Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/portal/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// backend is a stand-in for the rental management API.
type backend struct {
	server     *httptest.Server
	ownerToken string
}

func mint(t *testing.T, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  role,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return tok
}

func startBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{ownerToken: mint(t, "OWNER")}
	tenantToken := mint(t, "TENANT")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		if req.Password != password {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":1005,"message":"Email or password is incorrect"}`))
			return
		}

		token, role := tenantToken, "TENANT"
		if req.Email == ownerEmail {
			token, role = b.ownerToken, "OWNER"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 1000, "result": map[string]any{
			"accessToken": token, "refreshToken": "r.r.r", "userId": 1,
			"email": req.Email, "fullName": "Olive Owner", "role": role,
		}})
	})
	mux.HandleFunc("GET /api/rooms", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+b.ownerToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":[{"id":1,"name":"A101"}]}`))
	})
	mux.HandleFunc("GET /api/revoked", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) port(t *testing.T) int {
	t.Helper()
	_, p, err := net.SplitHostPort(b.server.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(p)
	require.NoError(t, err)
	return port
}

// setupPortalContainer starts the portal against b and returns its base URL.
func setupPortalContainer(t *testing.T, b *backend) (string, func()) {
	t.Helper()
	ctx := context.Background()
	port := b.port(t)

	req := testcontainers.ContainerRequest{
		Image:           testImageName,
		ExposedPorts:    []string{"8080/tcp"},
		HostAccessPorts: []int{port},
		Env: map[string]string{
			"PORTAL_API_BASE_URL":   fmt.Sprintf("http://%s:%d/api", testcontainers.HostInternal, port),
			"PORTAL_STORAGE_DRIVER": "sqlite",
			"PORTAL_MASTER_KEY":     "e2e-master-key",
			"ENV":                   "test",
			"LOG_LEVEL":             "info",
			"LOG_FORMAT":            "json",
			// E2E tests log in repeatedly from one address
			"RATELIMIT_LOGIN_REQUESTS":   "1000",
			"RATELIMIT_LOGIN_WINDOW_SEC": "60",
			"RATELIMIT_LOGIN_BURST":      "1000",
		},
		WaitingFor: wait.ForHTTP("/readyz").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// noRedirect is an HTTP client that reports redirects instead of following them.
var noRedirect = &http.Client{
	Timeout: 10 * time.Second,
	CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := noRedirect.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := noRedirect.Get(url)
	require.NoError(t, err)
	return resp
}

type sessionBody struct {
	State    string `json:"state"`
	Decision string `json:"decision"`
	User     *struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func currentSession(t *testing.T, baseURL string) sessionBody {
	t.Helper()
	resp := get(t, baseURL+"/v1/session")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var s sessionBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	return s
}
