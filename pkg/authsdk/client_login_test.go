package authsdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nhatro/ownerportal/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func backend(t *testing.T, status int, body string) (*authsdk.SDKClient, *authsdk.LoginRequest) {
	t.Helper()

	var got authsdk.LoginRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return authsdk.NewSDKClient(srv.URL+"/api/", 5*time.Second), &got
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("unwraps result", func(t *testing.T) {
		t.Parallel()
		client, got := backend(t, http.StatusOK, `{"code":1000,"message":"ok","result":{
			"accessToken":"h.p.s","refreshToken":"r.r.r","tokenType":"Bearer",
			"userId":7,"email":"a@b.com","fullName":"A B","role":"OWNER"}}`)

		res, err := client.Login(context.Background(), authsdk.LoginRequest{Email: " a@b.com ", Password: "secret1"})
		require.NoError(t, err)
		require.Equal(t, "a@b.com", got.Email)
		require.Equal(t, "secret1", got.Password)
		require.Equal(t, &authsdk.LoginResult{
			AccessToken:  "h.p.s",
			RefreshToken: "r.r.r",
			TokenType:    "Bearer",
			UserID:       7,
			Email:        "a@b.com",
			FullName:     "A B",
			Role:         "OWNER",
		}, res)
	})

	t.Run("full name falls back to email", func(t *testing.T) {
		t.Parallel()
		client, _ := backend(t, http.StatusOK, `{"result":{"accessToken":"h.p.s","userId":1,"email":"a@b.com","role":"OWNER"}}`)

		res, err := client.Login(context.Background(), authsdk.LoginRequest{Email: "a@b.com", Password: "secret1"})
		require.NoError(t, err)
		require.Equal(t, "a@b.com", res.FullName)
		require.Empty(t, res.RefreshToken)
	})

	invalid := map[string]string{
		"no result":       `{"code":1000,"message":"ok"}`,
		"null result":     `{"result":null}`,
		"no access token": `{"result":{"userId":1,"email":"a@b.com","role":"OWNER"}}`,
		"empty token":     `{"result":{"accessToken":"","userId":1,"email":"a@b.com","role":"OWNER"}}`,
		"no user id":      `{"result":{"accessToken":"h.p.s","email":"a@b.com","role":"OWNER"}}`,
		"no email":        `{"result":{"accessToken":"h.p.s","userId":1,"role":"OWNER"}}`,
		"no role":         `{"result":{"accessToken":"h.p.s","userId":1,"email":"a@b.com"}}`,
		"wrong types":     `{"result":{"accessToken":42,"userId":"x","email":"a@b.com","role":"OWNER"}}`,
		"not json":        `<html>oops</html>`,
	}
	for name, body := range invalid {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			client, _ := backend(t, http.StatusOK, body)

			_, err := client.Login(context.Background(), authsdk.LoginRequest{Email: "a@b.com", Password: "secret1"})
			require.ErrorIs(t, err, authsdk.ErrInvalidServerResponse)
		})
	}

	t.Run("backend message is kept", func(t *testing.T) {
		t.Parallel()
		client, _ := backend(t, http.StatusUnauthorized, `{"code":1005,"message":"Email or password is incorrect"}`)

		_, err := client.Login(context.Background(), authsdk.LoginRequest{Email: "a@b.com", Password: "secret1"})

		var apiErr *authsdk.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Equal(t, "1005", apiErr.Code)
		require.Equal(t, "Email or password is incorrect", apiErr.Message)
	})

	t.Run("opaque error body", func(t *testing.T) {
		t.Parallel()
		client, _ := backend(t, http.StatusBadGateway, `upstream down`)

		_, err := client.Login(context.Background(), authsdk.LoginRequest{Email: "a@b.com", Password: "secret1"})

		var apiErr *authsdk.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		require.Empty(t, apiErr.Message)
	})

	t.Run("unreachable backend", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := authsdk.NewSDKClient(url, time.Second).Login(context.Background(), authsdk.LoginRequest{Email: "a@b.com", Password: "secret1"})
		require.Error(t, err)

		var apiErr *authsdk.APIError
		require.False(t, errors.As(err, &apiErr))
	})
}

func TestLoginRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  authsdk.LoginRequest
		want map[string]string
	}{
		{"valid", authsdk.LoginRequest{Email: "a@b.com", Password: "secret"}, nil},
		{"empty", authsdk.LoginRequest{}, map[string]string{
			"email":    "Please enter your email",
			"password": "Please enter your password",
		}},
		{"bad email", authsdk.LoginRequest{Email: "a@b", Password: "secret"}, map[string]string{
			"email": "Email is not valid",
		}},
		{"email with spaces", authsdk.LoginRequest{Email: "a b@c.com", Password: "secret"}, map[string]string{
			"email": "Email is not valid",
		}},
		{"short password", authsdk.LoginRequest{Email: "a@b.com", Password: "12345"}, map[string]string{
			"password": "Password must be at least 6 characters",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.req.Validate())
		})
	}
}
