package authsdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// TokenSource yields the access token to attach to the next request. An empty
// string means no credential is held.
type TokenSource interface {
	AccessToken() string
}

// UnauthorizedFunc is called when the backend rejects a Session call with 401.
// rejected is the access token that was sent, empty if none was.
type UnauthorizedFunc func(ctx context.Context, rejected string)

// Session performs authenticated calls on behalf of a TokenSource.
type Session struct {
	client         *SDKClient
	tokens         TokenSource
	onUnauthorized UnauthorizedFunc
}

// NewSession creates a Session. onUnauthorized may be nil.
func (c *SDKClient) NewSession(tokens TokenSource, onUnauthorized UnauthorizedFunc) *Session {
	return &Session{
		client:         c,
		tokens:         tokens,
		onUnauthorized: onUnauthorized,
	}
}

// Do sends an authenticated request. The bearer header is attached when the
// TokenSource holds a token. A 401 response runs the unauthorized hook, is
// closed, and is reported as ErrUnauthorized. Any other response is returned
// as-is and the caller must close its body.
func (s *Session) Do(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers http.Header,
) (*http.Response, error) {
	token := s.tokens.AccessToken()

	resp, err := s.doAuthRequest(ctx, method, path, body, headers, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		if s.onUnauthorized != nil {
			s.onUnauthorized(ctx, token)
		}
		return nil, ErrUnauthorized
	}

	return resp, nil
}

// doAuthRequest performs an HTTP request with the given bearer token.
func (s *Session) doAuthRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers http.Header,
	token string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.client.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Del("Authorization")
	}

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}
