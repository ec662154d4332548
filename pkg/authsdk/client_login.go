package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Login exchanges email and password for tokens via POST /auth/login.
//
// The returned result always has a non-empty AccessToken, Email and Role and
// a UserID; FullName falls back to Email when the backend omits it. Anything
// else is ErrInvalidServerResponse.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	body, err := json.Marshal(LoginRequest{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/login", bytes.NewReader(body), map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	})
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}

	return parseLoginResult(env.Result)
}

func parseLoginResult(raw json.RawMessage) (*LoginResult, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: missing result", ErrInvalidServerResponse)
	}

	var wire loginResultWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServerResponse, err)
	}

	switch {
	case wire.AccessToken == nil || *wire.AccessToken == "":
		return nil, fmt.Errorf("%w: missing accessToken", ErrInvalidServerResponse)
	case wire.UserID == nil:
		return nil, fmt.Errorf("%w: missing userId", ErrInvalidServerResponse)
	case wire.Email == nil || *wire.Email == "":
		return nil, fmt.Errorf("%w: missing email", ErrInvalidServerResponse)
	case wire.Role == nil || *wire.Role == "":
		return nil, fmt.Errorf("%w: missing role", ErrInvalidServerResponse)
	}

	result := &LoginResult{
		AccessToken: *wire.AccessToken,
		UserID:      *wire.UserID,
		Email:       *wire.Email,
		FullName:    *wire.Email,
		Role:        *wire.Role,
	}
	if wire.RefreshToken != nil {
		result.RefreshToken = *wire.RefreshToken
	}
	if wire.TokenType != nil {
		result.TokenType = *wire.TokenType
	}
	if wire.FullName != nil && strings.TrimSpace(*wire.FullName) != "" {
		result.FullName = *wire.FullName
	}
	return result, nil
}
