package authsdk

import "encoding/json"

// ErrorResponse is the backend's error body.
type ErrorResponse struct {
	// Code is numeric on some endpoints and a string on others.
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
}

// envelope wraps every backend response.
type envelope struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the validated result of a successful credential exchange.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	UserID       int64
	Email        string
	FullName     string
	Role         string
}

// loginResultWire mirrors the result object. Pointers tell a missing field
// apart from a zero value.
type loginResultWire struct {
	AccessToken  *string `json:"accessToken"`
	RefreshToken *string `json:"refreshToken"`
	TokenType    *string `json:"tokenType"`
	UserID       *int64  `json:"userId"`
	Email        *string `json:"email"`
	FullName     *string `json:"fullName"`
	Role         *string `json:"role"`
}
