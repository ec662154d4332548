package session

import (
	"errors"
	"strings"
)

// Login failure kinds. Match them with errors.Is on the error Login returns.
var (
	ErrInvalidInput          = errors.New("session: invalid input")
	ErrInvalidServerResponse = errors.New("session: invalid server response")
	ErrInvalidToken          = errors.New("session: invalid token")
	ErrNotAuthorizedRole     = errors.New("session: role is not authorized")
	ErrTransport             = errors.New("session: backend request failed")
	ErrStorage               = errors.New("session: persisting session failed")
)

// User-facing messages.
const (
	MessageLoginFailed       = "Login failed"
	MessageInvalidInput      = "Please correct the highlighted fields."
	MessageNoToken           = "No token was received from the server."
	MessageMalformedToken    = "The token from the server is not in the expected format."
	MessageInvalidToken      = "The token from the server is not valid."
	MessageNotAuthorizedRole = "This account does not have access to the Owner Portal."
)

// LoginError is every error Login returns.
type LoginError struct {
	// Kind is one of the Err* sentinels above
	Kind error

	// Message is safe to show next to the login form
	Message string

	// Fields maps form fields to messages; only set for ErrInvalidInput
	Fields map[string]string

	// Err is the underlying cause, if any
	Err error
}

func (e *LoginError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *LoginError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func loginError(kind error, message string, cause error) *LoginError {
	return &LoginError{Kind: kind, Message: message, Err: cause}
}
