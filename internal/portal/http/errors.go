package http

import (
	"errors"
	"net/http"

	"github.com/nhatro/ownerportal/internal/portal/session"
	"github.com/nhatro/ownerportal/pkg/authsdk"
)

// loginFailure maps a login error to a status code and error code.
func loginFailure(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, session.ErrNotAuthorizedRole):
		return http.StatusForbidden, "not_authorized_role"
	case errors.Is(err, session.ErrInvalidServerResponse):
		return http.StatusBadGateway, "invalid_server_response"
	case errors.Is(err, session.ErrInvalidToken):
		return http.StatusBadGateway, "invalid_token"
	case errors.Is(err, session.ErrStorage):
		return http.StatusInternalServerError, "storage_error"
	}

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return apiErr.StatusCode, "login_failed"
	}
	return http.StatusBadGateway, "login_failed"
}

// loginMessage returns the text to show next to the form.
func loginMessage(err error) (string, map[string]string) {
	var lerr *session.LoginError
	if errors.As(err, &lerr) {
		return lerr.Message, lerr.Fields
	}
	return session.MessageLoginFailed, nil
}
