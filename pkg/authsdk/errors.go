package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidServerResponse is returned when a 2xx response does not carry
	// the expected fields.
	ErrInvalidServerResponse = errors.New("authsdk: invalid server response")

	// ErrUnauthorized is returned by Session calls the backend rejected with 401.
	ErrUnauthorized = errors.New("authsdk: unauthorized")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Code is the backend's application error code, if it sent one
	Code string

	// Message is the backend's human-readable message, if it sent one
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authsdk: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("authsdk: HTTP %d: %s", e.StatusCode, e.Message)
}

// parseErrorResponse turns a non-2xx response into an *APIError. Bodies that
// are not the backend's {code, message} shape keep only the status code.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		apiErr.Code = strings.Trim(string(errResp.Code), `"`)
		apiErr.Message = strings.TrimSpace(errResp.Message)
	}

	return apiErr
}
