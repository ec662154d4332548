package http

import "github.com/nhatro/ownerportal/internal/portal/session"

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime" example:"1h2m3s"`
	Version string        `json:"version" example:"0.1.0"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks lists the readiness of each dependency.
type HealthChecks struct {
	Storage string `json:"storage" example:"ok"`
	Session string `json:"session" example:"ok"`
}

// SessionResponse describes the console session.
type SessionResponse struct {
	State    string                `json:"state" example:"authenticated"`
	Decision string                `json:"decision" example:"allow"`
	User     *session.UserIdentity `json:"user,omitempty"`
}

// LoginRequest is the JSON body of POST /v1/session.
type LoginRequest struct {
	Email    string `json:"email" example:"owner@example.com"`
	Password string `json:"password" example:"secret1"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string            `json:"error" example:"not_authorized_role"`
	Message string            `json:"message,omitempty" example:"This account does not have access to the Owner Portal."`
	Fields  map[string]string `json:"fields,omitempty"`
}
