package http

import (
	"encoding/json"
	"net/http"

	"github.com/nhatro/ownerportal/internal/portal/route"
	"github.com/nhatro/ownerportal/internal/portal/session"
	"github.com/nhatro/ownerportal/pkg/httpx"
)

const maxJSONBody = 16 << 10

// SessionHandler is the JSON view of the console session for scripts.
type SessionHandler struct {
	Gate       *session.Gate
	Authorizer *route.Authorizer
}

func (h *SessionHandler) current() SessionResponse {
	decision, snap := h.Authorizer.Authorize()
	return SessionResponse{
		State:    snap.State.String(),
		Decision: decision.String(),
		User:     snap.User,
	}
}

// HandleGet godoc
//
//	@Summary		Current session
//	@Description	Returns the session lifecycle state, the route decision for protected views, and the signed-in operator.
//	@Description	While the stored session is still being restored, state is "restoring" and decision is "pending".
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	SessionResponse
//	@Router			/v1/session [get]
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.current())
}

// HandleCreate godoc
//
//	@Summary		Sign in
//	@Description	Exchanges owner credentials with the backend and starts the console session.
//	@Description	Accounts whose role is not owner are rejected with 403 and nothing is kept.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	SessionResponse
//	@Failure		400		{object}	ErrorResponse	"Invalid input"
//	@Failure		401		{object}	ErrorResponse	"Rejected by backend"
//	@Failure		403		{object}	ErrorResponse	"Not an owner"
//	@Failure		415		{object}	ErrorResponse	"Body is not JSON"
//	@Failure		502		{object}	ErrorResponse	"Backend failure"
//	@Router			/v1/session [post]
func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		httpx.WriteJSON(w, http.StatusUnsupportedMediaType, ErrorResponse{Error: "unsupported_media_type"})
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: "request body is not valid JSON"})
		return
	}

	if err := h.Gate.Login(r.Context(), req.Email, req.Password); err != nil {
		status, code := loginFailure(err)
		message, fields := loginMessage(err)
		httpx.WriteJSON(w, status, ErrorResponse{Error: code, Message: message, Fields: fields})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, h.current())
}

// HandleDelete godoc
//
//	@Summary		Sign out
//	@Description	Ends the console session. Always succeeds.
//	@Tags			Session
//	@Success		204
//	@Router			/v1/session [delete]
func (h *SessionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.Gate.Logout(r.Context())
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
