package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/nhatro/ownerportal/internal/portal/route"
	"github.com/nhatro/ownerportal/internal/portal/session"
	"github.com/nhatro/ownerportal/pkg/httpx"
)

// LoginHandler serves the login form and the logout action.
type LoginHandler struct {
	Gate       *session.Gate
	Authorizer *route.Authorizer
	Views      *Views
	FormToken  string
}

// HandleForm renders the login form, or sends an operator who is already
// signed in to the landing page.
func (h *LoginHandler) HandleForm(w http.ResponseWriter, r *http.Request) {
	if decision, _ := h.Authorizer.Authorize(); decision == route.Allow {
		httpx.NoCache(w)
		http.Redirect(w, r, route.LandingPath, http.StatusSeeOther)
		return
	}
	h.Views.Login(w, r, http.StatusOK, loginPage{})
}

// HandleSubmit processes the login form.
func (h *LoginHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Views.Login(w, r, http.StatusBadRequest, loginPage{Message: session.MessageLoginFailed})
		return
	}
	if !h.validFormToken(r) {
		h.Views.Login(w, r, http.StatusForbidden, loginPage{Message: "Your form expired. Please try again."})
		return
	}

	email := r.PostFormValue("email")
	if err := h.Gate.Login(r.Context(), email, r.PostFormValue("password")); err != nil {
		status, _ := loginFailure(err)
		message, fields := loginMessage(err)
		h.Views.Login(w, r, status, loginPage{Email: email, Message: message, Fields: fields})
		return
	}

	httpx.NoCache(w)
	http.Redirect(w, r, route.LandingPath, http.StatusSeeOther)
}

// HandleLogout ends the session and returns to the login form.
func (h *LoginHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || !h.validFormToken(r) {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	h.Gate.Logout(r.Context())

	httpx.NoCache(w)
	http.Redirect(w, r, route.LoginPath, http.StatusSeeOther)
}

func (h *LoginHandler) validFormToken(r *http.Request) bool {
	got := r.PostFormValue("form_token")
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(h.FormToken)) == 1
}
