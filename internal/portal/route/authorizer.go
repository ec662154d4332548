// Package route decides, for every navigation, whether the console renders
// the requested view, sends the operator to the login view, or refuses.
package route

import (
	"github.com/nhatro/ownerportal/internal/portal/session"
)

// Decision is the outcome of authorizing one navigation.
type Decision int

const (
	// Pending holds while the session is still being restored.
	Pending Decision = iota
	Allow
	RedirectToLogin
	Deny
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_to_login"
	case Deny:
		return "deny"
	default:
		return "unknown"
	}
}

// Authorize maps a session snapshot to a decision. It has no side effects.
func Authorize(s session.Snapshot) Decision {
	switch s.State {
	case session.StateUninitialized, session.StateRestoring:
		return Pending
	case session.StateAuthenticated:
		if !s.HasOwnerRole() {
			return Deny
		}
		return Allow
	default:
		return RedirectToLogin
	}
}

// SessionReader is the read side of session.Gate.
type SessionReader interface {
	Snapshot() session.Snapshot
}

// Authorizer evaluates Authorize against the live session.
type Authorizer struct {
	sessions SessionReader
}

func NewAuthorizer(sessions SessionReader) *Authorizer {
	return &Authorizer{sessions: sessions}
}

// Authorize returns the decision for the current session along with the
// snapshot it was made from.
func (a *Authorizer) Authorize() (Decision, session.Snapshot) {
	snap := a.sessions.Snapshot()
	return Authorize(snap), snap
}
