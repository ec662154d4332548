package session

import (
	"github.com/nhatro/ownerportal/pkg/jwtx"
)

// UserIdentity is the operator the session belongs to.
type UserIdentity struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"fullName"`
}

// HasOwnerRole reports whether the identity's role denotes the owner role.
func (u UserIdentity) HasOwnerRole() bool {
	return jwtx.RoleDenotesOwner(u.Role)
}

// identityFromClaims builds the last-resort identity used when no richer
// cached identity was saved at login.
func identityFromClaims(c jwtx.Claims) UserIdentity {
	return UserIdentity{
		ID:       0,
		Email:    c.Subject,
		Role:     jwtx.StripRolePrefix(c.Role),
		FullName: c.Subject,
	}
}

// State is a point in the session lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateRestoring
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent read of the session.
type Snapshot struct {
	State State
	User  *UserIdentity
}

// HasOwnerRole is false without a user.
func (s Snapshot) HasOwnerRole() bool {
	return s.User != nil && s.User.HasOwnerRole()
}
