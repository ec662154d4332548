package jwtx

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OwnerRole is the role fragment that grants access to the console. Issuers
// namespace it (e.g. "ROLE_OWNER") so it is matched as a substring.
const OwnerRole = "OWNER"

// rolePrefix is the namespace the backend puts in front of role names.
const rolePrefix = "ROLE_"

// Claims are the access-token claims the console reads. Only sub, role and
// exp are required; everything else in the payload is carried along by
// jwt.RegisteredClaims when present.
type Claims struct {
	jwt.RegisteredClaims

	// Role is the namespaced role tag issued by the backend, "ROLE_OWNER".
	Role string `json:"role,omitempty"`
}

// IsExpired reports whether the claims are no longer valid at now. Expiry is
// compared in whole epoch seconds and a token whose exp equals now is already
// expired. There is no leeway for clock skew.
func IsExpired(c Claims, now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return c.ExpiresAt.Unix() <= now.Unix()
}

// RoleDenotesOwner reports whether a role claim grants owner access. The
// comparison is a case-insensitive substring match so "ROLE_OWNER",
// "owner" and "ROLE_OWNER_ADMIN" all qualify.
func RoleDenotesOwner(role string) bool {
	return strings.Contains(strings.ToUpper(role), OwnerRole)
}

// StripRolePrefix removes a leading "ROLE_" namespace (any case) so the
// bare role name can be shown to the user.
func StripRolePrefix(role string) string {
	if len(role) >= len(rolePrefix) && strings.EqualFold(role[:len(rolePrefix)], rolePrefix) {
		return role[len(rolePrefix):]
	}
	return role
}
