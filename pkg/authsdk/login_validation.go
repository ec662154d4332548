package authsdk

import (
	"regexp"
	"strings"
)

// MinPasswordLength is the shortest password the login form accepts.
const MinPasswordLength = 6

var reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the login form fields before any network call.
// Returns a map of field names to error messages, or nil if all fields are valid.
func (r LoginRequest) Validate() map[string]string {
	errs := make(map[string]string)

	switch email := strings.TrimSpace(r.Email); {
	case email == "":
		errs["email"] = "Please enter your email"
	case !reEmail.MatchString(email):
		errs["email"] = "Email is not valid"
	}

	switch {
	case r.Password == "":
		errs["password"] = "Please enter your password"
	case len(r.Password) < MinPasswordLength:
		errs["password"] = "Password must be at least 6 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
