package route

import "slices"

const (
	// LoginPath is the only public view.
	LoginPath = "/login"

	// LandingPath is where a successful login navigates to.
	LandingPath = "/dashboard"
)

// Protected lists the console views. Every other path that is not public
// redirects to LoginPath.
var Protected = []string{
	"/",
	"/dashboard",
	"/rooms",
	"/tenants",
	"/contracts",
	"/payments",
	"/vehicles",
	"/bills",
}

// IsProtected reports whether path is a console view.
func IsProtected(path string) bool {
	return slices.Contains(Protected, path)
}
