package guard

import (
	"strings"

	"github.com/gophora/portal/internal/models"
)

// Decision is the outcome of authorizing a navigation: either the request
// may proceed, or the user is sent somewhere safe.
type Decision struct {
	Allow    bool
	Redirect string
}

const loginPath = "/login"

var dashboards = map[models.Role]string{
	models.RoleSeeker:   "/seeker/dashboard",
	models.RoleProvider: "/provider/dashboard",
}

// Dashboard maps a role to its home screen. Unknown or empty roles fall
// back to the login page; the portal never builds a redirect target out of
// an untrusted role string.
func Dashboard(role models.Role) string {
	if p, ok := dashboards[role]; ok {
		return p
	}
	return loginPath
}

// RequiredRole returns the role a path demands, or empty for public paths.
func RequiredRole(path string) models.Role {
	switch {
	case strings.HasPrefix(path, "/seeker/") || path == "/seeker":
		return models.RoleSeeker
	case strings.HasPrefix(path, "/provider/") || path == "/provider":
		return models.RoleProvider
	default:
		return ""
	}
}

// Authorize decides whether sess may view path.
//
// Anonymous users are sent to the login page. A signed-in user on the wrong
// role's screens is bounced to their own dashboard rather than shown an
// access-denied page; a signed-in user with a missing or unrecognized role
// is sent back to login.
func Authorize(path string, sess models.Session) Decision {
	required := RequiredRole(path)
	if required == "" {
		return Decision{Allow: true}
	}
	if !sess.LoggedIn() {
		return Decision{Redirect: loginPath}
	}
	if sess.Role != required {
		return Decision{Redirect: Dashboard(sess.Role)}
	}
	return Decision{Allow: true}
}
