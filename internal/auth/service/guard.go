package service

import (
	"github.com/LucianoSainz/w5d1/internal/models"
)

// RequirementKind describes how a route is protected
type RequirementKind int

// RequirementKind constants
const (
	RequirementPublic RequirementKind = iota
	RequirementAuthenticated
	RequirementRoles
)

// Requirement is the access rule attached to a route
type Requirement struct {
	Kind  RequirementKind
	Roles models.RoleSet
}

// Public returns a requirement every request satisfies
func Public() Requirement {
	return Requirement{Kind: RequirementPublic}
}

// Authenticated returns a requirement satisfied by any logged in user
func Authenticated() Requirement {
	return Requirement{Kind: RequirementAuthenticated}
}

// Roles returns a requirement satisfied by users holding one of roles
func Roles(roles ...models.Role) Requirement {
	return Requirement{Kind: RequirementRoles, Roles: models.NewRoleSet(roles...)}
}

// Decision is the outcome of an access check.
// A zero Redirect means the request is allowed.
type Decision struct {
	Redirect string
}

// Allowed reports whether the request may proceed
func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

// Allow is the decision letting a request through
var Allow = Decision{}

// DenyRedirect is the decision sending the client to target
func DenyRedirect(target string) Decision {
	return Decision{Redirect: target}
}

// Guard decides whether an identity may access a route
type Guard struct {
	loginPath string
	homePath  string
}

// NewGuard creates a guard redirecting anonymous users to loginPath and unauthorized users to homePath
func NewGuard(loginPath, homePath string) *Guard {
	return &Guard{
		loginPath: loginPath,
		homePath:  homePath,
	}
}

// RequireAuthenticated allows any present identity
func (g *Guard) RequireAuthenticated(identity *models.User) Decision {
	if identity == nil {
		return DenyRedirect(g.loginPath)
	}
	return Allow
}

// RequireRole allows identities whose role is in allowed.
// Anonymous requests go to the login page, logged in users lacking the role go home.
func (g *Guard) RequireRole(identity *models.User, allowed models.RoleSet) Decision {
	if identity == nil {
		return DenyRedirect(g.loginPath)
	}
	if !allowed.Contains(identity.Role) {
		return DenyRedirect(g.homePath)
	}
	return Allow
}

// Check applies requirement to identity
func (g *Guard) Check(identity *models.User, requirement Requirement) Decision {
	switch requirement.Kind {
	case RequirementAuthenticated:
		return g.RequireAuthenticated(identity)
	case RequirementRoles:
		return g.RequireRole(identity, requirement.Roles)
	default:
		return Allow
	}
}

// LoginPath returns where anonymous users are redirected
func (g *Guard) LoginPath() string {
	return g.loginPath
}
