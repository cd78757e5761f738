// Package auth contains domain-level types for credentials, sessions and route access.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"slices"
	"strings"
	"time"
)

// Role represents a role claim carried by a bearer credential.
// Values use the claim format (ROLE_ prefix).
type Role string

const (
	RoleAdmin Role = "ROLE_ADMIN"
	RoleUser  Role = "ROLE_USER"

	// DefaultRole is assumed when a well-formed credential carries no roles.
	DefaultRole = RoleUser

	// RolePrefix is prepended to bare role names in route policies.
	RolePrefix = "ROLE_"
)

// CredentialKey is the fixed key under which the bearer credential is persisted.
const CredentialKey = "access_token"

// NormalizeRole converts a bare role name (ADMIN) into claim format (ROLE_ADMIN).
// Names that already carry the prefix are returned unchanged.
func NormalizeRole(name string) Role {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, RolePrefix) {
		return Role(name)
	}
	return Role(RolePrefix + name)
}

// Claims are the decoded attributes of a well-formed credential.
type Claims struct {
	Subject   string
	Roles     []Role
	ExpiresAt time.Time
	// HasExpiry is false when the token carried no exp claim.
	HasExpiry bool
}

// Expired reports whether the claims are past their expiry at now.
// Claims without an expiry never report expired; callers apply their own policy.
func (c Claims) Expired(now time.Time) bool {
	return c.HasExpiry && now.After(c.ExpiresAt)
}

// EffectiveRole is the first role claim, or DefaultRole when none is present.
func (c Claims) EffectiveRole() Role {
	if len(c.Roles) == 0 || c.Roles[0] == "" {
		return DefaultRole
	}
	return c.Roles[0]
}

// User is the session view of an authenticated visitor.
type User struct {
	Username string `json:"username"`
	Roles    []Role `json:"roles"`
}

// UserFromClaims derives the session user, applying DefaultRole when roles are empty.
func UserFromClaims(c Claims) *User {
	roles := slices.Clone(c.Roles)
	if len(roles) == 0 {
		roles = []Role{DefaultRole}
	}
	return &User{Username: c.Subject, Roles: roles}
}

// HasRole reports whether the user carries role r.
func (u *User) HasRole(r Role) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, r)
}

// IsAdmin reports whether the user carries RoleAdmin.
func (u *User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

// RoutePolicy is the static access configuration of a single route.
type RoutePolicy struct {
	// ProtectedPaths are the request paths that require a decision.
	ProtectedPaths []string
	// AuthorizedRoles are bare role names (ADMIN). Empty means any authenticated visitor.
	AuthorizedRoles []string
	// NonAuthenticatedPath, when set, is where authenticated visitors are sent
	// when they request one of ProtectedPaths.
	NonAuthenticatedPath string
}

// Protects reports whether path is one of the policy's protected paths.
func (p RoutePolicy) Protects(path string) bool {
	return slices.Contains(p.ProtectedPaths, path)
}

// Outcome is the kind of render decision made by the route guard.
type Outcome string

const (
	OutcomeSignIn   Outcome = "sign_in"
	OutcomeRedirect Outcome = "redirect"
	OutcomeRender   Outcome = "render"
	OutcomeNotFound Outcome = "not_found"
)

// Decision is the result of evaluating a route policy for one navigation.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	// Location is set for OutcomeRedirect.
	Location string `json:"location,omitempty"`
	// Role is the effective role used for the decision, empty when no credential decoded.
	Role Role `json:"role,omitempty"`
}

// NavLink is one entry of the navigation menu.
type NavLink struct {
	Name string `json:"name"`
	To   string `json:"to"`
	// AdminOnly entries are hidden from sessions without RoleAdmin.
	AdminOnly bool `json:"admin_only,omitempty"`
	// GuestOnly entries (sign in) are hidden once a session exists.
	GuestOnly bool `json:"guest_only,omitempty"`
	// RequiresSession entries are hidden when no session exists.
	RequiresSession bool `json:"requires_session,omitempty"`
	// Logout entries end the session when selected.
	Logout bool `json:"logout,omitempty"`
}
