package service

import (
	"slices"

	domainauth "github.com/musicclouds/web/internal/domain/auth"
	"github.com/musicclouds/web/internal/token"
)

// RouteGuard decides how a navigation is rendered. It holds no state and is
// safe for concurrent use; every call reads the credential it is given.
type RouteGuard struct{}

// NewRouteGuard returns a RouteGuard.
func NewRouteGuard() RouteGuard { return RouteGuard{} }

// Decide evaluates policy for a request to path carrying the raw credential
// (empty when absent). The checks run in a fixed order:
//
//  1. a missing or malformed credential shows sign-in, whatever the path
//  2. the effective role is the first role claim, or ROLE_USER
//  3. a protected path with a NonAuthenticatedPath redirects there
//  4. authorized role names are normalized to ROLE_ form
//  5. an unprotected path, or an authorized role, renders
//  6. anything else is reported as not found
//
// The redirect in step 3 wins over the role check in steps 5 and 6. Expiry
// is not checked here; callers run SessionManager.IsActive first.
func (RouteGuard) Decide(raw, path string, policy domainauth.RoutePolicy) domainauth.Decision {
	claims, err := token.Decode(raw)
	if err != nil {
		return domainauth.Decision{Outcome: domainauth.OutcomeSignIn}
	}

	role := claims.EffectiveRole()
	protected := policy.Protects(path)

	if policy.NonAuthenticatedPath != "" && protected {
		return domainauth.Decision{
			Outcome:  domainauth.OutcomeRedirect,
			Location: policy.NonAuthenticatedPath,
			Role:     role,
		}
	}

	if !protected || roleAuthorized(role, policy.AuthorizedRoles) {
		return domainauth.Decision{Outcome: domainauth.OutcomeRender, Role: role}
	}
	return domainauth.Decision{Outcome: domainauth.OutcomeNotFound, Role: role}
}

// roleAuthorized treats an empty authorized set as "any authenticated visitor".
func roleAuthorized(role domainauth.Role, names []string) bool {
	if len(names) == 0 {
		return true
	}
	return slices.ContainsFunc(names, func(name string) bool {
		return domainauth.NormalizeRole(name) == role
	})
}
