// Package token decodes the claims of bearer credentials without verifying them.
//
// The client trusts transport security and server-side enforcement; decoded
// claims are used for display and routing decisions only.
package token

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/musicclouds/web/internal/domain/auth"
)

// ErrMalformed is matched by every DecodeError.
var ErrMalformed = errors.New("malformed credential")

// DecodeError reports a credential that is present but cannot be parsed as a token.
type DecodeError struct {
	Reason string
	Cause  error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode credential: %s: %v", e.Reason, e.Cause)
	}
	return "decode credential: " + e.Reason
}

// Unwrap exposes ErrMalformed and the underlying parser error.
func (e *DecodeError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrMalformed}
	}
	return []error{ErrMalformed, e.Cause}
}

type claimSet struct {
	// ClaimStrings accepts both a single string and an array.
	Roles jwt.ClaimStrings `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

var parser = jwt.NewParser()

// Decode parses raw into its subject, roles and expiry.
//
// Missing roles decode to an empty slice and a missing exp claim decodes with
// HasExpiry=false; neither is an error. An unknown or missing alg header is
// tolerated because the signature is never checked.
func Decode(raw string) (domainauth.Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domainauth.Claims{}, &DecodeError{Reason: "empty token"}
	}

	var cs claimSet
	tok, _, err := parser.ParseUnverified(raw, &cs)
	if err != nil && (tok == nil || !errors.Is(err, jwt.ErrTokenUnverifiable)) {
		return domainauth.Claims{}, &DecodeError{Reason: "invalid token structure", Cause: err}
	}
	if cs.Subject == "" {
		return domainauth.Claims{}, &DecodeError{Reason: "missing subject claim"}
	}

	claims := domainauth.Claims{
		Subject: cs.Subject,
		Roles:   make([]domainauth.Role, 0, len(cs.Roles)),
	}
	for _, r := range cs.Roles {
		if r = strings.TrimSpace(r); r != "" {
			claims.Roles = append(claims.Roles, domainauth.Role(r))
		}
	}
	if cs.ExpiresAt != nil {
		claims.ExpiresAt = cs.ExpiresAt.Time
		claims.HasExpiry = true
	}
	return claims, nil
}
