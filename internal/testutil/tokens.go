package testutil

import (
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// testSigningKey signs tokens built for tests. The client never verifies signatures.
var testSigningKey = []byte("musicclouds-test-signing-key")

// TokenSpec describes the claims of a token built for tests.
type TokenSpec struct {
	Subject string
	Roles   []string
	// ExpiresAt is omitted from the token when zero.
	ExpiresAt time.Time
	// RolesAsString encodes a single role as a JSON string instead of an array.
	RolesAsString bool
}

// BuildToken returns an HS256-signed JWT carrying the given claims.
func BuildToken(t TestingTB, spec TokenSpec) string {
	t.Helper()

	claims := jwt.MapClaims{}
	if spec.Subject != "" {
		claims["sub"] = spec.Subject
	}
	switch {
	case spec.RolesAsString && len(spec.Roles) > 0:
		claims["roles"] = spec.Roles[0]
	case len(spec.Roles) > 0:
		claims["roles"] = spec.Roles
	}
	if !spec.ExpiresAt.IsZero() {
		claims["exp"] = spec.ExpiresAt.Unix()
	}
	claims["iat"] = time.Now().Unix()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	if err != nil {
		t.Fatal("sign test token:", err)
	}
	return signed
}

// AdminToken returns a token for subject with ROLE_ADMIN expiring in one hour.
func AdminToken(t TestingTB, subject string) string {
	t.Helper()
	return BuildToken(t, TokenSpec{Subject: subject, Roles: []string{"ROLE_ADMIN"}, ExpiresAt: time.Now().Add(time.Hour)})
}

// UserToken returns a token for subject with ROLE_USER expiring in one hour.
func UserToken(t TestingTB, subject string) string {
	t.Helper()
	return BuildToken(t, TokenSpec{Subject: subject, Roles: []string{"ROLE_USER"}, ExpiresAt: time.Now().Add(time.Hour)})
}

// ExpiredToken returns a token for subject that expired one hour ago.
func ExpiredToken(t TestingTB, subject string) string {
	t.Helper()
	return BuildToken(t, TokenSpec{Subject: subject, Roles: []string{"ROLE_USER"}, ExpiresAt: time.Now().Add(-time.Hour)})
}

// UnsignedToken returns a header.payload.signature string whose alg is "none"-like garbage,
// built from raw JSON segments.
func UnsignedToken(headerJSON, payloadJSON string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(headerJSON)) + "." + enc.EncodeToString([]byte(payloadJSON)) + "."
}
