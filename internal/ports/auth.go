// Package ports defines interfaces (hexagonal ports) for session-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"time"
)

// CredentialStore persists a single bearer credential for one visitor.
// Writes are single-value overwrites; no validation is performed.
type CredentialStore interface {
	// Get returns the stored credential and whether one is present.
	Get(ctx context.Context) (string, bool, error)
	// Set overwrites the stored credential.
	Set(ctx context.Context, token string) error
	// Clear removes the stored credential. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// CredentialStoreFactory scopes a credential store to a visitor.
type CredentialStoreFactory interface {
	ForVisitor(visitorID string) CredentialStore
}

// LoginInput carries the credentials submitted on the sign-in form.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput carries the sign-up form fields.
type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Age       int    `json:"age,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

// AuthAPI is the remote authentication endpoint.
type AuthAPI interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, in LoginInput) (string, error)
	// Register creates an account and returns its bearer token.
	Register(ctx context.Context, in RegisterInput) (string, error)
}

// Account is a user record as returned by the remote user service.
type Account struct {
	ID        int    `json:"id,omitempty"       yaml:"id"`
	FirstName string `json:"firstName"           yaml:"first_name"`
	LastName  string `json:"lastName"            yaml:"last_name"`
	Email     string `json:"email"               yaml:"email"`
	Username  string `json:"username"            yaml:"username"`
	Age       int    `json:"age,omitempty"       yaml:"age,omitempty"`
	Gender    string `json:"gender,omitempty"    yaml:"gender,omitempty"`
	Role      string `json:"role,omitempty"      yaml:"role,omitempty"`
	Password  string `json:"password,omitempty"  yaml:"-"`
}

// UsersAPI is the remote user-management endpoint used by the admin screens.
// Every call carries the caller's bearer credential.
type UsersAPI interface {
	ListUsers(ctx context.Context, token string) ([]Account, error)
	CreateUser(ctx context.Context, token string, acct Account) error
	UpdateUser(ctx context.Context, token string, id int, acct Account) error
	DeleteUser(ctx context.Context, token string, id int) error
}

// Clock abstracts time for expiry checks.
type Clock interface {
	Now() time.Time
}
