// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"sync"

	"github.com/musicclouds/web/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthAPI  = (*FakeAuthAPI)(nil)
	_ ports.UsersAPI = (*FakeUsersAPI)(nil)
)

// FakeAuthAPI returns a fixed token for every call unless a func field overrides it.
type FakeAuthAPI struct {
	LoginFunc    func(ctx context.Context, in ports.LoginInput) (string, error)
	RegisterFunc func(ctx context.Context, in ports.RegisterInput) (string, error)

	Token string

	mu        sync.Mutex
	logins    []ports.LoginInput
	registers []ports.RegisterInput
}

func (f *FakeAuthAPI) Login(ctx context.Context, in ports.LoginInput) (string, error) {
	f.mu.Lock()
	f.logins = append(f.logins, in)
	f.mu.Unlock()
	if f.LoginFunc != nil {
		return f.LoginFunc(ctx, in)
	}
	return f.Token, nil
}

func (f *FakeAuthAPI) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	f.mu.Lock()
	f.registers = append(f.registers, in)
	f.mu.Unlock()
	if f.RegisterFunc != nil {
		return f.RegisterFunc(ctx, in)
	}
	return f.Token, nil
}

// Logins returns the inputs passed to Login, in call order.
func (f *FakeAuthAPI) Logins() []ports.LoginInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.LoginInput(nil), f.logins...)
}

// Registrations returns the inputs passed to Register, in call order.
func (f *FakeAuthAPI) Registrations() []ports.RegisterInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.RegisterInput(nil), f.registers...)
}

// FakeUsersAPI keeps accounts in memory and records the bearer token of the last call.
type FakeUsersAPI struct {
	// Err, when set, is returned by every call.
	Err error

	mu        sync.Mutex
	accounts  []ports.Account
	nextID    int
	lastToken string
}

// NewFakeUsersAPI seeds the fake with accounts.
func NewFakeUsersAPI(accounts ...ports.Account) *FakeUsersAPI {
	f := &FakeUsersAPI{nextID: 1}
	for _, a := range accounts {
		if a.ID >= f.nextID {
			f.nextID = a.ID + 1
		}
		f.accounts = append(f.accounts, a)
	}
	return f
}

// LastToken returns the bearer token passed to the most recent call.
func (f *FakeUsersAPI) LastToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastToken
}

func (f *FakeUsersAPI) ListUsers(_ context.Context, token string) ([]ports.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastToken = token
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]ports.Account(nil), f.accounts...), nil
}

func (f *FakeUsersAPI) CreateUser(_ context.Context, token string, acct ports.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastToken = token
	if f.Err != nil {
		return f.Err
	}
	if f.nextID == 0 {
		f.nextID = 1
	}
	acct.ID = f.nextID
	acct.Password = ""
	f.nextID++
	f.accounts = append(f.accounts, acct)
	return nil
}

func (f *FakeUsersAPI) UpdateUser(_ context.Context, token string, id int, acct ports.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastToken = token
	if f.Err != nil {
		return f.Err
	}
	for i := range f.accounts {
		if f.accounts[i].ID == id {
			acct.ID = id
			acct.Password = ""
			f.accounts[i] = acct
			return nil
		}
	}
	return &ports.NetworkError{Op: "update user", Status: 404}
}

func (f *FakeUsersAPI) DeleteUser(_ context.Context, token string, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastToken = token
	if f.Err != nil {
		return f.Err
	}
	for i := range f.accounts {
		if f.accounts[i].ID == id {
			f.accounts = append(f.accounts[:i], f.accounts[i+1:]...)
			return nil
		}
	}
	return &ports.NetworkError{Op: "delete user", Status: 404}
}
