// Package localstore provides process-local credential stores: an in-memory
// store for development and tests, and a file store for the CLI.
package localstore

import (
	"context"
	"sync"

	"github.com/musicclouds/web/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.CredentialStore        = (*MemoryStore)(nil)
	_ ports.CredentialStoreFactory = (*MemoryFactory)(nil)
)

// MemoryStore holds a single credential in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	set   bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Get(_ context.Context) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.set, nil
}

func (m *MemoryStore) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.set = token, true
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.set = "", false
	return nil
}

// MemoryFactory keeps one MemoryStore per visitor. Used when no Redis or Postgres backend is configured.
type MemoryFactory struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

// NewMemoryFactory returns an empty factory.
func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{stores: make(map[string]*MemoryStore)}
}

//nolint:ireturn // callers only depend on the port.
func (f *MemoryFactory) ForVisitor(visitorID string) ports.CredentialStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stores[visitorID]
	if !ok {
		s = NewMemoryStore()
		f.stores[visitorID] = s
	}
	return s
}
