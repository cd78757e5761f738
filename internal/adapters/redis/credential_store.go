// Package redis provides Redis-based adapters for the Music Clouds web client.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/musicclouds/web/internal/domain/auth"
	"github.com/musicclouds/web/internal/ports"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "visitor:"

// CredentialStore keeps one bearer credential per visitor in Redis.
// Keys have the form <prefix><visitorID>:access_token.
type CredentialStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ ports.CredentialStoreFactory = (*CredentialStore)(nil)

// CredentialStoreOptions configures a CredentialStore.
type CredentialStoreOptions struct {
	// Prefix defaults to "visitor:".
	Prefix string
	// TTL bounds how long an idle credential is kept. Zero keeps it until cleared.
	TTL time.Duration
}

// NewCredentialStore creates a Redis-backed credential store.
func NewCredentialStore(client redis.UniversalClient, opts CredentialStoreOptions) *CredentialStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &CredentialStore{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

// ForVisitor returns the credential store view for a single visitor.
//
//nolint:ireturn // callers only depend on the port.
func (s *CredentialStore) ForVisitor(visitorID string) ports.CredentialStore {
	return &visitorCredential{store: s, visitorID: visitorID}
}

// Key returns the Redis key holding the visitor's credential.
func (s *CredentialStore) Key(visitorID string) string {
	return s.prefix + visitorID + ":" + auth.CredentialKey
}

type visitorCredential struct {
	store     *CredentialStore
	visitorID string
}

func (v *visitorCredential) Get(ctx context.Context) (string, bool, error) {
	if v.visitorID == "" {
		return "", false, nil
	}

	val, err := v.store.client.Get(ctx, v.store.Key(v.visitorID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (v *visitorCredential) Set(ctx context.Context, token string) error {
	if v.visitorID == "" {
		return errors.New("visitor ID cannot be empty")
	}

	if err := v.store.client.Set(ctx, v.store.Key(v.visitorID), token, v.store.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (v *visitorCredential) Clear(ctx context.Context) error {
	if v.visitorID == "" {
		return nil // Nothing to clear
	}

	if err := v.store.client.Del(ctx, v.store.Key(v.visitorID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
