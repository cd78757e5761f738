package redis

import (
	"context"
	"testing"
	"time"

	"github.com/musicclouds/web/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialStore_SetAndGet(t *testing.T) {
	_, client := testutil.SetupTestRedis(t)
	store := NewCredentialStore(client, CredentialStoreOptions{})
	ctx := context.Background()

	cred := store.ForVisitor("visitor-1")

	_, ok, err := cred.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cred.Set(ctx, "token-a"))
	got, ok, err := cred.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "token-a", got)

	// Overwrite is last-write-wins.
	require.NoError(t, cred.Set(ctx, "token-b"))
	got, _, err = cred.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-b", got)
}

func TestCredentialStore_EmptyTokenIsStored(t *testing.T) {
	_, client := testutil.SetupTestRedis(t)
	store := NewCredentialStore(client, CredentialStoreOptions{})
	ctx := context.Background()

	cred := store.ForVisitor("visitor-empty")
	require.NoError(t, cred.Set(ctx, ""))

	got, ok, err := cred.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestCredentialStore_VisitorsAreIsolated(t *testing.T) {
	_, client := testutil.SetupTestRedis(t)
	store := NewCredentialStore(client, CredentialStoreOptions{})
	ctx := context.Background()

	require.NoError(t, store.ForVisitor("a").Set(ctx, "token-a"))

	_, ok, err := store.ForVisitor("b").Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCredentialStore_ClearIsIdempotent(t *testing.T) {
	_, client := testutil.SetupTestRedis(t)
	store := NewCredentialStore(client, CredentialStoreOptions{})
	ctx := context.Background()

	cred := store.ForVisitor("visitor-clear")
	require.NoError(t, cred.Set(ctx, "token"))
	require.NoError(t, cred.Clear(ctx))
	require.NoError(t, cred.Clear(ctx))

	_, ok, err := cred.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCredentialStore_CustomPrefixAndKey(t *testing.T) {
	_, client := testutil.SetupTestRedis(t)
	store := NewCredentialStore(client, CredentialStoreOptions{Prefix: "test-prefix:"})
	ctx := context.Background()

	require.NoError(t, store.ForVisitor("v1").Set(ctx, "token"))

	assert.Equal(t, "test-prefix:v1:access_token", store.Key("v1"))
	exists := client.Exists(ctx, "test-prefix:v1:access_token").Val()
	assert.Equal(t, int64(1), exists)
}

func TestCredentialStore_TTLExpiration(t *testing.T) {
	mr, client := testutil.SetupTestRedis(t)
	store := NewCredentialStore(client, CredentialStoreOptions{TTL: time.Minute})
	ctx := context.Background()

	cred := store.ForVisitor("visitor-ttl")
	require.NoError(t, cred.Set(ctx, "token"))

	mr.FastForward(2 * time.Minute)

	_, ok, err := cred.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCredentialStore_EmptyVisitor(t *testing.T) {
	_, client := testutil.SetupTestRedis(t)
	store := NewCredentialStore(client, CredentialStoreOptions{})
	ctx := context.Background()

	cred := store.ForVisitor("")
	_, ok, err := cred.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	err = cred.Set(ctx, "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "visitor ID cannot be empty")
	assert.NoError(t, cred.Clear(ctx))
}

func TestCredentialStore_BackendFailure(t *testing.T) {
	mr, client := testutil.SetupTestRedis(t)
	store := NewCredentialStore(client, CredentialStoreOptions{})
	ctx := context.Background()

	mr.SetError("ERR simulated failure")

	_, ok, err := store.ForVisitor("v").Get(ctx)
	require.Error(t, err)
	assert.False(t, ok)
}
