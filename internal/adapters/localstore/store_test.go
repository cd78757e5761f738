package localstore

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/musicclouds/web/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store ports.CredentialStore) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "new store should be empty")

	require.NoError(t, store.Set(ctx, "first"))
	got, ok, err := store.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "first", got)

	require.NoError(t, store.Set(ctx, "second"))
	got, _, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx), "clear must be idempotent")
	_, ok, err = store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "access_token")
	exerciseStore(t, NewFileStore(path))
}

func TestFileStore_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on windows")
	}
	path := filepath.Join(t.TempDir(), "access_token")
	store := NewFileStore(path)

	require.NoError(t, store.Set(context.Background(), "secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_BlankFileIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access_token")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	_, ok, err := NewFileStore(path).Get(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDefaultFilePath_UsesXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "musicclouds", "access_token"), DefaultFilePath())
}

func TestMemoryFactory_ScopesByVisitor(t *testing.T) {
	f := NewMemoryFactory()
	ctx := context.Background()

	require.NoError(t, f.ForVisitor("a").Set(ctx, "token-a"))

	got, ok, err := f.ForVisitor("a").Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "token-a", got)

	_, ok, err = f.ForVisitor("b").Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
