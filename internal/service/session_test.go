package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/musicclouds/web/internal/adapters/localstore"
	"github.com/musicclouds/web/internal/data"
	domainauth "github.com/musicclouds/web/internal/domain/auth"
	"github.com/musicclouds/web/internal/mocks"
	"github.com/musicclouds/web/internal/ports"
	"github.com/musicclouds/web/internal/testutil"
	"github.com/musicclouds/web/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type sessionFixture struct {
	mgr   *SessionManager
	store *localstore.MemoryStore
	api   *mocks.MockAuthAPI
	clock *data.FixedTimeProvider
	logs  *bytes.Buffer
}

func newSessionFixture(t *testing.T, policy SessionPolicy) *sessionFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &sessionFixture{
		store: localstore.NewMemoryStore(),
		api:   mocks.NewMockAuthAPI(ctrl),
		clock: data.NewFixedTimeProvider(time.Now()),
		logs:  &bytes.Buffer{},
	}
	f.mgr = NewSessionManager(SessionOptions{
		Store:  f.store,
		Auth:   f.api,
		Clock:  f.clock,
		Logger: slog.New(slog.NewJSONHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Policy: policy,
	})
	return f
}

func (f *sessionFixture) stored(t *testing.T) (string, bool) {
	t.Helper()
	raw, ok, err := f.store.Get(context.Background())
	require.NoError(t, err)
	return raw, ok
}

func TestSessionManager_RestoreEmptyStore(t *testing.T) {
	f := newSessionFixture(t, SessionPolicy{})
	f.mgr.Restore(context.Background())
	assert.Nil(t, f.mgr.User())
}

func TestSessionManager_RestoreWellFormed(t *testing.T) {
	f := newSessionFixture(t, SessionPolicy{})
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, testutil.AdminToken(t, "admin@example.com")))

	f.mgr.Restore(ctx)

	user := f.mgr.User()
	require.NotNil(t, user)
	assert.Equal(t, "admin@example.com", user.Username)
	assert.Equal(t, []domainauth.Role{domainauth.RoleAdmin}, user.Roles)
}

func TestSessionManager_RestoreAppliesDefaultRole(t *testing.T) {
	f := newSessionFixture(t, SessionPolicy{})
	ctx := context.Background()
	raw := testutil.BuildToken(t, testutil.TokenSpec{Subject: "fan@example.com", ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, f.store.Set(ctx, raw))

	f.mgr.Restore(ctx)

	require.NotNil(t, f.mgr.User())
	assert.Equal(t, []domainauth.Role{domainauth.DefaultRole}, f.mgr.User().Roles)
}

func TestSessionManager_RestoreMalformed(t *testing.T) {
	tests := []struct {
		name      string
		purge     bool
		wantKept  bool
		wantPurge string
	}{
		{name: "purged when policy enabled", purge: true, wantKept: false, wantPurge: `"purge":true`},
		{name: "kept when policy disabled", purge: false, wantKept: true, wantPurge: `"purge":false`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(t, SessionPolicy{PurgeMalformed: tt.purge})
			ctx := context.Background()
			require.NoError(t, f.store.Set(ctx, "not-a-token"))

			f.mgr.Restore(ctx)

			assert.Nil(t, f.mgr.User())
			_, ok := f.stored(t)
			assert.Equal(t, tt.wantKept, ok)
			assert.Contains(t, f.logs.String(), "credential decode failed")
			assert.Contains(t, f.logs.String(), tt.wantPurge)
		})
	}
}

func TestSessionManager_LoginSuccess(t *testing.T) {
	f := newSessionFixture(t, SessionPolicy{})
	ctx := context.Background()
	raw := testutil.AdminToken(t, "admin@example.com")
	in := ports.LoginInput{Email: "admin@example.com", Password: "password"}

	f.api.EXPECT().Login(gomock.Any(), in).Return(raw, nil)

	user, err := f.mgr.Login(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Username)
	assert.True(t, f.mgr.User().IsAdmin())

	stored, ok := f.stored(t)
	assert.True(t, ok)
	assert.Equal(t, raw, stored)
}

func TestSessionManager_LoginFailureLeavesSessionUnchanged(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want func(t *testing.T, err error)
	}{
		{
			name: "rejected",
			err:  &ports.AuthRejectedError{Op: "login"},
			want: func(t *testing.T, err error) {
				var rejected *ports.AuthRejectedError
				assert.ErrorAs(t, err, &rejected)
			},
		},
		{
			name: "network",
			err:  &ports.NetworkError{Op: "login", Status: http.StatusBadGateway},
			want: func(t *testing.T, err error) {
				var netErr *ports.NetworkError
				assert.ErrorAs(t, err, &netErr)
				assert.NotErrorIs(t, err, ports.ErrAuthRejected)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(t, SessionPolicy{})
			ctx := context.Background()
			existing := testutil.UserToken(t, "fan@example.com")
			require.NoError(t, f.store.Set(ctx, existing))
			f.mgr.Restore(ctx)

			f.api.EXPECT().Login(gomock.Any(), gomock.Any()).Return("", tt.err)

			user, err := f.mgr.Login(ctx, ports.LoginInput{Email: "fan@example.com", Password: "wrong"})
			require.Error(t, err)
			assert.Nil(t, user)
			assert.Same(t, tt.err, err)
			tt.want(t, err)

			require.NotNil(t, f.mgr.User())
			assert.Equal(t, "fan@example.com", f.mgr.User().Username)
			stored, _ := f.stored(t)
			assert.Equal(t, existing, stored)
			assert.Contains(t, f.logs.String(), "login failed")
		})
	}
}

func TestSessionManager_LoginWithMalformedIssuedToken(t *testing.T) {
	f := newSessionFixture(t, SessionPolicy{PurgeMalformed: true})
	f.api.EXPECT().Login(gomock.Any(), gomock.Any()).Return("garbage", nil)

	_, err := f.mgr.Login(context.Background(), ports.LoginInput{Email: "a@b.co", Password: "pw"})

	require.ErrorIs(t, err, token.ErrMalformed)
	assert.Nil(t, f.mgr.User())
	_, ok := f.stored(t)
	assert.False(t, ok)
}

func TestSessionManager_LoginStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCredentialStore(ctrl)
	api := mocks.NewMockAuthAPI(ctrl)
	mgr := NewSessionManager(SessionOptions{Store: store, Auth: api})

	api.EXPECT().Login(gomock.Any(), gomock.Any()).Return(testutil.UserToken(t, "fan@example.com"), nil)
	store.EXPECT().Set(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	_, err := mgr.Login(context.Background(), ports.LoginInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store credential")
	assert.Nil(t, mgr.User())
}

func TestSessionManager_Register(t *testing.T) {
	f := newSessionFixture(t, SessionPolicy{})
	in := ports.RegisterInput{FirstName: "Ada", Email: "ada@example.com", Username: "ada", Password: "pw"}
	f.api.EXPECT().Register(gomock.Any(), in).Return(testutil.UserToken(t, "ada@example.com"), nil)

	user, err := f.mgr.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Username)
	_, ok := f.stored(t)
	assert.True(t, ok)
}

func TestSessionManager_LogoutThenRestore(t *testing.T) {
	f := newSessionFixture(t, SessionPolicy{})
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, testutil.UserToken(t, "fan@example.com")))
	f.mgr.Restore(ctx)
	require.NotNil(t, f.mgr.User())

	f.mgr.Logout(ctx)
	f.mgr.Restore(ctx)

	assert.Nil(t, f.mgr.User())
	_, ok := f.stored(t)
	assert.False(t, ok)
}

func TestSessionManager_LogoutToleratesStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCredentialStore(ctrl)
	store.EXPECT().Clear(gomock.Any()).Return(errors.New("unavailable"))

	mgr := NewSessionManager(SessionOptions{Store: store})
	assert.NotPanics(t, func() { mgr.Logout(context.Background()) })
	assert.Nil(t, mgr.User())
}

func TestSessionManager_IsActive(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		raw        func(t *testing.T) string
		policy     SessionPolicy
		wantActive bool
		wantStored bool
	}{
		{
			name:       "no credential",
			raw:        func(*testing.T) string { return "" },
			wantActive: false,
			wantStored: false,
		},
		{
			name: "unexpired",
			raw: func(t *testing.T) string {
				return testutil.BuildToken(t, testutil.TokenSpec{Subject: "a", ExpiresAt: now.Add(time.Minute)})
			},
			wantActive: true,
			wantStored: true,
		},
		{
			name: "expired is cleared",
			raw: func(t *testing.T) string {
				return testutil.BuildToken(t, testutil.TokenSpec{Subject: "a", ExpiresAt: now.Add(-time.Second)})
			},
			wantActive: false,
			wantStored: false,
		},
		{
			name: "no expiry rejected by default",
			raw: func(t *testing.T) string {
				return testutil.BuildToken(t, testutil.TokenSpec{Subject: "a"})
			},
			wantActive: false,
			wantStored: false,
		},
		{
			name: "no expiry allowed by policy",
			raw: func(t *testing.T) string {
				return testutil.BuildToken(t, testutil.TokenSpec{Subject: "a"})
			},
			policy:     SessionPolicy{AllowNonExpiring: true},
			wantActive: true,
			wantStored: true,
		},
		{
			name:       "malformed kept without purge",
			raw:        func(*testing.T) string { return "x.y.z" },
			wantActive: false,
			wantStored: true,
		},
		{
			name:       "malformed purged",
			raw:        func(*testing.T) string { return "x.y.z" },
			policy:     SessionPolicy{PurgeMalformed: true},
			wantActive: false,
			wantStored: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(t, tt.policy)
			f.clock.SetTime(now)
			ctx := context.Background()
			if raw := tt.raw(t); raw != "" {
				require.NoError(t, f.store.Set(ctx, raw))
			}
			f.mgr.Restore(ctx)

			assert.Equal(t, tt.wantActive, f.mgr.IsActive(ctx))
			_, ok := f.stored(t)
			assert.Equal(t, tt.wantStored, ok)
			if !tt.wantActive {
				assert.Nil(t, f.mgr.User())
			}
		})
	}
}

func TestSessionManager_ExpiryLogged(t *testing.T) {
	f := newSessionFixture(t, SessionPolicy{})
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, testutil.ExpiredToken(t, "late@example.com")))

	assert.False(t, f.mgr.IsActive(ctx))
	assert.Contains(t, f.logs.String(), "session expired")
	assert.Contains(t, f.logs.String(), "past_expiry")
}

func TestSessionManager_StoreReadFailureIsAbsent(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCredentialStore(ctrl)
	store.EXPECT().Get(gomock.Any()).Return("", false, errors.New("timeout")).Times(2)

	mgr := NewSessionManager(SessionOptions{Store: store})
	mgr.Restore(context.Background())
	assert.Nil(t, mgr.User())
	assert.False(t, mgr.IsActive(context.Background()))
}

func TestSessionManager_ConcurrentLoginsLastWriteWins(t *testing.T) {
	f := newSessionFixture(t, SessionPolicy{})
	tokens := []string{
		testutil.UserToken(t, "one@example.com"),
		testutil.UserToken(t, "two@example.com"),
	}
	f.api.EXPECT().Login(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, in ports.LoginInput) (string, error) {
			if in.Email == "one@example.com" {
				return tokens[0], nil
			}
			return tokens[1], nil
		},
	).Times(2)

	var wg sync.WaitGroup
	for _, email := range []string{"one@example.com", "two@example.com"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.mgr.Login(context.Background(), ports.LoginInput{Email: email, Password: "pw"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, ok := f.stored(t)
	require.True(t, ok)
	assert.Contains(t, tokens, stored)
	require.NotNil(t, f.mgr.User())
}

func TestSessionFactory_ScopesByVisitor(t *testing.T) {
	stores := localstore.NewMemoryFactory()
	ctx := context.Background()
	require.NoError(t, stores.ForVisitor("v1").Set(ctx, testutil.AdminToken(t, "admin@example.com")))

	factory := NewSessionFactory(stores, SessionOptions{})

	m1 := factory.ForVisitor(ctx, "v1")
	require.NotNil(t, m1.User())
	assert.True(t, m1.User().IsAdmin())

	m2 := factory.ForVisitor(ctx, "v2")
	assert.Nil(t, m2.User())
}

func TestSessionManager_UserReturnsCopy(t *testing.T) {
	f := newSessionFixture(t, SessionPolicy{})
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, testutil.AdminToken(t, "admin@example.com")))
	f.mgr.Restore(ctx)

	u := f.mgr.User()
	u.Roles[0] = domainauth.RoleUser
	assert.True(t, f.mgr.User().IsAdmin())
}
