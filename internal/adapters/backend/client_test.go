package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/musicclouds/web/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts.BaseURL = srv.URL
	c, err := NewClient(opts)
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"missing base", Options{}, "base URL is required"},
		{"bad scheme", Options{BaseURL: "ftp://example.com"}, "must be http or https"},
		{"bad token path", Options{BaseURL: "http://example.com", TokenPath: "a.["}, "compile token path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestClient_LoginSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/users/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in ports.LoginInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, ports.LoginInput{Email: "fan@example.com", Password: "pw"}, in)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accessToken":"abc.def.ghi","refreshToken":"r"}`))
	}, Options{})

	token, err := c.Login(context.Background(), ports.LoginInput{Email: "fan@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)
}

func TestClient_LoginCustomTokenPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"tokens":{"access":"nested-token"}}}`))
	}, Options{TokenPath: "data.tokens.access"})

	token, err := c.Login(context.Background(), ports.LoginInput{})
	require.NoError(t, err)
	assert.Equal(t, "nested-token", token)
}

func TestClient_LoginErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantReject bool
		wantStatus int
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantReject: true},
		{name: "forbidden is a network failure", status: http.StatusForbidden, wantStatus: http.StatusForbidden},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantStatus: http.StatusInternalServerError},
		{name: "missing token field", status: http.StatusOK, body: `{"other":"x"}`},
		{name: "token not a string", status: http.StatusOK, body: `{"accessToken":42}`},
		{name: "invalid json", status: http.StatusOK, body: `not json`, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, Options{})

			_, err := c.Login(context.Background(), ports.LoginInput{Email: "a@b.co", Password: "x"})
			require.Error(t, err)

			if tt.wantReject {
				var rejected *ports.AuthRejectedError
				assert.ErrorAs(t, err, &rejected)
				return
			}
			var netErr *ports.NetworkError
			require.ErrorAs(t, err, &netErr)
			assert.Equal(t, tt.wantStatus, netErr.Status)
			assert.NotErrorIs(t, err, ports.ErrAuthRejected)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(Options{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.Login(context.Background(), ports.LoginInput{})
	var netErr *ports.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Zero(t, netErr.Status)
}

func TestClient_Register(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/auth/register", r.URL.Path)
		var in ports.RegisterInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "ada", in.Username)
		_, _ = w.Write([]byte(`{"accessToken":"new-token"}`))
	}, Options{})

	token, err := c.Register(context.Background(), ports.RegisterInput{Username: "ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "new-token", token)
}

func TestClient_UsersCRUDCarriesBearer(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/users":
			_, _ = w.Write([]byte(`[
				{"id":1,"firstName":"Ada","email":"ada@example.com","role":"ADMIN","password":"hash","links":[]},
				{"id":2,"firstName":"Bob","email":"bob@example.com","role":"USER"}
			]`))
		case r.Method == http.MethodPost:
			var acct ports.Account
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&acct))
			assert.Zero(t, acct.ID)
			assert.Equal(t, "secret", acct.Password)
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}, Options{})
	ctx := context.Background()

	users, err := c.ListUsers(ctx, "admin-token")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ada@example.com", users[0].Email)
	assert.Empty(t, users[0].Password)

	require.NoError(t, c.CreateUser(ctx, "admin-token", ports.Account{ID: 9, Email: "c@example.com", Password: "secret"}))
	require.NoError(t, c.UpdateUser(ctx, "admin-token", 2, ports.Account{FirstName: "Robert"}))
	require.NoError(t, c.DeleteUser(ctx, "admin-token", 2))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"GET /api/v1/users",
		"POST /api/v1/users",
		"PUT /api/v1/users/2",
		"DELETE /api/v1/users/2",
	}, seen)
}

func TestClient_UsersUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, Options{})

	_, err := c.ListUsers(context.Background(), "stale")
	assert.ErrorIs(t, err, ports.ErrAuthRejected)
}
