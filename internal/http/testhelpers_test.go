package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/musicclouds/web/internal/adapters/localstore"
	mockauth "github.com/musicclouds/web/internal/mocks/auth"
	"github.com/musicclouds/web/internal/observability/statsd"
	"github.com/musicclouds/web/internal/ports"
	"github.com/musicclouds/web/internal/service"
	"github.com/stretchr/testify/require"
)

const testCookie = "mc_visitor"

type webFixture struct {
	handler http.Handler
	stores  *localstore.MemoryFactory
	auth    *mockauth.FakeAuthAPI
	users   *mockauth.FakeUsersAPI
	metrics *statsd.Recorder
}

func newWebFixture(t *testing.T) *webFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &webFixture{
		stores: localstore.NewMemoryFactory(),
		auth:   &mockauth.FakeAuthAPI{},
		users: mockauth.NewFakeUsersAPI(
			ports.Account{ID: 1, FirstName: "Ada", LastName: "Admin", Username: "ada", Email: "ada@musicclouds.io", Role: "ADMIN"},
			ports.Account{ID: 2, FirstName: "Lou", LastName: "Listener", Username: "lou", Email: "lou@musicclouds.io", Age: 31},
		),
		metrics: &statsd.Recorder{},
	}

	sessions := service.NewSessionFactory(f.stores, service.SessionOptions{
		Auth:    f.auth,
		Logger:  logger,
		Metrics: f.metrics,
		Policy:  service.SessionPolicy{PurgeMalformed: true},
	})

	h, err := NewRouter(RouterServices{
		Sessions: sessions,
		Guard:    service.NewRouteGuard(),
		Users:    f.users,
		Visitor:  VisitorCookie{Name: testCookie},
		Metrics:  f.metrics,
		Logger:   logger,
	})
	require.NoError(t, err)
	f.handler = h
	return f
}

// visitorWith stores token (if non-empty) for a fresh visitor and returns the visitor ID.
func (f *webFixture) visitorWith(t *testing.T, token string) string {
	t.Helper()
	id := uuid.NewString()
	if token != "" {
		require.NoError(t, f.stores.ForVisitor(id).Set(context.Background(), token))
	}
	return id
}

func (f *webFixture) stored(t *testing.T, visitorID string) (string, bool) {
	t.Helper()
	raw, ok, err := f.stores.ForVisitor(visitorID).Get(context.Background())
	require.NoError(t, err)
	return raw, ok
}

func (f *webFixture) get(visitorID, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if visitorID != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: visitorID})
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *webFixture) post(visitorID, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if visitorID != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: visitorID})
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func errUnavailable() error {
	return &ports.NetworkError{Op: "list users", Status: http.StatusServiceUnavailable}
}
