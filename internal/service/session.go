package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/musicclouds/web/internal/domain/auth"
	obserrors "github.com/musicclouds/web/internal/observability/errors"
	"github.com/musicclouds/web/internal/observability/metrics"
	"github.com/musicclouds/web/internal/observability/statsd"
	"github.com/musicclouds/web/internal/ports"
	"github.com/musicclouds/web/internal/token"
)

// SessionPolicy resolves how stored credentials that are malformed or carry
// no expiry are handled.
type SessionPolicy struct {
	// PurgeMalformed clears a stored credential that fails to decode.
	PurgeMalformed bool
	// AllowNonExpiring keeps credentials without an exp claim active.
	AllowNonExpiring bool
}

// SessionOptions groups dependencies for SessionManager.
type SessionOptions struct {
	Store   ports.CredentialStore
	Auth    ports.AuthAPI
	Clock   ports.Clock
	Logger  *slog.Logger
	Metrics statsd.Sink
	Policy  SessionPolicy
}

// SessionManager owns the session derived from one visitor's credential.
// It is the only writer of the credential store.
type SessionManager struct {
	store   ports.CredentialStore
	auth    ports.AuthAPI
	clock   ports.Clock
	logger  *slog.Logger
	metrics statsd.Sink
	policy  SessionPolicy

	mu   sync.RWMutex
	user *domainauth.User
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// NewSessionManager constructs a SessionManager with no session. Call Restore to load the stored credential.
func NewSessionManager(opts SessionOptions) *SessionManager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}
	return &SessionManager{
		store:   opts.Store,
		auth:    opts.Auth,
		clock:   clock,
		logger:  logger.With("component", "session"),
		metrics: opts.Metrics,
		policy:  opts.Policy,
	}
}

// User returns a copy of the current session user, or nil.
func (m *SessionManager) User() *domainauth.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	u.Roles = append([]domainauth.Role(nil), m.user.Roles...)
	return &u
}

func (m *SessionManager) setUser(u *domainauth.User) {
	m.mu.Lock()
	m.user = u
	m.mu.Unlock()
}

// Credential returns the raw stored credential. Store read failures are logged and reported as absent.
func (m *SessionManager) Credential(ctx context.Context) (string, bool) {
	raw, ok, err := m.store.Get(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "credential store read failed", "error", err)
		return "", false
	}
	return raw, ok
}

// Restore recomputes the session from the credential store.
// A missing or undecodable credential yields no session.
func (m *SessionManager) Restore(ctx context.Context) {
	raw, ok := m.Credential(ctx)
	if !ok {
		m.setUser(nil)
		return
	}

	claims, err := token.Decode(raw)
	if err != nil {
		m.setUser(nil)
		m.handleMalformed(ctx, err)
		return
	}

	m.setUser(domainauth.UserFromClaims(claims))
	metrics.EmitSession(m.metrics, metrics.SessionMetric{Event: metrics.EventRestore, Result: metrics.ResultSuccess})
}

// Login exchanges credentials with the remote endpoint, stores the returned
// token and derives the session from it. On failure the session is unchanged
// and the remote error is returned unwrapped, so callers can test for
// *ports.AuthRejectedError.
func (m *SessionManager) Login(ctx context.Context, in ports.LoginInput) (*domainauth.User, error) {
	start := m.clock.Now()
	raw, err := m.auth.Login(ctx, in)
	if err != nil {
		m.logger.WarnContext(ctx, "login failed", "error", err, "error_class", obserrors.Classify(err))
		m.emit(metrics.EventLogin, start, err)
		return nil, err
	}

	user, err := m.establish(ctx, raw)
	m.emit(metrics.EventLogin, start, err)
	if err != nil {
		return nil, err
	}
	m.logger.InfoContext(ctx, "login succeeded", "username", user.Username, "role", user.Roles[0])
	return user, nil
}

// Register creates an account remotely and signs the visitor in with the returned token.
func (m *SessionManager) Register(ctx context.Context, in ports.RegisterInput) (*domainauth.User, error) {
	start := m.clock.Now()
	raw, err := m.auth.Register(ctx, in)
	if err != nil {
		m.logger.WarnContext(ctx, "registration failed", "error", err, "error_class", obserrors.Classify(err))
		m.emit(metrics.EventRegister, start, err)
		return nil, err
	}

	user, err := m.establish(ctx, raw)
	m.emit(metrics.EventRegister, start, err)
	if err != nil {
		return nil, err
	}
	m.logger.InfoContext(ctx, "registration succeeded", "username", user.Username)
	return user, nil
}

// establish writes the credential, then decodes it into the session.
func (m *SessionManager) establish(ctx context.Context, raw string) (*domainauth.User, error) {
	if err := m.store.Set(ctx, raw); err != nil {
		return nil, fmt.Errorf("store credential: %w", err)
	}

	claims, err := token.Decode(raw)
	if err != nil {
		m.setUser(nil)
		m.handleMalformed(ctx, err)
		return nil, fmt.Errorf("decode issued credential: %w", err)
	}

	m.setUser(domainauth.UserFromClaims(claims))
	return m.User(), nil
}

// Logout clears the credential and the session. A store error is logged and
// the in-memory session is cleared regardless.
func (m *SessionManager) Logout(ctx context.Context) {
	m.clear(ctx, metrics.EventLogout)
}

// IsActive reports whether a stored credential exists and has not expired.
// An expired credential is cleared exactly like Logout before returning false.
func (m *SessionManager) IsActive(ctx context.Context) bool {
	raw, ok := m.Credential(ctx)
	if !ok {
		return false
	}

	claims, err := token.Decode(raw)
	if err != nil {
		m.setUser(nil)
		m.handleMalformed(ctx, err)
		return false
	}

	if !claims.HasExpiry {
		if m.policy.AllowNonExpiring {
			return true
		}
		m.logger.InfoContext(ctx, "session expired", "reason", "no_expiry", "username", claims.Subject)
		m.clear(ctx, metrics.EventExpired)
		return false
	}

	if claims.Expired(m.clock.Now()) {
		m.logger.InfoContext(ctx, "session expired",
			"reason", "past_expiry",
			"username", claims.Subject,
			"expired_at", claims.ExpiresAt,
		)
		m.clear(ctx, metrics.EventExpired)
		return false
	}
	return true
}

func (m *SessionManager) clear(ctx context.Context, event string) {
	m.setUser(nil)
	result := metrics.ResultSuccess
	err := m.store.Clear(ctx)
	if err != nil {
		result = metrics.ResultError
		m.logger.WarnContext(ctx, "credential store clear failed", "error", err, "event", event)
	}
	metrics.EmitSession(m.metrics, metrics.SessionMetric{Event: event, Result: result, Err: err})
}

func (m *SessionManager) handleMalformed(ctx context.Context, err error) {
	m.logger.WarnContext(ctx, "credential decode failed", "error", err, "purge", m.policy.PurgeMalformed)
	if m.policy.PurgeMalformed {
		m.clear(ctx, metrics.EventPurged)
	}
}

func (m *SessionManager) emit(event string, start time.Time, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.EmitSession(m.metrics, metrics.SessionMetric{
		Event:    event,
		Result:   result,
		Duration: m.clock.Now().Sub(start),
		Err:      err,
	})
}

// SessionFactory builds a SessionManager per visitor from shared dependencies.
type SessionFactory struct {
	stores ports.CredentialStoreFactory
	opts   SessionOptions
}

// NewSessionFactory returns a factory. opts.Store is ignored; each manager gets its visitor's store.
func NewSessionFactory(stores ports.CredentialStoreFactory, opts SessionOptions) *SessionFactory {
	opts.Store = nil
	return &SessionFactory{stores: stores, opts: opts}
}

// ForVisitor builds a manager bound to the visitor's credential store and restores its session.
func (f *SessionFactory) ForVisitor(ctx context.Context, visitorID string) *SessionManager {
	opts := f.opts
	opts.Store = f.stores.ForVisitor(visitorID)
	if opts.Logger != nil {
		opts.Logger = opts.Logger.With("visitor_id", visitorID)
	}
	m := NewSessionManager(opts)
	m.Restore(ctx)
	return m
}
