package httpx

import (
	"context"

	"github.com/musicclouds/web/internal/service"
)

// Context keys are unexported struct types so they cannot collide across packages.
type (
	visitorKey struct{}
	sessionKey struct{}
)

// SetVisitorInContext returns a child context carrying the visitor ID.
func SetVisitorInContext(ctx context.Context, visitorID string) context.Context {
	if visitorID == "" {
		return ctx
	}
	return context.WithValue(ctx, visitorKey{}, visitorID)
}

// VisitorFromContext returns the visitor ID set by the Visitor middleware.
func VisitorFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(visitorKey{}).(string)
	return id, ok && id != ""
}

// SetSessionInContext returns a child context carrying the request's session manager.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *service.SessionManager) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session manager set by the Sessions middleware, or nil.
func SessionFromContext(ctx context.Context) *service.SessionManager {
	s, _ := ctx.Value(sessionKey{}).(*service.SessionManager)
	return s
}
