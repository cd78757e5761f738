// Package metrics emits the StatsD series for sessions and route decisions.
package metrics

import (
	"time"

	domainauth "github.com/musicclouds/web/internal/domain/auth"
	obserrors "github.com/musicclouds/web/internal/observability/errors"
	"github.com/musicclouds/web/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Session event names.
const (
	EventRestore  = "restore"
	EventLogin    = "login"
	EventRegister = "register"
	EventLogout   = "logout"
	EventExpired  = "expired"
	EventPurged   = "purged"
)

// SessionMetric captures one session lifecycle event.
type SessionMetric struct {
	Event    string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitSession emits session lifecycle metrics. A nil sink is a no-op.
func EmitSession(sink statsd.Sink, in SessionMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"event":  in.Event,
		"result": in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("session.event", 1, tags)

	if in.Duration > 0 {
		sink.Timing("session.duration", in.Duration, CloneTags(tags))
	}
}

// EmitRouteDecision counts guard outcomes per route.
func EmitRouteDecision(sink statsd.Sink, route string, d domainauth.Decision) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"route":   route,
		"outcome": string(d.Outcome),
	}
	if d.Role != "" {
		tags["role"] = string(d.Role)
	}
	sink.Count("route.decision", 1, tags)
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
