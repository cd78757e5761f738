// Package errors turns errors into short, stable class names for metric tags and log fields.
package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strings"

	"github.com/musicclouds/web/internal/ports"
	"github.com/musicclouds/web/internal/token"
)

// Known classes.
const (
	ClassAuthRejected = "auth_rejected"
	ClassNetwork      = "network"
	ClassMalformed    = "malformed_credential"
	ClassTimeout      = "timeout"
	ClassCanceled     = "canceled"
)

// Classify returns a normalized error class suitable for tagging metrics and logs.
// Known failures map to fixed names; anything else is named after its innermost concrete type.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case goerrors.Is(err, ports.ErrAuthRejected):
		return ClassAuthRejected
	case goerrors.Is(err, token.ErrMalformed):
		return ClassMalformed
	case goerrors.Is(err, context.DeadlineExceeded):
		return ClassTimeout
	case goerrors.Is(err, context.Canceled):
		return ClassCanceled
	}
	var netErr *ports.NetworkError
	if goerrors.As(err, &netErr) {
		return ClassNetwork
	}

	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), ".", "_"))
	if name == "" {
		return "unknown"
	}
	return name
}
