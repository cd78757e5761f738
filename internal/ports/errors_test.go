package ports

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthRejectedError(t *testing.T) {
	err := fmt.Errorf("sign in: %w", &AuthRejectedError{Op: "login"})

	assert.ErrorIs(t, err, ErrAuthRejected)
	assert.Equal(t, "sign in: login: invalid credentials", err.Error())

	var rejected *AuthRejectedError
	assert.ErrorAs(t, err, &rejected)
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		err  *NetworkError
		want string
	}{
		{"status and cause", &NetworkError{Op: "login", Status: http.StatusBadGateway, Err: cause}, "login: status 502: connection refused"},
		{"status only", &NetworkError{Op: "login", Status: http.StatusInternalServerError}, "login: unexpected status 500"},
		{"cause only", &NetworkError{Op: "login", Err: cause}, "login: connection refused"},
		{"bare", &NetworkError{Op: "login"}, "login: request failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.NotErrorIs(t, tt.err, ErrAuthRejected)
		})
	}

	assert.ErrorIs(t, &NetworkError{Op: "login", Err: cause}, cause)
}
