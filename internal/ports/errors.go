package ports

import (
	"errors"
	"fmt"
)

// ErrAuthRejected matches any AuthRejectedError via errors.Is.
var ErrAuthRejected = errors.New("invalid credentials")

// AuthRejectedError reports that the remote endpoint answered 401.
// It is the only remote failure shown to the visitor as "invalid credentials".
type AuthRejectedError struct {
	Op string
}

func (e *AuthRejectedError) Error() string {
	return e.Op + ": " + ErrAuthRejected.Error()
}

func (e *AuthRejectedError) Is(target error) bool { return target == ErrAuthRejected }

// NetworkError covers every other remote failure: transport errors,
// non-2xx statuses other than 401 and unreadable responses.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": request failed"
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }
