package httpx

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/musicclouds/web/internal/errors"
	"github.com/musicclouds/web/internal/ports"
)

// sessionError maps a failed sign-in or sign-up. Only a rejection by the
// user service is reported as such; every other failure gets one message.
func sessionError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ports.ErrAuthRejected) {
		return apperrors.Unauthorized("Invalid credentials.", err)
	}
	return apperrors.Unavailable("The user service is unavailable. Try again later.", err)
}

// backendError translates a user-management failure into an application error
// carrying the message shown to the visitor.
func backendError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ports.ErrAuthRejected) {
		return apperrors.Unauthorized("Invalid credentials.", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &apperrors.AppError{Code: apperrors.ErrCodeTimeout, Message: "The user service did not answer in time.", Cause: err}
	}

	var netErr *ports.NetworkError
	if errors.As(err, &netErr) {
		switch netErr.Status {
		case http.StatusNotFound:
			return &apperrors.AppError{Code: apperrors.ErrCodeNotFound, Message: "The user no longer exists.", Cause: err}
		case http.StatusForbidden:
			return &apperrors.AppError{Code: apperrors.ErrCodeForbidden, Message: "The user service refused the request.", Cause: err}
		case http.StatusConflict:
			return &apperrors.AppError{Code: apperrors.ErrCodeConflict, Message: "A user with these details already exists.", Cause: err}
		case http.StatusBadRequest:
			return &apperrors.AppError{Code: apperrors.ErrCodeValidation, Message: "The user service rejected the submitted data.", Cause: err}
		}
		return apperrors.Unavailable("The user service is unavailable. Try again later.", err)
	}
	return apperrors.Internal("The request could not be completed.", err)
}

// userMessage returns the visitor-facing text for err.
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "Something went wrong."
}
