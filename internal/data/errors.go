package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	ErrVisitorIDRequired = errors.New("visitor ID cannot be empty")
)
