package middleware

import "errors"

var (
	// ErrRateLimitExceeded indicates the generator was not admitted in time
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidInput indicates prompt validation failed
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidContext indicates middleware context is invalid
	ErrInvalidContext = errors.New("invalid middleware context")
)
