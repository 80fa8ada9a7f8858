package errors

import "errors"

// Sentinel errors for common error conditions
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that input validation failed
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")

	// ErrUnsupportedScore indicates that a vector index cannot report the requested score kind
	ErrUnsupportedScore = errors.New("score kind not supported by index")

	// ErrEmptyQuery indicates a retrieval query with no text
	ErrEmptyQuery = errors.New("empty query")

	// ErrInsufficientPlans indicates a comparison with fewer than two plans
	ErrInsufficientPlans = errors.New("need at least two plans to compare")

	// ErrStageFailed indicates that a pipeline stage could not complete
	ErrStageFailed = errors.New("pipeline stage failed")
)
