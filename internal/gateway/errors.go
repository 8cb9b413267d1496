package gateway

import "errors"

var (
	// ErrInvalidInput means the caller supplied a missing or malformed
	// required field. Not retryable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoResults means the upstream search produced zero usable
	// listings after filtering.
	ErrNoResults = errors.New("no shopping results found")

	// ErrInvalidResponse means upstream model output did not parse to
	// the expected shape after fence and comma cleanup.
	ErrInvalidResponse = errors.New("invalid analysis result")

	// ErrUpstream is a network or provider failure. The gateway never
	// retries; the caller owns the retry policy.
	ErrUpstream = errors.New("upstream provider error")
)
