package usecase

import "errors"

// Sentinel errors shared by the services. Callers classify with
// errors.Is; wrapped detail travels alongside via cockroachdb/errors.
var (
	// ErrInvalidInput marks empty or malformed identifiers and
	// out-of-range arguments.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks lookups for members the gateway does not know.
	ErrNotFound = errors.New("resource not found")

	// ErrDependencyUnavailable marks transient outbound failures,
	// including an open circuit breaker.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
