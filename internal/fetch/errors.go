package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork is matched by every *NetworkError.
	ErrNetwork = errors.New("network error")
	// ErrInvalidRequest marks a request that cannot be built, such as a
	// malformed URL. It is never retried.
	ErrInvalidRequest = errors.New("invalid request")
)

// NetworkError is returned once all attempts for a request have failed with
// transient causes. Err holds the last one.
type NetworkError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: giving up after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// StatusError records a retryable HTTP status (429 or 5xx).
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.StatusCode)
}
