package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable wraps transport failures (DNS, connection refused, timeouts).
	ErrUnavailable = errors.New("catalog: unavailable")
	// ErrRequestFailed is wrapped by StatusError for non-2xx responses.
	ErrRequestFailed = errors.New("catalog: request failed")
	// ErrInvalidResponse wraps bodies that do not decode into the expected shape.
	ErrInvalidResponse = errors.New("catalog: invalid response")
)

// StatusError reports a non-success HTTP status from the catalog.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog: GET %s: HTTP %d", e.Path, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrRequestFailed }
