package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus is returned when the server answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrInvalidURL is returned when a request URL is empty or not absolute.
	ErrInvalidURL = errors.New("invalid URL")
)

// StatusError records the URL and status code of a failed response.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d for %s", ErrUnexpectedStatus, e.StatusCode, e.URL)
}

// Unwrap lets errors.Is match ErrUnexpectedStatus.
func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}
