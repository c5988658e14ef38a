package export

import "errors"

var (
	// ErrUnsupportedFormat is returned for destination extensions with no writer.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrCancelled is returned by a Destination when the user declines to choose a path.
	ErrCancelled = errors.New("export cancelled")

	// ErrNoDestination is returned when there is no destination or a fixed
	// destination has an empty path.
	ErrNoDestination = errors.New("no export destination")
)
