package config

import (
	"errors"

	"github.com/nao1215/workshopper/internal/model"
)

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoIdentifier is returned when no user identifier was given.
	ErrNoIdentifier = errors.New("no identifier specified: provide a Steam username or profile ID")

	// ErrEmptyIdentifier is returned when an identifier is blank after trimming.
	ErrEmptyIdentifier = model.ErrEmptyIdentifier

	// ErrInvalidBaseURL is returned when the storefront URL is not absolute.
	ErrInvalidBaseURL = errors.New("invalid base URL: must include scheme and host")

	// ErrInvalidAppID is returned when the app ID is not positive.
	ErrInvalidAppID = errors.New("invalid app ID: must be positive")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidPageDelay is returned when the page delay is negative.
	ErrInvalidPageDelay = errors.New("invalid page delay: must be non-negative")

	// ErrInvalidTimeout is returned when the request timeout is negative.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidMaxPages is returned when the page limit is negative.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidLogFormat is returned for log formats other than text and json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")
)
