package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/workshopper/internal/fetch"
)

// Default configuration values.
const (
	// DefaultBaseURL is the community site hosting the workshop.
	DefaultBaseURL = "https://steamcommunity.com"

	// DefaultAppID is the game whose workshop files are listed.
	DefaultAppID = 2168680

	// DefaultWorkers is the size of the detail-page worker pool.
	DefaultWorkers = 4

	// DefaultPageDelay is the pause between listing pages.
	DefaultPageDelay = 500 * time.Millisecond

	// DefaultTimeout of zero keeps the HTTP transport's own behavior.
	DefaultTimeout = 0

	// DefaultMaxPages of zero walks until an empty listing page.
	DefaultMaxPages = 0

	// DefaultBatchSize processes one identifier at a time.
	DefaultBatchSize = 1

	// AppName is the application name used for XDG directory paths.
	AppName = "workshopper"

	// LogFormatText and LogFormatJSON select the log handler.
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds all configuration options for a run.
// It is populated from CLI flags and passed down explicitly.
type Config struct {
	// Identifiers are the Steam usernames or profile IDs to scrape, as typed.
	Identifiers []string

	// BaseURL is the scheme and host of the community site.
	BaseURL string

	// AppID selects the game whose workshop files are listed.
	AppID int

	// Workers is the number of concurrent detail-page fetches per session.
	Workers int

	// PageDelay is the pause between listing pages.
	PageDelay time.Duration

	// Timeout bounds each HTTP request. Zero means no client-side timeout.
	Timeout time.Duration

	// MaxPages stops pagination after this many pages. Zero means no limit.
	MaxPages int

	// BatchSize is the number of identifiers scraped concurrently.
	BatchSize int

	// UserAgent is sent with every request.
	UserAgent string

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string

	// Output is a fixed export destination. Empty means ask interactively
	// unless a config profile names one.
	Output string

	// OutputDir is joined to relative export destinations.
	OutputDir string

	// ShowTable prints a summary table of each session's items.
	ShowTable bool

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is "text" or "json".
	LogFormat string

	// ConfigFilePath is an explicit path to the YAML config file.
	ConfigFilePath string

	// File is the loaded config file, if any.
	File *File

	// DBDir is the directory holding the session history database.
	DBDir string

	// SaveToDB stores each successful session in the history database.
	SaveToDB bool
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		AppID:     DefaultAppID,
		Workers:   DefaultWorkers,
		PageDelay: DefaultPageDelay,
		Timeout:   DefaultTimeout,
		MaxPages:  DefaultMaxPages,
		BatchSize: DefaultBatchSize,
		UserAgent: fetch.DefaultUserAgent,
		Headers:   make(map[string]string),
		LogFormat: LogFormatText,
		DBDir:     XDGDataDir(),
		SaveToDB:  true,
	}
}

// XDGDataDir returns the XDG data directory for workshopper.
// On Linux: ~/.local/share/workshopper
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for workshopper.
// On Linux: ~/.config/workshopper
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// Identifier errors come first so a blank username is reported before
// anything else.
func (c *Config) Validate() error {
	if len(c.Identifiers) == 0 {
		return ErrNoIdentifier
	}
	for _, id := range c.Identifiers {
		if strings.TrimSpace(id) == "" {
			return ErrEmptyIdentifier
		}
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.AppID <= 0 {
		return ErrInvalidAppID
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.PageDelay < 0 {
		return ErrInvalidPageDelay
	}
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return ErrInvalidLogFormat
	}

	return nil
}
