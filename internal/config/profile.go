package config

import (
	"strings"
	"time"
)

// Flag names whose values the config file may supply.
// ApplyFile leaves a field alone when its flag was set explicitly.
const (
	FlagBaseURL   = "base-url"
	FlagAppID     = "app-id"
	FlagWorkers   = "workers"
	FlagPageDelay = "page-delay"
	FlagTimeout   = "timeout"
	FlagUserAgent = "user-agent"
	FlagOutputDir = "output-dir"
)

// Defaults holds file-level settings applied to every identifier.
type Defaults struct {
	BaseURL   string            `yaml:"baseURL,omitempty"`
	AppID     int               `yaml:"appID,omitempty"`
	Workers   int               `yaml:"workers,omitempty"`
	PageDelay *time.Duration    `yaml:"pageDelay,omitempty"`
	Timeout   time.Duration     `yaml:"timeout,omitempty"`
	UserAgent string            `yaml:"userAgent,omitempty"`
	Headers   map[string]string `yaml:"headers,omitempty"`
	OutputDir string            `yaml:"outputDir,omitempty"`
}

// Profile holds settings for a single identifier.
type Profile struct {
	// Output is the export destination for this identifier.
	Output string `yaml:"output,omitempty"`

	// MaxPages overrides the page limit for this identifier.
	MaxPages int `yaml:"maxPages,omitempty"`

	// Headers are added to (and override) the default headers.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// File represents the structure of the .workshopper configuration file.
type File struct {
	// Defaults apply to every run.
	Defaults Defaults `yaml:"defaults,omitempty"`

	// Profiles maps identifiers to their own settings.
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
}

// Profile returns the profile for identifier, matched after trimming.
func (cf *File) Profile(identifier string) Profile {
	if cf == nil {
		return Profile{}
	}
	return cf.Profiles[strings.TrimSpace(identifier)]
}

// ApplyFile merges file defaults into c. Fields whose flag was set
// explicitly (changed reports true for its name) keep the flag value.
func (c *Config) ApplyFile(cf *File, changed func(flag string) bool) {
	if cf == nil {
		return
	}
	if changed == nil {
		changed = func(string) bool { return false }
	}
	c.File = cf
	d := cf.Defaults

	if d.BaseURL != "" && !changed(FlagBaseURL) {
		c.BaseURL = d.BaseURL
	}
	if d.AppID != 0 && !changed(FlagAppID) {
		c.AppID = d.AppID
	}
	if d.Workers != 0 && !changed(FlagWorkers) {
		c.Workers = d.Workers
	}
	if d.PageDelay != nil && !changed(FlagPageDelay) {
		c.PageDelay = *d.PageDelay
	}
	if d.Timeout != 0 && !changed(FlagTimeout) {
		c.Timeout = d.Timeout
	}
	if d.UserAgent != "" && !changed(FlagUserAgent) {
		c.UserAgent = d.UserAgent
	}
	if d.OutputDir != "" && !changed(FlagOutputDir) {
		c.OutputDir = d.OutputDir
	}

	merged := make(map[string]string, len(d.Headers)+len(c.Headers))
	for k, v := range d.Headers {
		merged[k] = v
	}
	for k, v := range c.Headers {
		merged[k] = v
	}
	c.Headers = merged
}

// SessionSettings are the per-identifier values a session runs with.
type SessionSettings struct {
	Output   string
	MaxPages int
	Headers  map[string]string
}

// ForIdentifier resolves the settings for one identifier. The --output
// and --max-pages flags win over the identifier's profile.
func (c *Config) ForIdentifier(identifier string) SessionSettings {
	profile := c.File.Profile(identifier)

	settings := SessionSettings{
		Output:   c.Output,
		MaxPages: c.MaxPages,
		Headers:  make(map[string]string, len(c.Headers)+len(profile.Headers)),
	}
	if settings.Output == "" {
		settings.Output = profile.Output
	}
	if settings.MaxPages == 0 {
		settings.MaxPages = profile.MaxPages
	}
	for k, v := range c.Headers {
		settings.Headers[k] = v
	}
	for k, v := range profile.Headers {
		settings.Headers[k] = v
	}
	return settings
}
