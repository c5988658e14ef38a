package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestNewConfig tests that NewConfig returns sensible defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("expected BaseURL %q, got %q", DefaultBaseURL, cfg.BaseURL)
	}
	if cfg.AppID != 2168680 {
		t.Errorf("expected AppID 2168680, got %d", cfg.AppID)
	}
	if cfg.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Workers)
	}
	if cfg.PageDelay != 500*time.Millisecond {
		t.Errorf("expected 500ms page delay, got %v", cfg.PageDelay)
	}
	if cfg.Timeout != 0 || cfg.MaxPages != 0 {
		t.Errorf("expected zero timeout and page limit, got %v and %d", cfg.Timeout, cfg.MaxPages)
	}
	if !cfg.SaveToDB {
		t.Error("expected SaveToDB to default to true")
	}
	if !strings.HasSuffix(cfg.DBDir, AppName) {
		t.Errorf("expected DBDir under the XDG data dir, got %q", cfg.DBDir)
	}
}

// TestValidate tests configuration validation.
func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "no identifier", modify: func(c *Config) { c.Identifiers = nil }, wantErr: ErrNoIdentifier},
		{name: "blank identifier", modify: func(c *Config) { c.Identifiers = []string{"ok", "   "} }, wantErr: ErrEmptyIdentifier},
		{name: "relative base URL", modify: func(c *Config) { c.BaseURL = "steamcommunity.com" }, wantErr: ErrInvalidBaseURL},
		{name: "zero app ID", modify: func(c *Config) { c.AppID = 0 }, wantErr: ErrInvalidAppID},
		{name: "zero workers", modify: func(c *Config) { c.Workers = 0 }, wantErr: ErrInvalidWorkers},
		{name: "zero batch size", modify: func(c *Config) { c.BatchSize = 0 }, wantErr: ErrInvalidBatchSize},
		{name: "negative page delay", modify: func(c *Config) { c.PageDelay = -time.Second }, wantErr: ErrInvalidPageDelay},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, wantErr: ErrInvalidTimeout},
		{name: "negative max pages", modify: func(c *Config) { c.MaxPages = -1 }, wantErr: ErrInvalidMaxPages},
		{name: "unknown log format", modify: func(c *Config) { c.LogFormat = "xml" }, wantErr: ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			cfg.Identifiers = []string{"offiry"}
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if ErrEmptyIdentifier.Error() != "please enter a Steam username" {
		t.Errorf("unexpected empty identifier message %q", ErrEmptyIdentifier.Error())
	}
}

const sampleConfig = `
defaults:
  baseURL: http://localhost:8080
  workers: 8
  pageDelay: 0s
  timeout: 30s
  headers:
    Accept-Language: en
  outputDir: /tmp/exports
profiles:
  offiry:
    output: offiry.csv
    maxPages: 3
    headers:
      Accept-Language: de
`

// TestLoadConfigFile tests YAML loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("parses defaults and profiles", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Defaults.Workers != 8 || cf.Defaults.Timeout != 30*time.Second {
			t.Errorf("unexpected defaults %+v", cf.Defaults)
		}
		if cf.Defaults.PageDelay == nil || *cf.Defaults.PageDelay != 0 {
			t.Errorf("expected explicit zero page delay, got %v", cf.Defaults.PageDelay)
		}
		if cf.Profile(" offiry ").Output != "offiry.csv" {
			t.Errorf("unexpected profile %+v", cf.Profile("offiry"))
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("defaults: [unclosed"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("explicit path lookup", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
		if got := FindConfigFile(path + ".missing"); got != "" {
			t.Errorf("expected empty result for missing file, got %q", got)
		}
	})
}

// TestApplyFile tests merging file values with flags.
func TestApplyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	cf, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("file fills unset flags", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(cf, nil)

		if cfg.BaseURL != "http://localhost:8080" || cfg.Workers != 8 || cfg.PageDelay != 0 {
			t.Errorf("unexpected merged config %+v", cfg)
		}
		if cfg.OutputDir != "/tmp/exports" {
			t.Errorf("unexpected output dir %q", cfg.OutputDir)
		}
	})

	t.Run("explicit flags win", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Workers = 2
		cfg.ApplyFile(cf, func(flag string) bool { return flag == FlagWorkers })

		if cfg.Workers != 2 {
			t.Errorf("expected flag value 2, got %d", cfg.Workers)
		}
		if cfg.BaseURL != "http://localhost:8080" {
			t.Errorf("expected file base URL, got %q", cfg.BaseURL)
		}
	})

	t.Run("profile settings", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(cf, nil)

		got := cfg.ForIdentifier("offiry")
		want := SessionSettings{
			Output:   "offiry.csv",
			MaxPages: 3,
			Headers:  map[string]string{"Accept-Language": "de"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ForIdentifier() mismatch (-want +got):\n%s", diff)
		}

		other := cfg.ForIdentifier("someone-else")
		if other.Output != "" || other.Headers["Accept-Language"] != "en" {
			t.Errorf("unexpected settings for unknown identifier %+v", other)
		}
	})

	t.Run("output flag beats profile", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Output = "fixed.xlsx"
		cfg.MaxPages = 1
		cfg.ApplyFile(cf, nil)

		got := cfg.ForIdentifier("offiry")
		if got.Output != "fixed.xlsx" || got.MaxPages != 1 {
			t.Errorf("expected flag values to win, got %+v", got)
		}
	})

	t.Run("without a file", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		got := cfg.ForIdentifier("offiry")
		if got.Output != "" || got.MaxPages != 0 || len(got.Headers) != 0 {
			t.Errorf("expected empty settings, got %+v", got)
		}
	})
}
