package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/workshopper/internal/config"
	"github.com/nao1215/workshopper/internal/database"
	"github.com/nao1215/workshopper/internal/model"
	"github.com/nao1215/workshopper/internal/status"
)

// storefront serves one listing page per user and a detail page per item.
// Requests for unknown users get an empty listing.
type storefront struct {
	items    map[string][]string
	requests atomic.Int64
}

func (sf *storefront) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sf.requests.Add(1)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 3 && parts[2] == "myworkshopfiles":
		fmt.Fprint(w, "<html><body>")
		if r.URL.Query().Get("p") == "1" {
			for _, name := range sf.items[parts[1]] {
				fmt.Fprintf(w, `<div class="workshopItem"><a href="/item/%s"><div class="workshopItemTitle">%s</div></a></div>`, name, name)
			}
		}
		fmt.Fprint(w, "</body></html>")
	case len(parts) == 2 && parts[0] == "item":
		fmt.Fprintf(w, `<html><body>
<div class="rightDetailsBlock"><a>Aircraft Livery</a></div>
<table class="stats_table"><tr><td>1,024</td><td>Unique Visitors</td></tr></table>
<div id="highlightContent" class="workshopItemDescription">%s skin for the Ifrit</div>
</body></html>`, parts[1])
	default:
		http.NotFound(w, r)
	}
}

// emptyConfig writes an empty config file so tests never pick up a real one.
func emptyConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.DefaultConfigFile)
	if err := os.WriteFile(path, []byte("defaults: {}\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// runScrapeArgs executes "scrape" through the root command.
func runScrapeArgs(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"scrape"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// TestNewScrapeCmd tests the scrape command flags.
func TestNewScrapeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScrapeCmd()

	tests := []struct {
		flag      string
		shorthand string
		defValue  string
	}{
		{flag: config.FlagBaseURL, defValue: config.DefaultBaseURL},
		{flag: config.FlagAppID, defValue: "2168680"},
		{flag: config.FlagWorkers, shorthand: "w", defValue: "4"},
		{flag: config.FlagPageDelay, defValue: "500ms"},
		{flag: config.FlagTimeout, shorthand: "t", defValue: "0s"},
		{flag: "max-pages", shorthand: "p", defValue: "0"},
		{flag: "batch", shorthand: "b", defValue: "1"},
		{flag: "output", shorthand: "o", defValue: ""},
		{flag: "header", shorthand: "H", defValue: "[]"},
		{flag: "table", defValue: "false"},
		{flag: "no-save", defValue: "false"},
		{flag: "log-format", defValue: config.LogFormatText},
		{flag: "config", shorthand: "c", defValue: ""},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			t.Parallel()

			flag := cmd.Flags().Lookup(tt.flag)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.flag)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

// TestBuildConfig tests configuration building from flags and files.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("flags fill the config", func(t *testing.T) {
		t.Parallel()

		cmd := NewScrapeCmd()
		err := cmd.ParseFlags([]string{
			"--config", emptyConfig(t),
			"-w", "8",
			"--page-delay", "1s",
			"-p", "3",
			"-b", "2",
			"-o", "out.csv",
			"-H", "Accept-Language=de-DE",
			"--no-save",
			"--table",
		})
		if err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"offiry", "76561198000000000"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if diff := cmp.Diff([]string{"offiry", "76561198000000000"}, cfg.Identifiers); diff != "" {
			t.Errorf("identifiers mismatch (-want +got):\n%s", diff)
		}
		if cfg.Workers != 8 || cfg.PageDelay != time.Second || cfg.MaxPages != 3 || cfg.BatchSize != 2 {
			t.Errorf("unexpected crawl settings %+v", cfg)
		}
		if cfg.Output != "out.csv" || !cfg.ShowTable || cfg.SaveToDB {
			t.Errorf("unexpected output settings %+v", cfg)
		}
		if cfg.Headers["Accept-Language"] != "de-DE" {
			t.Errorf("expected header from flag, got %v", cfg.Headers)
		}
	})

	t.Run("file defaults apply unless the flag was set", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), config.DefaultConfigFile)
		content := `defaults:
  workers: 2
  pageDelay: 2s
  userAgent: from-file
profiles:
  offiry:
    output: offiry.md
    maxPages: 5
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewScrapeCmd()
		if err := cmd.ParseFlags([]string{"--config", path, "-w", "6"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"offiry"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Workers != 6 {
			t.Errorf("expected flag to win with 6 workers, got %d", cfg.Workers)
		}
		if cfg.PageDelay != 2*time.Second || cfg.UserAgent != "from-file" {
			t.Errorf("expected file defaults, got delay %v and agent %q", cfg.PageDelay, cfg.UserAgent)
		}

		settings := cfg.ForIdentifier("offiry")
		if settings.Output != "offiry.md" || settings.MaxPages != 5 {
			t.Errorf("unexpected profile settings %+v", settings)
		}
	})

	t.Run("missing explicit config file fails", func(t *testing.T) {
		t.Parallel()

		cmd := NewScrapeCmd()
		if err := cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		if _, err := buildConfig(cmd, []string{"offiry"}); !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid config file fails", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), config.DefaultConfigFile)
		if err := os.WriteFile(path, []byte("invalid: yaml: content: ["), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewScrapeCmd()
		if err := cmd.ParseFlags([]string{"--config", path}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		if _, err := buildConfig(cmd, []string{"offiry"}); err == nil {
			t.Error("expected error for invalid config file")
		}
	})
}

// TestRunScrapeCmd tests the scrape command end to end against a local storefront.
func TestRunScrapeCmd(t *testing.T) {
	t.Parallel()

	t.Run("blank identifier is rejected before any request", func(t *testing.T) {
		t.Parallel()

		sf := &storefront{}
		server := httptest.NewServer(sf)
		defer server.Close()

		_, err := runScrapeArgs(t, "", "--config", emptyConfig(t), "--base-url", server.URL, "   ")
		if !errors.Is(err, config.ErrEmptyIdentifier) {
			t.Fatalf("expected ErrEmptyIdentifier, got %v", err)
		}
		if err.Error() != "please enter a Steam username" {
			t.Errorf("unexpected message %q", err.Error())
		}
		if sf.requests.Load() != 0 {
			t.Errorf("expected no requests, got %d", sf.requests.Load())
		}
	})

	t.Run("empty prompt answer is rejected", func(t *testing.T) {
		t.Parallel()

		out, err := runScrapeArgs(t, "\n", "--config", emptyConfig(t))
		if !errors.Is(err, config.ErrEmptyIdentifier) {
			t.Fatalf("expected ErrEmptyIdentifier, got %v", err)
		}
		if !strings.Contains(out, identifierPrompt) {
			t.Errorf("expected identifier prompt, got %q", out)
		}
	})

	t.Run("invalid settings are configuration errors", func(t *testing.T) {
		t.Parallel()

		_, err := runScrapeArgs(t, "", "--config", emptyConfig(t), "-w", "0", "offiry")
		if !errors.Is(err, config.ErrInvalidWorkers) {
			t.Errorf("expected ErrInvalidWorkers, got %v", err)
		}
	})

	t.Run("scrapes, exports and saves each user", func(t *testing.T) {
		t.Parallel()

		sf := &storefront{items: map[string][]string{
			"offiry":            {"Desert", "Arctic"},
			"76561198000000000": {"Night"},
		}}
		server := httptest.NewServer(sf)
		defer server.Close()

		dir := t.TempDir()
		dbDir := filepath.Join(dir, "db")

		out, err := runScrapeArgs(t, "",
			"--config", emptyConfig(t),
			"--base-url", server.URL,
			"--page-delay", "0s",
			"--db-dir", dbDir,
			"--output-dir", dir,
			"-o", "{user}.csv",
			"--table",
			"offiry", "76561198000000000",
		)
		if err != nil {
			t.Fatalf("unexpected error: %v\n%s", err, out)
		}

		for _, want := range []string{
			"Fetching workshop items from offiry...",
			"Steam CustomLink name detected, searching...",
			"Steam User ID detected, searching...",
			"Loading page 1...",
			"Found KR-67 livery Desert.",
			"Completed page 1, moving on...",
			"Data saved successfully for offiry!",
			"Data saved successfully for 76561198000000000!",
			"1,024",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}

		csvData, err := os.ReadFile(filepath.Join(dir, "offiry.csv"))
		if err != nil {
			t.Fatalf("expected export for offiry: %v", err)
		}
		if !strings.Contains(string(csvData), "Desert,Aircraft Livery,KR-67,1024") {
			t.Errorf("unexpected csv:\n%s", csvData)
		}
		if _, err := os.Stat(filepath.Join(dir, "76561198000000000.csv")); err != nil {
			t.Errorf("expected export for profile ID: %v", err)
		}

		db, err := database.Open(dbDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		users, err := db.ListUsers(context.Background())
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if diff := cmp.Diff([]string{"76561198000000000", "offiry"}, users); diff != "" {
			t.Errorf("users mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no-save leaves no database", func(t *testing.T) {
		t.Parallel()

		sf := &storefront{items: map[string][]string{"offiry": {"Desert"}}}
		server := httptest.NewServer(sf)
		defer server.Close()

		dir := t.TempDir()
		dbDir := filepath.Join(dir, "db")
		_, err := runScrapeArgs(t, "",
			"--config", emptyConfig(t),
			"--base-url", server.URL,
			"--page-delay", "0s",
			"--db-dir", dbDir,
			"--no-save",
			"-o", filepath.Join(dir, "offiry.json"),
			"offiry",
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(dbDir); !os.IsNotExist(err) {
			t.Errorf("expected no database directory, got %v", err)
		}
	})

	t.Run("failed session is reported", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		dir := t.TempDir()
		out, err := runScrapeArgs(t, "",
			"--config", emptyConfig(t),
			"--base-url", server.URL,
			"--page-delay", "0s",
			"--no-save",
			"-o", filepath.Join(dir, "out.xlsx"),
			"offiry",
		)
		if !errors.Is(err, errSessionsFailed) {
			t.Fatalf("expected errSessionsFailed, got %v", err)
		}
		if !strings.Contains(out, "An error occurred: ") {
			t.Errorf("expected error line, got:\n%s", out)
		}
		if _, err := os.Stat(filepath.Join(dir, "out.xlsx")); !os.IsNotExist(err) {
			t.Errorf("expected nothing to be exported, got %v", err)
		}
	})
}

// TestReportSession tests the final status line of a session.
func TestReportSession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prepare func(s *model.Session)
		want    []string
		ok      bool
	}{
		{
			name: "written",
			prepare: func(s *model.Session) {
				s.Export = model.ExportWritten
				s.OutputPath = "offiry.xlsx"
			},
			want: []string{"Data exported as offiry.xlsx", "Data saved successfully for offiry!"},
			ok:   true,
		},
		{
			name:    "cancelled",
			prepare: func(s *model.Session) { s.Export = model.ExportCancelled },
			want:    []string{"Export cancelled for offiry."},
			ok:      true,
		},
		{
			name:    "failed",
			prepare: func(s *model.Session) { s.Fail(errors.New("listing unavailable")) },
			want:    []string{"An error occurred: listing unavailable"},
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session := model.NewSession(model.MustParseIdentifier("offiry"))
			tt.prepare(session)

			var lines []string
			ok := reportSession(status.ReporterFunc(func(line string) {
				lines = append(lines, line)
			}), session)

			if ok != tt.ok {
				t.Errorf("expected ok %v, got %v", tt.ok, ok)
			}
			if diff := cmp.Diff(tt.want, lines); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
