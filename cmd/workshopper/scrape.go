package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	input "github.com/tcnksm/go-input"

	"github.com/nao1215/workshopper/internal/config"
	"github.com/nao1215/workshopper/internal/database"
	"github.com/nao1215/workshopper/internal/export"
	"github.com/nao1215/workshopper/internal/fetch"
	applog "github.com/nao1215/workshopper/internal/log"
	"github.com/nao1215/workshopper/internal/model"
	"github.com/nao1215/workshopper/internal/pipeline"
	"github.com/nao1215/workshopper/internal/status"
)

// identifierPrompt is asked when scrape runs without arguments.
const identifierPrompt = "Enter Steam User ID (e.g. 123456789) or Steam CustomLink (e.g. offiry)"

// errSessionsFailed is returned when at least one identifier could not be scraped.
var errSessionsFailed = errors.New("one or more scrapes failed")

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [identifier...]",
		Short: "Collect the workshop items of one or more Steam users",
		Long: `Scrape walks the workshop listing of each Steam user, visits every item page
and exports the collected statistics.

An identifier made only of digits is treated as a Steam profile ID
(steamcommunity.com/profiles/<id>), anything else as a custom profile link
name (steamcommunity.com/id/<name>). Without arguments you are asked for one.

The export destination is taken from --output, then from the user's profile
in the configuration file, and otherwise asked for interactively. Leaving
the answer empty cancels the export. The extension selects the format:
.xlsx (default), .csv, .json or .md. {user} in a destination is replaced by
the identifier.

Examples:
  # Scrape a user by custom link name and choose where to save interactively
  workshopper scrape offiry

  # Scrape a profile ID straight into a CSV file
  workshopper scrape 76561198000000000 -o items.csv

  # Scrape several users, two at a time, one file each
  workshopper scrape alpha bravo charlie -b 2 -o "exports/{user}.xlsx"

  # Print a summary table and skip the history database
  workshopper scrape offiry -o offiry.md --table --no-save`,
		Args: cobra.ArbitraryArgs,
		RunE: runScrapeCmd,
	}

	// Storefront flags
	cmd.Flags().String(config.FlagBaseURL, config.DefaultBaseURL,
		"Community site origin")
	cmd.Flags().Int(config.FlagAppID, config.DefaultAppID,
		"App ID whose workshop files are listed")

	// Transport flags
	cmd.Flags().DurationP(config.FlagTimeout, "t", config.DefaultTimeout,
		"Timeout for each request (0 keeps the transport default)")
	cmd.Flags().String(config.FlagUserAgent, fetch.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().StringToStringP("header", "H", nil,
		"Extra HTTP header as Name=Value (repeatable)")

	// Crawl flags
	cmd.Flags().IntP(config.FlagWorkers, "w", config.DefaultWorkers,
		"Number of item pages fetched concurrently")
	cmd.Flags().Duration(config.FlagPageDelay, config.DefaultPageDelay,
		"Pause between listing pages")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of listing pages per user (0 = no limit)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of users scraped concurrently")

	// Output flags
	cmd.Flags().StringP("output", "o", "",
		"Export destination (skips the interactive prompt)")
	cmd.Flags().String(config.FlagOutputDir, "",
		"Directory for relative export destinations")
	cmd.Flags().Bool("table", false,
		"Print the collected items as a table")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not store the session in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	// Configuration and logging
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .workshopper in current or home directory)")
	cmd.Flags().String("log-format", config.LogFormatText,
		"Log format: text or json")

	return cmd
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if len(cfg.Identifiers) == 0 {
		answer, err := askIdentifier(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		cfg.Identifiers = []string{answer}
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrEmptyIdentifier) || errors.Is(err, config.ErrNoIdentifier) {
			return err
		}
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScrape(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the config file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.BaseURL, err = flags.GetString(config.FlagBaseURL); err != nil {
		return nil, err
	}
	if cfg.AppID, err = flags.GetInt(config.FlagAppID); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration(config.FlagTimeout); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString(config.FlagUserAgent); err != nil {
		return nil, err
	}
	headers, err := flags.GetStringToString("header")
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		cfg.Headers[k] = v
	}
	if cfg.Workers, err = flags.GetInt(config.FlagWorkers); err != nil {
		return nil, err
	}
	if cfg.PageDelay, err = flags.GetDuration(config.FlagPageDelay); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.Output, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.OutputDir, err = flags.GetString(config.FlagOutputDir); err != nil {
		return nil, err
	}
	if cfg.ShowTable, err = flags.GetBool("table"); err != nil {
		return nil, err
	}
	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.LogFormat, err = flags.GetString("log-format"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	// An explicit --config must exist; the implicit search may find nothing.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file, flags.Changed)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.Identifiers = args
	return cfg, nil
}

// askIdentifier prompts for a single identifier.
func askIdentifier(r io.Reader, w io.Writer) (string, error) {
	ui := &input.UI{Reader: r, Writer: w}
	answer, err := ui.Ask(identifierPrompt, &input.Options{HideOrder: true})
	if err != nil {
		if errors.Is(err, input.ErrInterrupted) {
			return "", config.ErrEmptyIdentifier
		}
		return "", fmt.Errorf("failed to read identifier: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// runScrape scrapes every identifier in cfg and reports each outcome.
func runScrape(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, logger *slog.Logger) error {
	ids := make([]model.Identifier, 0, len(cfg.Identifiers))
	for _, raw := range cfg.Identifiers {
		id, err := model.ParseIdentifier(raw)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	feed := status.NewFeed(out, status.WithLogger(logger))
	defer feed.Close()

	var db *database.SessionDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	exporter := export.NewExporter(
		export.NewPromptDestination(export.WithPromptIO(in, out)),
		export.WithOutputDir(cfg.OutputDir),
		export.WithExportLogger(logger),
	)

	factory := func(id model.Identifier) *pipeline.Pipeline {
		return createPipelineForIdentifier(cfg, id, exporter, db, feed, logger)
	}

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	var (
		mu     sync.Mutex
		failed int
	)
	err := bp.ProcessBatchWithCallback(ctx, ids, func(session *model.Session, _ int) {
		if !reportSession(feed, session) {
			mu.Lock()
			failed++
			mu.Unlock()
		}
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errSessionsFailed, failed, len(ids))
	}
	return nil
}

// createPipelineForIdentifier builds the pipeline for one identifier,
// applying its profile from the config file.
func createPipelineForIdentifier(
	cfg *config.Config,
	id model.Identifier,
	exporter *export.Exporter,
	db *database.SessionDB,
	feed *status.Feed,
	logger *slog.Logger,
) *pipeline.Pipeline {
	settings := cfg.ForIdentifier(id.String())

	logger.Debug("session settings",
		"user", id.String(),
		"kind", id.Kind().String(),
		"maxPages", settings.MaxPages,
		"output", settings.Output,
		applog.HeaderAttrs(settings.Headers),
	)

	client := fetch.NewClient(
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithHeaders(settings.Headers),
	)

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineSite(cfg.BaseURL, cfg.AppID),
		pipeline.WithPipelineWorkers(cfg.Workers),
		pipeline.WithPipelinePageDelay(cfg.PageDelay),
		pipeline.WithPipelineMaxPages(settings.MaxPages),
		pipeline.WithPipelineReporter(feed),
	}
	if settings.Output != "" {
		configOpts = append(configOpts, pipeline.WithPipelineDestination(export.NewFixedDestination(settings.Output)))
	}
	if cfg.ShowTable {
		configOpts = append(configOpts, pipeline.WithPipelineTable(feedWriter{feed: feed}))
	}
	if db != nil {
		configOpts = append(configOpts, pipeline.WithPipelineDB(db))
	}

	return pipeline.DefaultPipeline(client, exporter, []pipeline.Option{pipeline.WithLogger(logger)}, configOpts...)
}

// reportSession posts the outcome of a session and reports whether it succeeded.
func reportSession(feed status.Reporter, session *model.Session) bool {
	switch {
	case session.Err != nil:
		feed.Post(fmt.Sprintf("An error occurred: %v", session.Err))
		return false
	case session.Export == model.ExportCancelled:
		feed.Post(fmt.Sprintf("Export cancelled for %s.", session.User))
	default:
		feed.Post(fmt.Sprintf("Data exported as %s", session.OutputPath))
		feed.Post(fmt.Sprintf("Data saved successfully for %s!", session.User))
	}
	return true
}

// feedWriter sends each write to the status feed as one entry, so tables
// are never interleaved with progress lines.
type feedWriter struct {
	feed *status.Feed
}

func (w feedWriter) Write(p []byte) (int, error) {
	w.feed.Post(string(p))
	return len(p), nil
}
