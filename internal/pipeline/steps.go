package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/workshopper/internal/crawler"
	"github.com/nao1215/workshopper/internal/database"
	"github.com/nao1215/workshopper/internal/export"
	"github.com/nao1215/workshopper/internal/model"
	"github.com/nao1215/workshopper/internal/status"
)

// Step names, in the order DefaultPipeline adds them.
const (
	StepCrawl  = "crawl"
	StepExport = "export"
	StepTable  = "table"
	StepSave   = "save"
)

// CrawlStep walks the session's listing and fills in its items.
type CrawlStep struct {
	spider *crawler.Spider

	// baseURL and appID build the listing URL.
	baseURL string
	appID   int

	reporter status.Reporter
	logger   *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlReporter sets where the fetching and detection lines are posted.
// It should be the same reporter the spider posts to.
func WithCrawlReporter(r status.Reporter) CrawlStepOption {
	return func(s *CrawlStep) {
		if r != nil {
			s.reporter = r
		}
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a crawl step for listings under baseURL and appID.
func NewCrawlStep(spider *crawler.Spider, baseURL string, appID int, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		spider:   spider,
		baseURL:  baseURL,
		appID:    appID,
		reporter: status.Discard,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return StepCrawl
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, session *model.Session) error {
	listingURL, err := session.Identifier.ListingURL(s.baseURL, s.appID)
	if err != nil {
		return err
	}

	session.ListingURL = listingURL
	s.reporter.Post(fmt.Sprintf("Fetching workshop items from %s...", session.User))
	s.reporter.Post(session.Identifier.DetectionMessage())

	session.StartedAt = time.Now()
	err = s.spider.Crawl(ctx, session)
	session.FinishedAt = time.Now()
	if err != nil {
		return err
	}

	s.logger.Info("crawl completed",
		"user", session.User,
		"pages", session.PagesCompleted,
		"items", session.ItemCount(),
		"elapsed", session.FinishedAt.Sub(session.StartedAt),
	)
	return nil
}

// ExportStep writes the session's items to its destination.
type ExportStep struct {
	exporter    *export.Exporter
	destination export.Destination
}

// NewExportStep creates an export step. A nil destination uses the
// exporter's own.
func NewExportStep(exporter *export.Exporter, destination export.Destination) *ExportStep {
	return &ExportStep{
		exporter:    exporter,
		destination: destination,
	}
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return StepExport
}

// Do executes the export step.
func (s *ExportStep) Do(ctx context.Context, session *model.Session) error {
	if s.destination == nil {
		return s.exporter.Export(ctx, session)
	}
	return s.exporter.ExportTo(ctx, session, s.destination)
}

// TableStep prints the session's items as a terminal table.
type TableStep struct {
	writer *export.TableWriter
}

// NewTableStep creates a table step writing to w.
func NewTableStep(w io.Writer) *TableStep {
	return &TableStep{writer: export.NewTableWriter(w)}
}

// Name returns the step name.
func (s *TableStep) Name() string {
	return StepTable
}

// Do executes the table step.
func (s *TableStep) Do(_ context.Context, session *model.Session) error {
	return s.writer.Write(session)
}

// SaveStep stores the session in the history database.
type SaveStep struct {
	db     *database.SessionDB
	logger *slog.Logger
}

// NewSaveStep creates a save step for db.
func NewSaveStep(db *database.SessionDB, logger *slog.Logger) *SaveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveStep{db: db, logger: logger}
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return StepSave
}

// Do executes the save step.
func (s *SaveStep) Do(ctx context.Context, session *model.Session) error {
	id, err := s.db.SaveSession(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to save session history: %w", err)
	}
	s.logger.Debug("session saved", "user", session.User, "id", id, "database", s.db.Path())
	return nil
}

// DefaultPipelineConfig holds the pieces DefaultPipeline wires together.
type DefaultPipelineConfig struct {
	// Fetcher loads listing and detail pages.
	Fetcher crawler.Fetcher

	// BaseURL and AppID build each identifier's listing URL.
	BaseURL string
	AppID   int

	// Workers, PageDelay and MaxPages configure the spider.
	Workers   int
	PageDelay time.Duration
	MaxPages  int

	// Reporter receives progress lines.
	Reporter status.Reporter

	// Exporter is shared by every session in a run.
	Exporter *export.Exporter

	// Destination overrides the exporter's destination for this session.
	Destination export.Destination

	// TableOutput enables the table step when non-nil.
	TableOutput io.Writer

	// DB enables the save step when non-nil.
	DB *database.SessionDB
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineSite sets the storefront origin and app ID.
func WithPipelineSite(baseURL string, appID int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.BaseURL = baseURL
		c.AppID = appID
	}
}

// WithPipelineWorkers sets the detail-page worker count.
func WithPipelineWorkers(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Workers = n
	}
}

// WithPipelinePageDelay sets the pause between listing pages.
func WithPipelinePageDelay(d time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.PageDelay = d
	}
}

// WithPipelineMaxPages caps the number of listing pages. 0 means no limit.
func WithPipelineMaxPages(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxPages = n
	}
}

// WithPipelineReporter sets the progress reporter.
func WithPipelineReporter(r status.Reporter) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Reporter = r
	}
}

// WithPipelineDestination overrides the exporter's destination.
func WithPipelineDestination(d export.Destination) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Destination = d
	}
}

// WithPipelineTable prints a summary table to w after exporting.
func WithPipelineTable(w io.Writer) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.TableOutput = w
	}
}

// WithPipelineDB stores each finished session in db.
func WithPipelineDB(db *database.SessionDB) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DB = db
	}
}

// DefaultPipeline creates the scrape pipeline: crawl, export, then the
// optional table and save steps.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineWorkers, etc).
func DefaultPipeline(fetcher crawler.Fetcher, exporter *export.Exporter, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		Fetcher:   fetcher,
		Workers:   crawler.DefaultWorkers,
		PageDelay: crawler.DefaultPageDelay,
		Reporter:  status.Discard,
		Exporter:  exporter,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	spider := crawler.NewSpider(cfg.Fetcher,
		crawler.WithWorkers(cfg.Workers),
		crawler.WithPageDelay(cfg.PageDelay),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithReporter(cfg.Reporter),
		crawler.WithLogger(p.logger),
	)

	p.AddSteps(
		NewCrawlStep(spider, cfg.BaseURL, cfg.AppID,
			WithCrawlReporter(cfg.Reporter),
			WithCrawlLogger(p.logger),
		),
		NewExportStep(cfg.Exporter, cfg.Destination),
	)
	if cfg.TableOutput != nil {
		p.AddStep(NewTableStep(cfg.TableOutput))
	}
	if cfg.DB != nil {
		p.AddStep(NewSaveStep(cfg.DB, p.logger))
	}

	return p
}
