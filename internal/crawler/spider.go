package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/workshopper/internal/extract"
	"github.com/nao1215/workshopper/internal/model"
	"github.com/nao1215/workshopper/internal/status"
)

// Defaults used when no option overrides them.
const (
	DefaultWorkers   = 4
	DefaultPageDelay = 500 * time.Millisecond
)

// Fetcher retrieves a parsed HTML document.
// *fetch.Client satisfies this interface.
type Fetcher interface {
	Document(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// Spider walks a workshop listing page by page.
type Spider struct {
	// fetcher loads listing and detail pages.
	fetcher Fetcher

	// workers is the size of the detail-page worker pool.
	workers int

	// pageDelay is the pause between listing pages.
	pageDelay time.Duration

	// maxPages stops the walk after this many listing pages. 0 means no limit.
	maxPages int

	// reporter receives progress lines.
	reporter status.Reporter

	logger *slog.Logger

	extractor *extract.Extractor
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithWorkers sets the number of concurrent detail-page workers.
// Values below 1 are ignored.
func WithWorkers(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithPageDelay sets the pause between listing pages.
func WithPageDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		if d >= 0 {
			s.pageDelay = d
		}
	}
}

// WithMaxPages limits the number of listing pages. 0 means no limit.
func WithMaxPages(n int) SpiderOption {
	return func(s *Spider) {
		if n >= 0 {
			s.maxPages = n
		}
	}
}

// WithReporter sets where progress lines are posted.
func WithReporter(r status.Reporter) SpiderOption {
	return func(s *Spider) {
		if r != nil {
			s.reporter = r
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpider creates a Spider that loads pages through fetcher.
func NewSpider(fetcher Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:   fetcher,
		workers:   DefaultWorkers,
		pageDelay: DefaultPageDelay,
		reporter:  status.Discard,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.extractor = extract.New(s.reporter)
	return s
}

// Crawl walks session.ListingURL from page 1 until a page has no item
// blocks or the page limit is reached, appending each page's records to
// the session. The first transport error aborts the walk.
func (s *Spider) Crawl(ctx context.Context, session *model.Session) error {
	base, err := url.Parse(session.ListingURL)
	if err != nil {
		return fmt.Errorf("invalid listing URL %q: %w", session.ListingURL, err)
	}

	for page := 1; s.maxPages == 0 || page <= s.maxPages; page++ {
		session.Page = page
		s.reporter.Post(fmt.Sprintf("Loading page %d...", page))

		pageURL := PageURL(base, page)
		doc, err := s.fetcher.Document(ctx, pageURL)
		if err != nil {
			return fmt.Errorf("failed to load listing page %d: %w", page, err)
		}

		summaries := ParseListing(doc, base)
		if len(summaries) == 0 {
			s.logger.Debug("empty listing page, stopping", "page", page, "url", pageURL)
			return nil
		}

		items, err := s.visitAll(ctx, summaries)
		if err != nil {
			return err
		}

		session.AppendPage(items)
		s.reporter.Post(fmt.Sprintf("Completed page %d, moving on...", page))
		s.logger.Debug("listing page completed", "page", page, "items", len(items))

		if err := s.pause(ctx); err != nil {
			return err
		}
	}

	return nil
}

// PageURL returns the listing URL for the given 1-based page.
func PageURL(listing *url.URL, page int) string {
	u := *listing
	q := u.Query()
	q.Set("p", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// visitAll fetches every linked summary with the worker pool and returns
// the records in listing order.
func (s *Spider) visitAll(ctx context.Context, summaries []Summary) ([]model.WorkshopItem, error) {
	targets := make([]Summary, 0, len(summaries))
	for _, summary := range summaries {
		if summary.HasLink() {
			targets = append(targets, summary)
		}
	}
	if len(targets) == 0 {
		return []model.WorkshopItem{}, nil
	}

	results := make([]model.WorkshopItem, len(targets))
	jobs := make(chan int)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := range targets {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	workers := min(s.workers, len(targets))
	for w := 1; w <= workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				item, err := s.visit(gctx, w, targets[i])
				if err != nil {
					return err
				}
				results[i] = item
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// visit fetches one detail page and builds its record.
func (s *Spider) visit(ctx context.Context, worker int, target Summary) (model.WorkshopItem, error) {
	doc, err := s.fetcher.Document(ctx, target.URL)
	if err != nil {
		return model.WorkshopItem{}, fmt.Errorf("failed to load item %q: %w", target.Name, err)
	}

	item := s.extractor.Item(doc, target.Name, target.URL)
	s.reporter.Post(fmt.Sprintf("[Worker %d]: Found %s %s.", worker, item.DisplayCategory(), item.Name))
	return item, nil
}

// pause waits pageDelay or until ctx is done.
func (s *Spider) pause(ctx context.Context) error {
	if s.pageDelay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.pageDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
