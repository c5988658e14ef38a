package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/workshopper/internal/model"
)

// DefaultConcurrency is the number of identifiers scraped at once when no
// option overrides it.
const DefaultConcurrency = 1

// Factory builds the pipeline for one identifier.
// Each session gets a fresh pipeline so per-identifier settings never leak.
type Factory func(id model.Identifier) *Pipeline

// BatchProcessor scrapes several identifiers concurrently.
// It uses errgroup to manage goroutines and respect the concurrency limit.
type BatchProcessor struct {
	factory Factory

	// concurrency is the maximum number of sessions running at once.
	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent sessions.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor that asks factory for
// each identifier's pipeline.
func NewBatchProcessor(factory Factory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch runs one session per identifier and returns the sessions in
// input order. A failed session does not stop the others; its error is
// recorded on the session. The returned error is non-nil only when the
// context was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, ids []model.Identifier) ([]*model.Session, error) {
	results := make([]*model.Session, len(ids))
	err := bp.ProcessBatchWithCallback(ctx, ids, func(session *model.Session, index int) {
		results[index] = session
	})
	return results, err
}

// ProcessBatchWithCallback runs one session per identifier and calls
// callback as each one finishes. The callback is called from the goroutine
// that ran the session, so it must be safe for concurrent use when the
// concurrency is above one.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	ids []model.Identifier,
	callback func(session *model.Session, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_users", len(ids),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("scraping user",
				"user", id.String(),
				"index", i+1,
				"total", len(ids),
			)

			session := model.NewSession(id)
			if err := bp.factory(id).Execute(ctx, session); err != nil {
				bp.logger.Warn("session failed", "user", id.String(), "error", err)
			}

			callback(session, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch processing complete",
		"total_users", len(ids),
		"elapsed", time.Since(startTime),
	)
	return err
}
