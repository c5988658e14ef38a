package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/workshopper/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the session produced by
// the previous steps.
type Step interface {
	// Do executes the pipeline step.
	// A returned error ends the run unless the pipeline continues on error.
	Do(ctx context.Context, session *model.Session) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError runs the remaining steps after a failure.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to keep executing steps
// after one fails. The failure is still recorded on the session.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// Cancellation is checked before each step; steps handle it themselves
// while running.
//
// Returns the first error encountered if continueOnError is false.
// Every error is also recorded with session.Fail.
func (p *Pipeline) Execute(ctx context.Context, session *model.Session) error {
	var firstErr error

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"user", session.User,
				"reason", ctx.Err(),
			)
			session.Fail(ctx.Err())
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"user", session.User,
		)

		if err := step.Do(ctx, session); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"user", session.User,
				"error", err,
			)

			session.Fail(err)
			if !p.continueOnError {
				return err
			}
			if firstErr == nil {
				firstErr = err
			}
		} else {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"user", session.User,
			)
		}

		session.PerformedSteps = append(session.PerformedSteps, step.Name())
	}

	return firstErr
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
