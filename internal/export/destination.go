package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	input "github.com/tcnksm/go-input"

	"github.com/nao1215/workshopper/internal/model"
)

// UserPlaceholder in a fixed destination is replaced by the session's identifier.
const UserPlaceholder = "{user}"

// Destination decides where a session's results are written.
type Destination interface {
	// Resolve returns the output path for session, or ErrCancelled when
	// the user declined to choose one.
	Resolve(ctx context.Context, session *model.Session) (string, error)
}

// FixedDestination always writes to the same path.
type FixedDestination struct {
	path string
}

// NewFixedDestination creates a destination for path.
// Occurrences of UserPlaceholder are expanded per session.
func NewFixedDestination(path string) *FixedDestination {
	return &FixedDestination{path: strings.TrimSpace(path)}
}

// Resolve implements Destination.
func (d *FixedDestination) Resolve(_ context.Context, session *model.Session) (string, error) {
	if d.path == "" {
		return "", ErrNoDestination
	}
	return strings.ReplaceAll(d.path, UserPlaceholder, session.User), nil
}

// PromptDestination asks the user for a path on the terminal.
type PromptDestination struct {
	ui *input.UI
}

// PromptOption configures a PromptDestination.
type PromptOption func(*PromptDestination)

// WithPromptIO replaces the terminal with the given streams.
func WithPromptIO(r io.Reader, w io.Writer) PromptOption {
	return func(d *PromptDestination) {
		d.ui = &input.UI{Reader: r, Writer: w}
	}
}

// NewPromptDestination creates a destination that prompts on stdin/stdout.
func NewPromptDestination(opts ...PromptOption) *PromptDestination {
	d := &PromptDestination{ui: input.DefaultUI()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Resolve implements Destination. An empty answer or an interrupt cancels.
func (d *PromptDestination) Resolve(ctx context.Context, session *model.Session) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	query := fmt.Sprintf("Save %d items for %s to (.xlsx, .csv, .json, .md; empty to cancel)", session.ItemCount(), session.User)
	answer, err := d.ui.Ask(query, &input.Options{
		HideOrder: true,
	})
	if err != nil {
		if errors.Is(err, input.ErrInterrupted) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("failed to read destination: %w", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", ErrCancelled
	}
	return answer, nil
}
