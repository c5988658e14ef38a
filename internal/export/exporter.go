package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/nao1215/workshopper/internal/model"
)

const (
	// filePermission is the mode of exported files.
	filePermission = 0o644

	// dirPermission is the mode of created parent directories.
	dirPermission = 0o755
)

// Exporter writes sessions to the paths chosen by a Destination.
// Exports are serialized, so concurrent sessions never prompt at once.
type Exporter struct {
	destination Destination

	// dir is joined to relative destinations when set.
	dir string

	logger *slog.Logger

	mu sync.Mutex
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithOutputDir resolves relative destinations against dir.
func WithOutputDir(dir string) ExporterOption {
	return func(e *Exporter) {
		e.dir = dir
	}
}

// WithExportLogger sets the logger used for debug output.
func WithExportLogger(logger *slog.Logger) ExporterOption {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExporter creates an Exporter that asks destination for paths.
func NewExporter(destination Destination, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		destination: destination,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes session's items and records the outcome on the session.
// A cancelled destination sets model.ExportCancelled and returns nil.
func (e *Exporter) Export(ctx context.Context, session *model.Session) error {
	return e.ExportTo(ctx, session, e.destination)
}

// ExportTo is Export with a destination chosen by the caller, used when
// identifiers in one run have different destinations. It shares the
// exporter's lock with Export.
func (e *Exporter) ExportTo(ctx context.Context, session *model.Session, destination Destination) error {
	if destination == nil {
		return ErrNoDestination
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	path, err := destination.Resolve(ctx, session)
	if errors.Is(err, ErrCancelled) {
		session.Export = model.ExportCancelled
		e.logger.Debug("export cancelled", "user", session.User)
		return nil
	}
	if err != nil {
		return err
	}

	path = NormalizePath(path)
	if e.dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(e.dir, path)
	}

	if err := WriteFile(path, session); err != nil {
		return err
	}

	session.OutputPath = path
	session.Export = model.ExportWritten
	e.logger.Debug("export written", "user", session.User, "path", path, "items", session.ItemCount())
	return nil
}

// WriteFile writes session to path in the format implied by its extension,
// creating parent directories as needed.
func WriteFile(path string, session *model.Session) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermission); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	w, err := NewWriter(format, f)
	if err != nil {
		return err
	}
	if err := w.Write(session); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
