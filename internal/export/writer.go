package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nao1215/workshopper/internal/model"
)

// Writer renders a session's items to an output stream.
type Writer interface {
	// Write outputs every collected item of session.
	Write(session *model.Session) error
}

// Format identifies an export file format.
type Format string

// Supported formats, named by file extension.
const (
	FormatXLSX     Format = ".xlsx"
	FormatCSV      Format = ".csv"
	FormatJSON     Format = ".json"
	FormatMarkdown Format = ".md"
)

// DefaultFormat is used when a destination has no extension.
const DefaultFormat = FormatXLSX

// NormalizePath appends the default extension when path has none.
func NormalizePath(path string) string {
	if filepath.Ext(path) == "" {
		return path + string(DefaultFormat)
	}
	return path
}

// FormatFromPath returns the format implied by the extension of path.
// A path without an extension uses DefaultFormat.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch Format(ext) {
	case "":
		return DefaultFormat, nil
	case FormatXLSX, FormatCSV, FormatJSON, FormatMarkdown:
		return Format(ext), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// NewWriter returns the writer for format that outputs to output.
func NewWriter(format Format, output io.Writer) (Writer, error) {
	switch format {
	case FormatXLSX:
		return NewXLSXWriter(output), nil
	case FormatCSV:
		return NewCSVWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
}

// baseWriter provides common functionality for writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
