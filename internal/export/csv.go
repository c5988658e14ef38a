package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/nao1215/workshopper/internal/model"
)

// CSVWriter outputs items as comma-separated values.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs a header record followed by one record per item.
func (w *CSVWriter) Write(session *model.Session) error {
	cw := csv.NewWriter(w.output)

	if err := cw.Write(model.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, item := range session.Snapshot() {
		if err := cw.Write(item.StringRow()); err != nil {
			return fmt.Errorf("failed to write record for %q: %w", item.Name, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
