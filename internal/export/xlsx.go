package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/workshopper/internal/model"
)

// SheetName is the name of the worksheet holding the items.
const SheetName = "Workshop Items"

// defaultSheet is the sheet every new excelize file starts with.
const defaultSheet = "Sheet1"

// XLSXWriter outputs items as a spreadsheet.
type XLSXWriter struct {
	baseWriter
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one header row followed by one row per item.
func (w *XLSXWriter) Write(session *model.Session) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName(defaultSheet, SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DCE6F1"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	// Column widths must be set before the first row is streamed.
	if err := sw.SetColWidth(1, 1, 40); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := sw.SetColWidth(len(model.Columns), len(model.Columns), 80); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	header := make([]any, len(model.Columns))
	for i, col := range model.Columns {
		header[i] = col
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, item := range session.Snapshot() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := sw.SetRow(cell, item.Row()); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w.output); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
