package export

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/workshopper/internal/model"
)

// TableWriter prints a terminal summary of a session's items.
// Long text columns are left out; the file export carries them.
type TableWriter struct {
	baseWriter
}

// NewTableWriter creates a TableWriter that outputs to the given writer.
func NewTableWriter(output io.Writer) *TableWriter {
	return &TableWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders one row per item and a totals footer.
func (w *TableWriter) Write(session *model.Session) error {
	printer := newNumberPrinter()
	count := func(n int) string { return printer.Sprintf("%d", n) }

	t := table.NewWriter()
	t.SetOutputMirror(w.output)
	t.SetTitle(session.User)
	t.AppendHeader(table.Row{"#", "Name", "Type", "Airframe", "Visitors", "Subscribers", "Favorites", "Awards", "Comments", "Updated"})

	for i, item := range session.Snapshot() {
		t.AppendRow(table.Row{
			i + 1,
			item.Name,
			item.Type,
			item.Airframe,
			count(item.Visitors),
			count(item.Subscribers),
			count(item.Favorites),
			count(item.Awards),
			count(item.Comments),
			item.Updated,
		})
	}

	totals := session.Totals()
	t.AppendFooter(table.Row{
		"", "Total", count(totals.Items) + " items", "",
		count(totals.Visitors),
		count(totals.Subscribers),
		count(totals.Favorites),
		count(totals.Awards),
		count(totals.Comments),
		"",
	})

	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

// newNumberPrinter formats integers with English thousands separators.
func newNumberPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}
