package export

import (
	"io"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/workshopper/internal/model"
)

// MarkdownWriter outputs a session as a Markdown report.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs a summary, a type breakdown and the item table.
func (w *MarkdownWriter) Write(session *model.Session) error {
	md := markdown.NewMarkdown(w.output)
	items := session.Snapshot()

	md.H1("Workshop items of " + session.User)
	md.PlainText("")

	w.writeSummary(md, session)
	w.writeBreakdown(md, items)
	w.writeItems(md, items)

	return md.Build()
}

// writeSummary writes the session totals table.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, session *model.Session) {
	totals := session.Totals()
	printer := newNumberPrinter()

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Listing", session.ListingURL},
			{"Scraped", session.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Items", printer.Sprintf("%d", totals.Items)},
			{"Visitors", printer.Sprintf("%d", totals.Visitors)},
			{"Subscribers", printer.Sprintf("%d", totals.Subscribers)},
			{"Favorites", printer.Sprintf("%d", totals.Favorites)},
			{"Awards", printer.Sprintf("%d", totals.Awards)},
			{"Comments", printer.Sprintf("%d", totals.Comments)},
		},
	})
	md.PlainText("")
}

// writeBreakdown writes a pie chart of items per display category.
func (w *MarkdownWriter) writeBreakdown(md *markdown.Markdown, items []model.WorkshopItem) {
	if len(items) == 0 {
		md.Note("No workshop items were found.")
		md.PlainText("")
		return
	}

	order := make([]string, 0)
	counts := make(map[string]uint64)
	for _, item := range items {
		category := item.DisplayCategory()
		if _, ok := counts[category]; !ok {
			order = append(order, category)
		}
		counts[category]++
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Items by category"),
		piechart.WithShowData(true),
	)
	for _, category := range order {
		chart.LabelAndIntValue(category, counts[category])
	}

	md.H2("Categories")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeItems writes one table row per item.
func (w *MarkdownWriter) writeItems(md *markdown.Markdown, items []model.WorkshopItem) {
	md.H2("Items")
	md.PlainText("")

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := item.StringRow()
		for i, cell := range row {
			row[i] = escapeCell(cell)
		}
		rows = append(rows, row)
	}

	md.Table(markdown.TableSet{
		Header: model.Columns,
		Rows:   rows,
	})
	md.PlainText("")
}

// escapeCell keeps a value on one table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	return strings.ReplaceAll(s, "\n", "<br>")
}
