package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/workshopper/internal/model"
)

// JSONWriter outputs a session as a JSON document.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string.
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Document is the JSON shape of an exported session.
type Document struct {
	User       string               `json:"user"`
	ListingURL string               `json:"listingUrl"`
	ScrapedAt  time.Time            `json:"scrapedAt"`
	Totals     model.Totals         `json:"totals"`
	Items      []model.WorkshopItem `json:"items"`
}

// Write outputs the session's items with their totals.
func (w *JSONWriter) Write(session *model.Session) error {
	doc := Document{
		User:       session.User,
		ListingURL: session.ListingURL,
		ScrapedAt:  session.StartedAt,
		Totals:     session.Totals(),
		Items:      session.Snapshot(),
	}

	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(doc, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return err
	}

	data = append(data, '\n')
	_, err = w.output.Write(data)
	return err
}
