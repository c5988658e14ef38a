// Package export writes scraped workshop items to files and terminals.
//
// Writers render a session's items in one format each:
//   - XLSXWriter: spreadsheet with a bold header row (the default)
//   - CSVWriter: comma-separated values with a header row
//   - JSONWriter: the session with its items and totals
//   - MarkdownWriter: a report with an item table and a type breakdown
//   - TableWriter: a terminal summary table
//
// The file format is chosen from the destination's extension. A path
// without an extension gets ".xlsx" appended.
//
// An Exporter asks a Destination where to write. A destination may be
// fixed (a command-line flag or config profile) or interactive. Declining
// the interactive prompt cancels the export without an error.
package export
