// Package database stores the history of scrape sessions in SQLite.
//
// Each successful session is saved with its items, so later runs can list
// what was collected and compare two scrapes of the same user. The driver
// is modernc.org/sqlite, which needs no cgo.
//
// The database lives in a single file, workshopper.db, inside the
// configured data directory (by default the XDG data home).
package database
