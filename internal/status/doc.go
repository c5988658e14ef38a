// Package status provides the append-only progress feed shown to the user
// during a scrape.
//
// Producers (the session driver, the pagination loop, worker goroutines and
// field extractors) only enqueue lines. A single consumer goroutine owns the
// output writer and the line history, so lines are written whole and in the
// order they were accepted.
//
// # Usage
//
//	feed := status.NewFeed(os.Stdout)
//	defer feed.Close()
//	feed.Postf("Loading page %d...", 1)
package status
