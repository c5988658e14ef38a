// Package pipeline runs the stages of a scrape session in sequence.
//
// A session for one identifier moves through a crawl step, an export step,
// and optionally a summary-table step and a history step. Each stage is a
// Step that receives the session and may modify it. A failing step ends
// the run and is recorded on the session, so nothing is exported from a
// crawl that did not finish.
//
// BatchProcessor scrapes several identifiers with bounded concurrency using
// errgroup. Each identifier gets its own pipeline from a factory.
package pipeline
