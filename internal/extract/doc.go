// Package extract pulls individual fields out of a workshop item's detail page.
//
// Every extractor is total: when the expected markup is missing it returns
// the field's placeholder, and when extraction fails (including a panic
// inside a selector callback) it reports "Error fetching <field>: <err>" to
// the status feed and returns the placeholder. Markup variance therefore
// never aborts a scrape.
package extract
