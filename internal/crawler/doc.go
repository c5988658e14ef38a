// Package crawler walks a user's paginated workshop listing and collects
// one record per item.
//
// # Architecture
//
// The Spider drives pagination. For each listing page it parses the item
// blocks, hands the items with a link to a fixed pool of workers, waits
// for every worker to finish (a join barrier), appends the page's records
// to the session and pauses before requesting the next page. An empty
// listing page ends the walk.
//
// Workers fetch detail pages and build records with the extract package.
// Each worker has a stable 1-based index that appears in progress lines.
//
// # Failure model
//
// A transport error on a listing or detail page aborts the crawl and is
// returned to the caller. Missing or malformed markup never aborts: the
// extractors substitute placeholders instead.
//
// # Usage
//
//	spider := crawler.NewSpider(fetch.NewClient(), crawler.WithWorkers(4))
//	err := spider.Crawl(ctx, session)
package crawler
