// Package fetch retrieves storefront pages and parses them into queryable
// HTML documents.
//
// A Client wraps a resty HTTP client. Every request carries the configured
// user agent and extra headers. Responses are decoded according to their
// Content-Type charset before parsing, so pages served in legacy encodings
// produce the same text as UTF-8 pages.
//
// Non-2xx responses are returned as *StatusError, which matches
// ErrUnexpectedStatus with errors.Is. There is no retry or backoff.
package fetch
