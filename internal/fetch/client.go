package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// maxRedirects bounds redirect chains.
const maxRedirects = 10

// Client fetches HTML pages.
// It is safe for concurrent use by multiple goroutines.
type Client struct {
	http *resty.Client

	userAgent string
	headers   map[string]string
	timeout   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHeaders adds extra headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// NewClient creates a Client with the given options applied.
func NewClient(opts ...Option) *Client {
	c := &Client{
		userAgent: DefaultUserAgent,
		headers:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}

	rc := resty.New()
	rc.SetHeader("User-Agent", c.userAgent)
	rc.SetHeaders(c.headers)
	rc.SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))
	if c.timeout > 0 {
		rc.SetTimeout(c.timeout)
	}
	c.http = rc

	return c
}

// Timeout returns the configured per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Get fetches rawURL and returns the response body.
// Non-2xx responses are reported as *StatusError.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(u.String())
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}

	if res.StatusCode() < 200 || res.StatusCode() > 299 {
		return nil, "", &StatusError{URL: rawURL, StatusCode: res.StatusCode()}
	}

	return res.Body(), res.Header().Get("Content-Type"), nil
}

// Document fetches rawURL and parses the response as HTML.
func (c *Client) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, contentType, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(body, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", rawURL, err)
	}

	// Relative links resolve against the page that was actually requested.
	if u, err := url.Parse(rawURL); err == nil {
		doc.Url = u
	}

	return doc, nil
}

// Parse decodes body according to contentType and builds a document.
func Parse(body []byte, contentType string) (*goquery.Document, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset: %w", err)
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return goquery.NewDocumentFromNode(root), nil
}
