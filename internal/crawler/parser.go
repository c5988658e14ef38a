package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/workshopper/internal/model"
)

// Summary is the name and detail link of one item block on a listing page.
type Summary struct {
	// Name is the trimmed title text, or "Unknown" when the title is missing.
	Name string

	// URL is the absolute detail-page URL. Empty when the block has no usable link.
	URL string
}

// HasLink reports whether the summary can be visited.
func (s Summary) HasLink() bool {
	return s.URL != ""
}

// ParseListing returns the item blocks of a listing page in document order.
// Relative links are resolved against base; a nil base keeps them as-is.
func ParseListing(doc *goquery.Document, base *url.URL) []Summary {
	blocks := doc.Find(".workshopItem")
	summaries := make([]Summary, 0, blocks.Length())

	blocks.Each(func(_ int, block *goquery.Selection) {
		summary := Summary{Name: model.UnknownValue}

		if title := block.Find(".workshopItemTitle").First(); title.Length() > 0 {
			summary.Name = strings.TrimSpace(title.Text())
		}

		href, ok := block.Find("a").First().Attr("href")
		if ok {
			summary.URL = resolveURL(base, href)
		}

		summaries = append(summaries, summary)
	})

	return summaries
}

// resolveURL resolves href against base. Empty or unparsable hrefs yield "".
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
