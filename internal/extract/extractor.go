package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/workshopper/internal/model"
	"github.com/nao1215/workshopper/internal/status"
)

// Stat labels as they appear in the second cell of the stats table.
const (
	LabelVisitors    = "Unique Visitors"
	LabelSubscribers = "Current Subscribers"
	LabelFavorites   = "Current Favorites"
)

// Field names used in error reports.
const (
	fieldAwards      = "awards"
	fieldItemType    = "item type"
	fieldComments    = "comments"
	fieldFileInfo    = "file info"
	fieldChanges     = "changes"
	fieldDescription = "description"
)

// viewSuffix closes the change-notes counter on the detail page.
const viewSuffix = "( view )"

// changeNoteLabels are stripped from the change-notes counter, longest first.
var changeNoteLabels = []string{"Change Notes", "Change Note"}

// Extractor reads fields from detail pages.
// It holds no per-page state and is safe for concurrent use
// when its reporter is.
type Extractor struct {
	reporter status.Reporter
}

// New creates an Extractor that reports failures to r.
// A nil reporter discards reports.
func New(r status.Reporter) *Extractor {
	if r == nil {
		r = status.Discard
	}
	return &Extractor{reporter: r}
}

// FileInfo is the size and dates block of a detail page.
type FileInfo struct {
	Size     string
	Uploaded string
	Updated  string
}

// defaultFileInfo is returned when the block is missing or incomplete.
var defaultFileInfo = FileInfo{
	Size:     model.UnknownFileSize,
	Uploaded: model.UnknownValue,
	Updated:  model.UnknownValue,
}

// Item builds a complete record from a detail page.
func (e *Extractor) Item(doc *goquery.Document, name, itemURL string) model.WorkshopItem {
	itemType := e.ItemType(doc)
	description := e.Description(doc)
	info := e.FileInfo(doc)

	return model.WorkshopItem{
		Name:        name,
		Type:        itemType,
		Airframe:    model.AirframeFor(itemType, description),
		Visitors:    model.ParseCount(e.Stat(doc, LabelVisitors)),
		Subscribers: model.ParseCount(e.Stat(doc, LabelSubscribers)),
		Favorites:   model.ParseCount(e.Stat(doc, LabelFavorites)),
		Awards:      model.ParseCount(e.Awards(doc)),
		Comments:    model.ParseCount(e.Comments(doc)),
		FileSize:    info.Size,
		Uploaded:    model.NormalizeDate(info.Uploaded),
		Updated:     model.NormalizeDate(info.Updated),
		Changes:     model.ParseCount(e.Changes(doc)),
		Description: description,
		URL:         itemURL,
	}
}

// Stat returns the value next to label in the stats table, or "0".
func (e *Extractor) Stat(doc *goquery.Document, label string) string {
	return guard(e, label, model.ZeroCount, func() (string, error) {
		value := model.ZeroCount
		doc.Find("table.stats_table").First().Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
			cells := row.Find("td")
			if cells.Length() == 2 && strings.Contains(cells.Eq(1).Text(), label) {
				value = strings.TrimSpace(cells.Eq(0).Text())
				return false
			}
			return true
		})
		return value, nil
	})
}

// Awards sums the reaction counts of every award badge.
// Badges without a count contribute nothing; a count that is not an
// integer is an error.
func (e *Extractor) Awards(doc *goquery.Document) string {
	return guard(e, fieldAwards, model.ZeroCount, func() (string, error) {
		container := doc.Find("div.review_award_ctn").First()
		if container.Length() == 0 {
			return model.ZeroCount, nil
		}

		total := 0
		var parseErr error
		container.Find("div.review_award.tooltip").EachWithBreak(func(_ int, badge *goquery.Selection) bool {
			raw, ok := badge.Attr("data-reactioncount")
			if !ok {
				return true
			}
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				parseErr = fmt.Errorf("invalid reaction count %q: %w", raw, err)
				return false
			}
			total += n
			return true
		})
		if parseErr != nil {
			return "", parseErr
		}
		return strconv.Itoa(total), nil
	})
}

// ItemType returns the first link text of the details block.
func (e *Extractor) ItemType(doc *goquery.Document) string {
	return guard(e, fieldItemType, model.ItemTypeUnknown, func() (string, error) {
		link := doc.Find("div.rightDetailsBlock").First().Find("a").First()
		if link.Length() == 0 {
			return model.ItemTypeUnknown, nil
		}
		return strings.TrimSpace(link.Text()), nil
	})
}

// Comments returns the comment counter text, or "0".
func (e *Extractor) Comments(doc *goquery.Document) string {
	return guard(e, fieldComments, model.ZeroCount, func() (string, error) {
		count := doc.Find("div.commentthread_header_and_count").First().
			Find("span.ellipsis.commentthread_count_label").First().
			Find("span").First()
		if count.Length() == 0 {
			return model.ZeroCount, nil
		}
		return strings.TrimSpace(count.Text()), nil
	})
}

// FileInfo returns the size, upload date and update date.
// At least size and upload date must be present; the update date
// defaults to the upload date.
func (e *Extractor) FileInfo(doc *goquery.Document) FileInfo {
	return guard(e, fieldFileInfo, defaultFileInfo, func() (FileInfo, error) {
		stats := doc.Find("div.detailsStatsContainerRight").First().Find("div.detailsStatRight")
		if stats.Length() < 2 {
			return defaultFileInfo, nil
		}

		info := FileInfo{
			Size:     strings.TrimSpace(stats.Eq(0).Text()),
			Uploaded: strings.TrimSpace(stats.Eq(1).Text()),
		}
		info.Updated = info.Uploaded
		if stats.Length() >= 3 {
			info.Updated = strings.TrimSpace(stats.Eq(2).Text())
		}
		return info, nil
	})
}

// Changes returns the number of change notes, or "0" when the counter
// does not end in "( view )".
func (e *Extractor) Changes(doc *goquery.Document) string {
	return guard(e, fieldChanges, model.ZeroCount, func() (string, error) {
		note := doc.Find("div.detailsStatNumChangeNotes").First()
		if note.Length() == 0 {
			return model.ZeroCount, nil
		}

		text := strings.TrimSpace(note.Text())
		if !strings.HasSuffix(text, viewSuffix) {
			return model.ZeroCount, nil
		}
		text = strings.TrimSpace(strings.TrimSuffix(text, viewSuffix))
		for _, label := range changeNoteLabels {
			if strings.HasSuffix(text, label) {
				text = strings.TrimSpace(strings.TrimSuffix(text, label))
				break
			}
		}
		return text, nil
	})
}

// Description returns the item description text.
func (e *Extractor) Description(doc *goquery.Document) string {
	return guard(e, fieldDescription, model.NoDescription, func() (string, error) {
		desc := doc.Find("div#highlightContent.workshopItemDescription").First()
		if desc.Length() == 0 {
			return model.NoDescription, nil
		}
		return strings.TrimSpace(desc.Text()), nil
	})
}

// guard runs fn, turning errors and panics into a report plus the default.
func guard[T any](e *Extractor, field string, def T, fn func() (T, error)) (result T) {
	defer func() {
		if r := recover(); r != nil {
			e.report(field, fmt.Errorf("%v", r))
			result = def
		}
	}()

	v, err := fn()
	if err != nil {
		e.report(field, err)
		return def
	}
	return v
}

func (e *Extractor) report(field string, err error) {
	e.reporter.Post(fmt.Sprintf("Error fetching %s: %v", field, err))
}
