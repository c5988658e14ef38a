package extract

import (
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/workshopper/internal/model"
	"github.com/nao1215/workshopper/internal/status"
)

// detailPage is a trimmed-down detail page with every extracted block present.
const detailPage = `<html><body>
<div class="rightDetailsBlock"><a href="/browse?type=livery"> Aircraft Livery </a></div>
<table class="stats_table">
  <tr><td>1,234</td><td>Unique Visitors</td></tr>
  <tr><td>56</td><td>Current Subscribers</td></tr>
  <tr><td>7</td><td>Current Favorites</td></tr>
  <tr><td>ignored</td></tr>
</table>
<div class="review_award_ctn">
  <div class="review_award tooltip" data-reactioncount="2"></div>
  <div class="review_award tooltip"></div>
  <div class="review_award tooltip" data-reactioncount="5"></div>
</div>
<div class="commentthread_header_and_count">
  <span class="ellipsis commentthread_count_label"><span> 12 </span> Comments</span>
</div>
<div class="detailsStatsContainerRight">
  <div class="detailsStatRight"> 1.204 MB </div>
  <div class="detailsStatRight">12 Mar, 2024 @ 4:05pm</div>
  <div class="detailsStatRight">2 Apr, 2024 @ 9:10am</div>
</div>
<div class="detailsStatNumChangeNotes"> 3 Change Notes ( view ) </div>
<div id="highlightContent" class="workshopItemDescription"> Desert camo for the new CRICKET. </div>
</body></html>`

// recorder collects reported lines.
type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) Post(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func mustDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return doc
}

// TestExtractorItem tests building a full record from a detail page.
func TestExtractorItem(t *testing.T) {
	t.Parallel()

	t.Run("complete page", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		got := New(rec).Item(mustDoc(t, detailPage), "Desert Cricket", "https://example.com/item/1")

		want := model.WorkshopItem{
			Name:        "Desert Cricket",
			Type:        model.ItemTypeAircraftLivery,
			Airframe:    "CI-22",
			Visitors:    1234,
			Subscribers: 56,
			Favorites:   7,
			Awards:      7,
			Comments:    12,
			FileSize:    "1.204 MB",
			Uploaded:    "12 Mar, 2024, 4:05pm",
			Updated:     "2 Apr, 2024, 9:10am",
			Changes:     3,
			Description: "Desert camo for the new CRICKET.",
			URL:         "https://example.com/item/1",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Item() mismatch (-want +got):\n%s", diff)
		}
		if len(rec.lines) != 0 {
			t.Errorf("expected no reports, got %v", rec.lines)
		}
	})

	t.Run("empty page yields placeholders", func(t *testing.T) {
		t.Parallel()

		got := New(nil).Item(mustDoc(t, "<html><body></body></html>"), "Bare", "")

		want := model.WorkshopItem{
			Name:        "Bare",
			Type:        model.ItemTypeUnknown,
			Airframe:    model.UnknownValue,
			FileSize:    model.UnknownFileSize,
			Uploaded:    model.UnknownValue,
			Updated:     model.UnknownValue,
			Description: model.NoDescription,
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Item() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missions carry no airframe", func(t *testing.T) {
		t.Parallel()

		page := `<div class="rightDetailsBlock"><a>Mission</a></div>
<div id="highlightContent" class="workshopItemDescription">Escort the Cricket.</div>`
		got := New(nil).Item(mustDoc(t, page), "Escort", "")
		if got.Airframe != model.UnknownValue {
			t.Errorf("expected Unknown airframe, got %q", got.Airframe)
		}
		if got.DisplayCategory() != "custom mission" {
			t.Errorf("expected custom mission, got %q", got.DisplayCategory())
		}
	})
}

// TestExtractorFields tests individual extractors on edge-case markup.
func TestExtractorFields(t *testing.T) {
	t.Parallel()

	t.Run("stat with thousands separator", func(t *testing.T) {
		t.Parallel()

		doc := mustDoc(t, detailPage)
		if got := New(nil).Stat(doc, LabelVisitors); got != "1,234" {
			t.Errorf("expected raw stat text, got %q", got)
		}
		if got := New(nil).Stat(doc, "Missing Label"); got != "0" {
			t.Errorf("expected 0 for missing label, got %q", got)
		}
	})

	t.Run("awards without container", func(t *testing.T) {
		t.Parallel()

		if got := New(nil).Awards(mustDoc(t, "<div></div>")); got != "0" {
			t.Errorf("expected 0, got %q", got)
		}
	})

	t.Run("non-numeric award count is reported", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		page := `<div class="review_award_ctn"><div class="review_award tooltip" data-reactioncount="lots"></div></div>`
		if got := New(rec).Awards(mustDoc(t, page)); got != "0" {
			t.Errorf("expected 0, got %q", got)
		}
		if len(rec.lines) != 1 || !strings.HasPrefix(rec.lines[0], "Error fetching awards: ") {
			t.Errorf("expected one awards report, got %v", rec.lines)
		}
	})

	tests := []struct {
		name string
		html string
		want string
	}{
		{name: "changes with bare suffix", html: `<div class="detailsStatNumChangeNotes">42 ( view )</div>`, want: "42"},
		{name: "changes with singular label", html: `<div class="detailsStatNumChangeNotes">1 Change Note ( view )</div>`, want: "1"},
		{name: "changes without suffix", html: `<div class="detailsStatNumChangeNotes">42</div>`, want: "0"},
		{name: "changes missing", html: `<div></div>`, want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := New(nil).Changes(mustDoc(t, tt.html)); got != tt.want {
				t.Errorf("Changes() = %q, expected %q", got, tt.want)
			}
		})
	}

	t.Run("file info with two stats", func(t *testing.T) {
		t.Parallel()

		page := `<div class="detailsStatsContainerRight">
<div class="detailsStatRight">3 KB</div><div class="detailsStatRight">1 Jan @ 1:00am</div></div>`
		got := New(nil).FileInfo(mustDoc(t, page))
		want := FileInfo{Size: "3 KB", Uploaded: "1 Jan @ 1:00am", Updated: "1 Jan @ 1:00am"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("FileInfo() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("file info with one stat falls back", func(t *testing.T) {
		t.Parallel()

		page := `<div class="detailsStatsContainerRight"><div class="detailsStatRight">3 KB</div></div>`
		if diff := cmp.Diff(defaultFileInfo, New(nil).FileInfo(mustDoc(t, page))); diff != "" {
			t.Errorf("FileInfo() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("comments without inner span", func(t *testing.T) {
		t.Parallel()

		page := `<div class="commentthread_header_and_count"><span class="ellipsis commentthread_count_label">none</span></div>`
		if got := New(nil).Comments(mustDoc(t, page)); got != "0" {
			t.Errorf("expected 0, got %q", got)
		}
	})
}

// TestGuard tests that panics become reports.
func TestGuard(t *testing.T) {
	t.Parallel()

	feed := status.NewFeed(nil)
	e := New(feed)

	got := guard(e, "description", model.NoDescription, func() (string, error) {
		panic("selector exploded")
	})
	feed.Close()

	if got != model.NoDescription {
		t.Errorf("expected default after panic, got %q", got)
	}
	lines := feed.Lines()
	if len(lines) != 1 || lines[0] != "Error fetching description: selector exploded" {
		t.Errorf("unexpected report %v", lines)
	}
}
