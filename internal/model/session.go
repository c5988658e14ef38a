package model

import (
	"sync"
	"time"
)

// ExportState records what happened to a session's results at export time.
type ExportState int

const (
	// ExportPending means the exporter has not run yet.
	ExportPending ExportState = iota
	// ExportWritten means the results were written to OutputPath.
	ExportWritten
	// ExportCancelled means the user declined to choose a destination.
	ExportCancelled
)

// String returns the string representation of the ExportState.
func (s ExportState) String() string {
	switch s {
	case ExportWritten:
		return "written"
	case ExportCancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// Session is the state of one scrape run for one identifier.
// It lives from the start of the run until the results are exported and saved.
type Session struct {
	// Identifier is the classified user identifier being scraped.
	Identifier Identifier `json:"-"`

	// User is the identifier as typed, kept for serialization.
	User string `json:"user"`

	// ListingURL is the first listing page URL without the page parameter.
	ListingURL string `json:"listingUrl"`

	// Page is the listing page currently being processed (1-based).
	Page int `json:"page"`

	// PagesCompleted counts listing pages that produced at least one item block.
	PagesCompleted int `json:"pagesCompleted"`

	// Items accumulates the scraped records, grouped by page.
	Items []WorkshopItem `json:"items"`

	// StartedAt and FinishedAt bound the crawl.
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	// OutputPath is where the results were exported, empty until written.
	OutputPath string `json:"outputPath,omitempty"`

	// Export tells whether the results were written, cancelled, or not yet handled.
	Export ExportState `json:"export"`

	// Err is the error that ended the run, if any.
	Err error `json:"-"`

	// ErrorMessage mirrors Err for serialization.
	ErrorMessage string `json:"error,omitempty"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performedSteps,omitempty"`

	mu sync.Mutex
}

// NewSession creates a session for the identifier at page 1.
func NewSession(id Identifier) *Session {
	return &Session{
		Identifier: id,
		User:       id.String(),
		Page:       1,
		Items:      make([]WorkshopItem, 0),
		StartedAt:  time.Now(),
	}
}

// AppendPage adds the gathered results of one completed page.
func (s *Session) AppendPage(items []WorkshopItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Items = append(s.Items, items...)
	s.PagesCompleted++
}

// ItemCount returns the number of records collected so far.
func (s *Session) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Items)
}

// Snapshot returns a copy of the collected records.
func (s *Session) Snapshot() []WorkshopItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]WorkshopItem, len(s.Items))
	copy(out, s.Items)
	return out
}

// Fail records the error that ended the run.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
	if err != nil {
		s.ErrorMessage = err.Error()
	}
}

// Totals sums the numeric fields across all collected records.
func (s *Session) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t Totals
	for _, item := range s.Items {
		t.Items++
		t.Visitors += item.Visitors
		t.Subscribers += item.Subscribers
		t.Favorites += item.Favorites
		t.Awards += item.Awards
		t.Comments += item.Comments
	}
	return t
}

// Totals is the aggregate of a session's numeric fields.
type Totals struct {
	Items       int `json:"items"`
	Visitors    int `json:"visitors"`
	Subscribers int `json:"subscribers"`
	Favorites   int `json:"favorites"`
	Awards      int `json:"awards"`
	Comments    int `json:"comments"`
}
