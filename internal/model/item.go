package model

import (
	"strconv"
	"strings"
)

// Item types the storefront is known to show in the details block.
// The set is open-ended; any other text is kept as-is.
const (
	ItemTypeMission        = "Mission"
	ItemTypeAircraftLivery = "Aircraft Livery"
	ItemTypeUnknown        = "Unknown"
)

// Placeholder values used when a field cannot be found on the detail page.
const (
	// UnknownValue is the placeholder for missing text fields.
	UnknownValue = "Unknown"
	// UnknownFileSize is the placeholder for a missing file size.
	UnknownFileSize = "? KB"
	// NoDescription is the placeholder for a missing description.
	NoDescription = "No description."
	// ZeroCount is the placeholder for missing numeric fields before coercion.
	ZeroCount = "0"
)

// Columns is the ordered list of export column headers.
var Columns = []string{
	"Name",
	"Type",
	"Airframe",
	"Visitors",
	"Subscribers",
	"Favorites",
	"Awards",
	"Comments",
	"File Size",
	"Uploaded",
	"Updated",
	"Changes",
	"Description",
}

// WorkshopItem holds the statistics of one workshop item.
// Numeric fields are never negative; unparsable values are stored as 0.
type WorkshopItem struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Airframe    string `json:"airframe"`
	Visitors    int    `json:"visitors"`
	Subscribers int    `json:"subscribers"`
	Favorites   int    `json:"favorites"`
	Awards      int    `json:"awards"`
	Comments    int    `json:"comments"`
	FileSize    string `json:"fileSize"`
	Uploaded    string `json:"uploaded"`
	Updated     string `json:"updated"`
	Changes     int    `json:"changes"`
	Description string `json:"description"`

	// URL is the detail page the item was scraped from. It is not an export column.
	URL string `json:"url,omitempty"`
}

// Row returns the item's values in Columns order.
func (w WorkshopItem) Row() []any {
	return []any{
		w.Name,
		w.Type,
		w.Airframe,
		w.Visitors,
		w.Subscribers,
		w.Favorites,
		w.Awards,
		w.Comments,
		w.FileSize,
		w.Uploaded,
		w.Updated,
		w.Changes,
		w.Description,
	}
}

// StringRow returns the item's values in Columns order, formatted as text.
func (w WorkshopItem) StringRow() []string {
	return []string{
		w.Name,
		w.Type,
		w.Airframe,
		strconv.Itoa(w.Visitors),
		strconv.Itoa(w.Subscribers),
		strconv.Itoa(w.Favorites),
		strconv.Itoa(w.Awards),
		strconv.Itoa(w.Comments),
		w.FileSize,
		w.Uploaded,
		w.Updated,
		strconv.Itoa(w.Changes),
		w.Description,
	}
}

// Key identifies the item across scrapes: the detail URL when known, else the name.
func (w WorkshopItem) Key() string {
	if w.URL != "" {
		return w.URL
	}
	return w.Name
}

// DisplayCategory returns the coarse label used in progress messages.
// It is derived from Type and Airframe and is never exported.
func (w WorkshopItem) DisplayCategory() string {
	switch w.Type {
	case ItemTypeMission:
		return "custom mission"
	case ItemTypeAircraftLivery:
		if w.Airframe != "" && w.Airframe != UnknownValue {
			return w.Airframe + " livery"
		}
		return "livery"
	default:
		return "unknown"
	}
}

// ParseCount converts a scraped number such as "1,234" to an int.
// Thousands separators and surrounding whitespace are removed.
// Anything that does not parse to a non-negative integer yields 0.
func ParseCount(raw string) int {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	n, err := strconv.Atoi(cleaned)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// NormalizeDate rewrites the storefront's "12 Mar, 2024 @ 4:05pm" style
// into "12 Mar, 2024, 4:05pm".
func NormalizeDate(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), " @ ", ", ")
}
