package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrEmptyIdentifier is returned when the identifier is empty after trimming.
var ErrEmptyIdentifier = errors.New("please enter a Steam username")

// IdentifierKind tells how a user identifier addresses a Steam profile.
type IdentifierKind int

const (
	// IdentifierKindUnknown is the zero value and never produced by ParseIdentifier.
	IdentifierKindUnknown IdentifierKind = iota
	// IdentifierKindProfileID is an all-digit SteamID64.
	IdentifierKindProfileID
	// IdentifierKindVanity is a custom profile link name.
	IdentifierKindVanity
)

// String returns the string representation of the IdentifierKind.
func (k IdentifierKind) String() string {
	switch k {
	case IdentifierKindProfileID:
		return "profile"
	case IdentifierKindVanity:
		return "vanity"
	default:
		return "unknown"
	}
}

// pathSegment returns the URL path segment used by the storefront for the kind.
func (k IdentifierKind) pathSegment() string {
	if k == IdentifierKindProfileID {
		return "profiles"
	}
	return "id"
}

// Identifier is an immutable value object for a user-supplied Steam identifier.
type Identifier struct {
	value string
	kind  IdentifierKind
}

// ParseIdentifier trims raw and classifies it.
// All-digit input is a profile ID, anything else is a vanity name.
func ParseIdentifier(raw string) (Identifier, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Identifier{}, ErrEmptyIdentifier
	}

	kind := IdentifierKindVanity
	if isDigits(value) {
		kind = IdentifierKindProfileID
	}
	return Identifier{value: value, kind: kind}, nil
}

// MustParseIdentifier is like ParseIdentifier but panics on error.
// It is meant for tests and constants.
func MustParseIdentifier(raw string) Identifier {
	id, err := ParseIdentifier(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the trimmed identifier.
func (i Identifier) String() string {
	return i.value
}

// Kind returns the identifier classification.
func (i Identifier) Kind() IdentifierKind {
	return i.kind
}

// IsZero reports whether the identifier is the zero value.
func (i Identifier) IsZero() bool {
	return i.value == ""
}

// DetectionMessage returns the status line announcing how the identifier was classified.
func (i Identifier) DetectionMessage() string {
	if i.kind == IdentifierKindProfileID {
		return "Steam User ID detected, searching..."
	}
	return "Steam CustomLink name detected, searching..."
}

// ListingURL builds the workshop listing URL for the identifier.
// baseURL is the storefront origin, e.g. "https://steamcommunity.com".
func (i Identifier) ListingURL(baseURL string, appID int) (string, error) {
	if i.IsZero() {
		return "", ErrEmptyIdentifier
	}

	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}

	base.Path = base.Path + "/" + i.kind.pathSegment() + "/" + i.value + "/myworkshopfiles/"
	query := url.Values{}
	query.Set("appid", fmt.Sprintf("%d", appID))
	base.RawQuery = query.Encode()

	return base.String(), nil
}

// isDigits reports whether s is non-empty and made of ASCII digits only.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
