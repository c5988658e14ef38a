package model

import (
	"errors"
	"testing"
)

func TestParseIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantValue string
		wantKind  IdentifierKind
		wantErr   error
	}{
		{
			name:      "numeric profile id",
			raw:       "76561198000000000",
			wantValue: "76561198000000000",
			wantKind:  IdentifierKindProfileID,
		},
		{
			name:      "vanity name",
			raw:       "offiry",
			wantValue: "offiry",
			wantKind:  IdentifierKindVanity,
		},
		{
			name:      "alphanumeric is vanity",
			raw:       "pilot42",
			wantValue: "pilot42",
			wantKind:  IdentifierKindVanity,
		},
		{
			name:      "surrounding whitespace is trimmed",
			raw:       "  12345 \n",
			wantValue: "12345",
			wantKind:  IdentifierKindProfileID,
		},
		{
			name:    "empty identifier",
			raw:     "",
			wantErr: ErrEmptyIdentifier,
		},
		{
			name:    "whitespace only identifier",
			raw:     "   \t",
			wantErr: ErrEmptyIdentifier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, err := ParseIdentifier(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr != nil {
				if !id.IsZero() {
					t.Errorf("expected zero identifier on error, got %q", id)
				}
				return
			}
			if id.String() != tt.wantValue {
				t.Errorf("expected value %q, got %q", tt.wantValue, id.String())
			}
			if id.Kind() != tt.wantKind {
				t.Errorf("expected kind %v, got %v", tt.wantKind, id.Kind())
			}
		})
	}
}

func TestIdentifierListingURL(t *testing.T) {
	t.Parallel()

	t.Run("profile id uses profiles path", func(t *testing.T) {
		t.Parallel()

		id := MustParseIdentifier("123456789")
		got, err := id.ListingURL("https://steamcommunity.com", 2168680)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "https://steamcommunity.com/profiles/123456789/myworkshopfiles/?appid=2168680"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("vanity name uses id path", func(t *testing.T) {
		t.Parallel()

		id := MustParseIdentifier("offiry")
		got, err := id.ListingURL("https://steamcommunity.com/", 2168680)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "https://steamcommunity.com/id/offiry/myworkshopfiles/?appid=2168680"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("base url without scheme is rejected", func(t *testing.T) {
		t.Parallel()

		id := MustParseIdentifier("offiry")
		if _, err := id.ListingURL("steamcommunity.com", 1); err == nil {
			t.Error("expected error for base url without scheme")
		}
	})

	t.Run("zero identifier is rejected", func(t *testing.T) {
		t.Parallel()

		var id Identifier
		if _, err := id.ListingURL("https://steamcommunity.com", 1); !errors.Is(err, ErrEmptyIdentifier) {
			t.Errorf("expected ErrEmptyIdentifier, got %v", err)
		}
	})
}

func TestIdentifierDetectionMessage(t *testing.T) {
	t.Parallel()

	if got := MustParseIdentifier("42").DetectionMessage(); got != "Steam User ID detected, searching..." {
		t.Errorf("unexpected profile message %q", got)
	}
	if got := MustParseIdentifier("offiry").DetectionMessage(); got != "Steam CustomLink name detected, searching..." {
		t.Errorf("unexpected vanity message %q", got)
	}
}
