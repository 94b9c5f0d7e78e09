package model

import (
	"errors"
	"testing"
)

func TestNormalizeForCreate(t *testing.T) {
	tests := []struct {
		name       string
		fields     ItemFields
		wantStatus string
		wantField  string
	}{
		{"defaults status", ItemFields{ItemName: "Blue Backpack"}, ItemStatusLost, ""},
		{"keeps status", ItemFields{ItemName: "Keys", Status: ItemStatusFound}, ItemStatusFound, ""},
		{"trims name", ItemFields{ItemName: "  Umbrella "}, ItemStatusLost, ""},
		{"missing name", ItemFields{Category: "Bags"}, "", "item_name"},
		{"blank name", ItemFields{ItemName: "   "}, "", "item_name"},
		{"unknown status", ItemFields{ItemName: "Wallet", Status: "Stolen"}, "", "status"},
		{"status is case sensitive", ItemFields{ItemName: "Wallet", Status: "lost"}, "", "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.fields
			err := f.NormalizeForCreate()
			if tt.wantField != "" {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if verr.Field != tt.wantField {
					t.Errorf("expected field %q, got %q", tt.wantField, verr.Field)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, f.Status)
			}
		})
	}
}

func TestNormalizeForUpdateRequiresStatus(t *testing.T) {
	f := ItemFields{ItemName: "Keys"}
	var verr *ValidationError
	if err := f.NormalizeForUpdate(); !errors.As(err, &verr) || verr.Field != "status" {
		t.Fatalf("expected status validation error, got %v", err)
	}

	f = ItemFields{ItemName: "Keys", Status: ItemStatusClaimed}
	if err := f.NormalizeForUpdate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseDateFound(t *testing.T) {
	if d, err := ParseDateFound(""); d != nil || err != nil {
		t.Errorf("expected nil for empty input, got %v, %v", d, err)
	}

	d, err := ParseDateFound("2024-03-09")
	if err != nil || d == nil || d.Year() != 2024 || d.Month() != 3 || d.Day() != 9 {
		t.Errorf("expected 2024-03-09, got %v (%v)", d, err)
	}

	d, err = ParseDateFound("2024-03-09T14:30:00Z")
	if err != nil || d == nil || d.Hour() != 14 {
		t.Errorf("expected RFC 3339 timestamp, got %v (%v)", d, err)
	}

	var verr *ValidationError
	if _, err := ParseDateFound("last tuesday"); !errors.As(err, &verr) || verr.Field != "date_found" {
		t.Errorf("expected date_found validation error, got %v", err)
	}
}
