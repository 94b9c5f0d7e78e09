package model

import (
	"strings"
	"time"
)

// Item is a single lost or found record.
type Item struct {
	ID          int64      `json:"id"`
	ItemName    string     `json:"item_name"`
	Category    string     `json:"category"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DateFound   *time.Time `json:"date_found"`
	HasPhoto    bool       `json:"has_photo"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ItemFields holds the caller-supplied, mutable columns of an item.
type ItemFields struct {
	ItemName    string
	Category    string
	Location    string
	Description string
	Status      string
	DateFound   *time.Time
}

// Item statuses.
const (
	ItemStatusLost    = "Lost"
	ItemStatusFound   = "Found"
	ItemStatusClaimed = "Claimed"
)

// ValidItemStatus reports whether status is one of the known item statuses.
func ValidItemStatus(status string) bool {
	switch status {
	case ItemStatusLost, ItemStatusFound, ItemStatusClaimed:
		return true
	}
	return false
}

// ParseDateFound parses a date_found value given either as RFC 3339 or as a
// plain calendar date. An empty string yields nil.
func ParseDateFound(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, &ValidationError{Field: "date_found", Message: "must be an RFC 3339 timestamp or YYYY-MM-DD date"}
}

// ValidationError is returned when caller input is missing or malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// NormalizeForCreate trims the fields, applies the default status and checks
// that the result can be inserted.
func (f *ItemFields) NormalizeForCreate() error {
	f.trim()
	if f.Status == "" {
		f.Status = ItemStatusLost
	}
	return f.validate()
}

// NormalizeForUpdate trims the fields and checks that a full field set was
// supplied. Updates overwrite every column, so status has no default here.
func (f *ItemFields) NormalizeForUpdate() error {
	f.trim()
	if f.Status == "" {
		return &ValidationError{Field: "status", Message: "required"}
	}
	return f.validate()
}

func (f *ItemFields) validate() error {
	if f.ItemName == "" {
		return &ValidationError{Field: "item_name", Message: "required"}
	}
	if !ValidItemStatus(f.Status) {
		return &ValidationError{Field: "status", Message: "must be one of Lost, Found, Claimed"}
	}
	return nil
}

func (f *ItemFields) trim() {
	f.ItemName = strings.TrimSpace(f.ItemName)
	f.Category = strings.TrimSpace(f.Category)
	f.Location = strings.TrimSpace(f.Location)
	f.Description = strings.TrimSpace(f.Description)
	f.Status = strings.TrimSpace(f.Status)
}
