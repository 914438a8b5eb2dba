package entity

import "time"

// Feed is a subscribed RSS/Atom source.
type Feed struct {
	ID            int64
	Name          string
	URL           string
	Category      string
	Active        bool
	LastFetchedAt *time.Time
	CreatedAt     time.Time
}

// Validate checks the fields required to register a feed.
func (f *Feed) Validate() error {
	if f.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	return ValidateURL(f.URL)
}
