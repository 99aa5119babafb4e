// Package types defines the canonical data model shared by the scoring and
// learning components. Inputs arrive in heterogeneous shapes (LinkedIn export
// quirks, partial profiles); everything is normalized at this boundary so the
// scoring logic only ever sees one canonical form.
package types

import "time"

// Prospect is the immutable input to a scoring request. It is supplied by a
// collaborator (the ingestion layer) and never mutated by the core.
type Prospect struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Headline    string       `json:"headline,omitempty"`
	Company     string       `json:"company,omitempty"`
	Location    string       `json:"location,omitempty"`
	Industry    string       `json:"industry,omitempty"`
	Role        string       `json:"role,omitempty"`
	Experience  []Experience `json:"experience,omitempty"`
	RecentPosts []Post       `json:"recent_posts,omitempty"`
}

// Post is a single piece of content published by a prospect.
type Post struct {
	ID          string     `json:"id"`
	Content     string     `json:"content"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Experience is one job entry from a prospect's history. Start and end dates
// accept the heterogeneous representations seen in the wild (see FlexDate).
type Experience struct {
	Title       string   `json:"title"`
	Company     string   `json:"company,omitempty"`
	StartDate   FlexDate `json:"start_date,omitempty"`
	EndDate     FlexDate `json:"end_date,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Duration returns the length of the role in fractional years. Roles with no
// resolvable start date contribute zero. An open-ended role runs to now.
func (e Experience) Duration(now time.Time) float64 {
	start, ok := e.StartDate.Time()
	if !ok {
		return 0
	}
	end := now
	if t, ok := e.EndDate.Time(); ok {
		end = t
	}
	if end.Before(start) {
		return 0
	}
	return end.Sub(start).Hours() / (24 * 365.25)
}

// Text returns the searchable text of a role (title + description).
func (e Experience) Text() string {
	if e.Description == "" {
		return e.Title
	}
	return e.Title + " " + e.Description
}
