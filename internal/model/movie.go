package model

import "time"

// Movie mirrors the movies table. PosterURL is stored as plain text; the API
// does not handle uploads.
type Movie struct {
	ID          uint64
	Title       string
	Genre       string
	DurationMin uint32
	Rating      string // age rating label, e.g. "PG-13"
	PosterURL   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
