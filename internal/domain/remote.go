package domain

import "time"

// RemoteArticle is the canonical shape every source adapter normalizes to.
type RemoteArticle struct {
	ExternalID            string
	CanonicalURL          string
	Title                 string
	Summary               *string
	Body                  string
	PublishedAt           time.Time
	ThumbnailURL          *string
	CoverImageURL         *string
	AuthorName            string
	AuthorID              string
	AuthorProfileImageURL *string
	Tags                  []string
	Categories            []string
}

type Author struct {
	ID              string
	Name            string
	ProfileImageURL *string
}

const UnknownAuthor = "Unknown"
