package domain

import (
	"time"

	"github.com/google/uuid"
)

type Article struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	SourceID      uuid.UUID  `db:"source_id" json:"source_id"`
	ExternalID    string     `db:"external_id" json:"external_id"`
	CanonicalURL  string     `db:"canonical_url" json:"canonical_url"`
	Title         string     `db:"title" json:"title"`
	Summary       *string    `db:"summary" json:"summary,omitempty"`
	ThumbnailURL  *string    `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	CoverImageURL *string    `db:"cover_image_url" json:"cover_image_url,omitempty"`
	BodyHash      string     `db:"body_hash" json:"body_hash"`
	PublishedAt   time.Time  `db:"published_at" json:"published_at"`
	JournalistID  *uuid.UUID `db:"journalist_id" json:"journalist_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// ArticleVersion is an append-only snapshot of an article's content.
type ArticleVersion struct {
	ID        uuid.UUID `db:"id"`
	ArticleID uuid.UUID `db:"article_id"`
	Title     string    `db:"title"`
	Summary   *string   `db:"summary"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

type Journalist struct {
	ID              uuid.UUID `db:"id"`
	Name            string    `db:"name"`
	ProfileImageURL *string   `db:"profile_image_url"`
	SourceUniqueID  string    `db:"source_unique_id"`
	CreatedAt       time.Time `db:"created_at"`
}

// Tag and Category names are unique per source only.
type Tag struct {
	ID       uuid.UUID `db:"id"`
	SourceID uuid.UUID `db:"source_id"`
	Name     string    `db:"name"`
}

type Category struct {
	ID       uuid.UUID `db:"id"`
	SourceID uuid.UUID `db:"source_id"`
	Name     string    `db:"name"`
}
