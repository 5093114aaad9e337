package domain

import (
	"time"

	"github.com/google/uuid"
)

// Platform identifies the remote content-management API a source speaks.
type Platform string

const (
	PlatformWordPress Platform = "wordpress"
	PlatformECB       Platform = "ecb"
)

type Source struct {
	ID                  uuid.UUID  `db:"id"`
	Name                string     `db:"name"`
	Domain              string     `db:"domain"`
	BaseURL             string     `db:"base_url"`
	Platform            Platform   `db:"api_type"`
	IsActive            bool       `db:"is_active"`
	LastSeenPublishedAt *time.Time `db:"last_seen_published_at"`
	LastFetchedAt       *time.Time `db:"last_fetched_at"`
	ErrorCount          int        `db:"error_count"`
	LastError           *string    `db:"last_error"`
	AvgArticlesPerRun   float64    `db:"avg_articles_per_run"`
	AvgTimePerRunMs     float64    `db:"avg_time_per_run_ms"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

// SourceProgress is written by the sync runner after a run completes normally.
// Cursor is nil when the run observed nothing newer than the stored watermark.
type SourceProgress struct {
	Cursor            *time.Time
	LastFetchedAt     time.Time
	AvgArticlesPerRun float64
	AvgTimePerRunMs   float64
}

// SourceHealth is the circuit breaker state after a recorded failure.
type SourceHealth struct {
	ErrorCount int  `db:"error_count"`
	IsActive   bool `db:"is_active"`
}
