package domain

import (
	"time"

	"github.com/google/uuid"
)

// IngestOutcome tags what the versioning engine did with one article.
type IngestOutcome string

const (
	OutcomeCreated         IngestOutcome = "created"
	OutcomeUpdated         IngestOutcome = "updated"
	OutcomeMetadataUpdated IngestOutcome = "metadata_updated"
	OutcomeUnchanged       IngestOutcome = "unchanged"
)

// HasNewContent reports whether the body was seen for the first time or changed.
func (o IngestOutcome) HasNewContent() bool {
	return o == OutcomeCreated || o == OutcomeUpdated
}

type IngestResult struct {
	Article *Article
	Outcome IngestOutcome
}

type StopReason string

const (
	StopWatermark     StopReason = "watermark"
	StopSkipThreshold StopReason = "skip_threshold"
	StopPageCap       StopReason = "page_cap"
	StopExhausted     StopReason = "exhausted"
)

// SyncStats holds statistics about one source run.
type SyncStats struct {
	SourceID        uuid.UUID
	Pages           int
	Fetched         int
	Processed       int
	New             int
	Updated         int
	MetadataUpdated int
	Unchanged       int
	Errors          int
	Published       int
	StopReason      StopReason
	Cursor          *time.Time
	Duration        time.Duration
}

func (s *SyncStats) Record(outcome IngestOutcome) {
	s.Processed++
	switch outcome {
	case OutcomeCreated:
		s.New++
	case OutcomeUpdated:
		s.Updated++
	case OutcomeMetadataUpdated:
		s.MetadataUpdated++
	case OutcomeUnchanged:
		s.Unchanged++
	}
}
