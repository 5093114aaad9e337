package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventAction string

const (
	ActionCreate         EventAction = "create"
	ActionUpdate         EventAction = "update"
	ActionMetadataUpdate EventAction = "metadata_update"
)

// ArticleEvent announces a stored change to downstream consumers.
type ArticleEvent struct {
	Action    EventAction `json:"action"`
	SourceID  uuid.UUID   `json:"source_id"`
	Article   Article     `json:"article"`
	Timestamp time.Time   `json:"timestamp"`
}

// EventAction maps an outcome to the action published for it. Unchanged
// articles have no action.
func (o IngestOutcome) EventAction() (EventAction, bool) {
	switch o {
	case OutcomeCreated:
		return ActionCreate, true
	case OutcomeUpdated:
		return ActionUpdate, true
	case OutcomeMetadataUpdated:
		return ActionMetadataUpdate, true
	}
	return "", false
}
