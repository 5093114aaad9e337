package scheduler

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Redoni18/scriba-aggregator/internal/domain"
)

type SourceStore interface {
	ListActive(ctx context.Context) ([]domain.Source, error)
	// GetByDomain returns nil, nil when no source has the domain.
	GetByDomain(ctx context.Context, sourceDomain string) (*domain.Source, error)
	RecordSuccess(ctx context.Context, id uuid.UUID) error
	// RecordFailure increments the error count, stores the message and
	// deactivates the source once the count reaches maxErrors.
	RecordFailure(ctx context.Context, id uuid.UUID, message string, at time.Time, maxErrors int) (*domain.SourceHealth, error)
}

// Runner performs one sync run for one source.
type Runner interface {
	Run(ctx context.Context, src *domain.Source) (*domain.SyncStats, error)
}
