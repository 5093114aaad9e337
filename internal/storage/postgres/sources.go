package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Redoni18/scriba-aggregator/internal/domain"
)

const sourceColumns = `id, name, domain, base_url, api_type, is_active,
	last_seen_published_at, last_fetched_at, error_count, last_error,
	avg_articles_per_run, avg_time_per_run_ms, created_at, updated_at`

// SourceStore holds source configuration together with the sync watermark,
// run averages and circuit breaker state.
type SourceStore struct {
	db *sqlx.DB
}

func NewSourceStore(db *sqlx.DB) *SourceStore {
	return &SourceStore{db: db}
}

func (s *SourceStore) ListActive(ctx context.Context) ([]domain.Source, error) {
	var sources []domain.Source
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE is_active ORDER BY created_at, name`

	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &sources, query)
	return sources, err
}

func (s *SourceStore) GetByDomain(ctx context.Context, sourceDomain string) (*domain.Source, error) {
	var src domain.Source
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE domain = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &src, query, sourceDomain)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &src, nil
}

// UpdateProgress never moves the watermark backwards. A nil cursor leaves it
// untouched.
func (s *SourceStore) UpdateProgress(ctx context.Context, sourceID uuid.UUID, progress domain.SourceProgress) error {
	query := `
		UPDATE sources SET
			last_seen_published_at = GREATEST(last_seen_published_at, $2::timestamptz),
			last_fetched_at = $3,
			avg_articles_per_run = $4,
			avg_time_per_run_ms = $5,
			updated_at = NOW()
		WHERE id = $1`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		sourceID,
		progress.Cursor,
		progress.LastFetchedAt,
		progress.AvgArticlesPerRun,
		progress.AvgTimePerRunMs,
	)
	return err
}

func (s *SourceStore) RecordSuccess(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE sources SET
			error_count = 0,
			last_error = NULL,
			updated_at = NOW()
		WHERE id = $1`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, id)
	return err
}

// RecordFailure bumps the error count and deactivates the source once it
// reaches maxErrors, in a single statement.
func (s *SourceStore) RecordFailure(ctx context.Context, id uuid.UUID, message string, at time.Time, maxErrors int) (*domain.SourceHealth, error) {
	query := `
		UPDATE sources SET
			error_count = error_count + 1,
			last_error = $2,
			last_fetched_at = $3,
			is_active = CASE WHEN error_count + 1 >= $4 THEN FALSE ELSE is_active END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING error_count, is_active`

	var health domain.SourceHealth
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &health, query, id, message, at, maxErrors)
	if err != nil {
		return nil, err
	}
	return &health, nil
}
