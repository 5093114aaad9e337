package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Redoni18/scriba-aggregator/internal/domain"
)

type JournalistStore struct {
	db *sqlx.DB
}

func NewJournalistStore(db *sqlx.DB) *JournalistStore {
	return &JournalistStore{db: db}
}

// Ensure returns the journalist stored under journalist.SourceUniqueID,
// inserting it first when missing. An existing row keeps its name and image
// unless it was stored as the unknown author and a real name is now known.
func (s *JournalistStore) Ensure(ctx context.Context, sourceID uuid.UUID, journalist *domain.Journalist) (*domain.Journalist, error) {
	exec := GetExecutor(ctx, s.db)

	query := `
		INSERT INTO journalists (id, name, profile_image_url, source_unique_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source_unique_id) DO UPDATE SET
			name = CASE WHEN journalists.name = $5 AND EXCLUDED.name <> $5
				THEN EXCLUDED.name ELSE journalists.name END,
			profile_image_url = CASE WHEN journalists.name = $5 AND EXCLUDED.name <> $5
				THEN EXCLUDED.profile_image_url ELSE journalists.profile_image_url END
		RETURNING id, name, profile_image_url, source_unique_id, created_at`

	id := journalist.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	var stored domain.Journalist
	err := sqlx.GetContext(ctx, exec, &stored, query,
		id,
		journalist.Name,
		journalist.ProfileImageURL,
		journalist.SourceUniqueID,
		domain.UnknownAuthor,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert journalist: %w", err)
	}

	_, err = exec.ExecContext(ctx, `
		INSERT INTO journalist_sources (journalist_id, source_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		stored.ID, sourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("link journalist to source: %w", err)
	}

	return &stored, nil
}
