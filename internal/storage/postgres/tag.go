package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Redoni18/scriba-aggregator/internal/domain"
)

type TagStore struct {
	db *sqlx.DB
}

func NewTagStore(db *sqlx.DB) *TagStore {
	return &TagStore{db: db}
}

// Ensure upserts the names for the source in one statement and returns the
// stored rows.
func (s *TagStore) Ensure(ctx context.Context, sourceID uuid.UUID, names []string) ([]domain.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}

	query := `
		INSERT INTO tags (source_id, name)
		SELECT $1, unnest($2::text[])
		ON CONFLICT (source_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, source_id, name`

	var tags []domain.Tag
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &tags, query, sourceID, pq.Array(names))
	return tags, err
}

// LinkToArticle adds links; links that already exist are kept.
func (s *TagStore) LinkToArticle(ctx context.Context, articleID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO article_tags (article_id, tag_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, articleID, pq.Array(uuidStrings(tagIDs)))
	return err
}

func (s *TagStore) GetByArticleID(ctx context.Context, articleID uuid.UUID) ([]domain.Tag, error) {
	query := `
		SELECT t.id, t.source_id, t.name
		FROM tags t
		INNER JOIN article_tags at ON at.tag_id = t.id
		WHERE at.article_id = $1
		ORDER BY t.name`

	var tags []domain.Tag
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &tags, query, articleID)
	return tags, err
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
