package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Redoni18/scriba-aggregator/internal/domain"
)

type CategoryStore struct {
	db *sqlx.DB
}

func NewCategoryStore(db *sqlx.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) Ensure(ctx context.Context, sourceID uuid.UUID, names []string) ([]domain.Category, error) {
	if len(names) == 0 {
		return nil, nil
	}

	query := `
		INSERT INTO categories (source_id, name)
		SELECT $1, unnest($2::text[])
		ON CONFLICT (source_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, source_id, name`

	var categories []domain.Category
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &categories, query, sourceID, pq.Array(names))
	return categories, err
}

func (s *CategoryStore) LinkToArticle(ctx context.Context, articleID uuid.UUID, categoryIDs []uuid.UUID) error {
	if len(categoryIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO article_categories (article_id, category_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, articleID, pq.Array(uuidStrings(categoryIDs)))
	return err
}

func (s *CategoryStore) GetByArticleID(ctx context.Context, articleID uuid.UUID) ([]domain.Category, error) {
	query := `
		SELECT c.id, c.source_id, c.name
		FROM categories c
		INNER JOIN article_categories ac ON ac.category_id = c.id
		WHERE ac.article_id = $1
		ORDER BY c.name`

	var categories []domain.Category
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &categories, query, articleID)
	return categories, err
}
