package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Redoni18/scriba-aggregator/internal/domain"
)

type VersionStore struct {
	db *sqlx.DB
}

func NewVersionStore(db *sqlx.DB) *VersionStore {
	return &VersionStore{db: db}
}

func (s *VersionStore) Create(ctx context.Context, version *domain.ArticleVersion) error {
	query := `
		INSERT INTO article_versions (id, article_id, title, summary, body, created_at)
		VALUES (:id, :article_id, :title, :summary, :body, :created_at)`

	_, err := sqlx.NamedExecContext(ctx, GetExecutor(ctx, s.db), query, version)
	return err
}

func (s *VersionStore) ListByArticle(ctx context.Context, articleID uuid.UUID) ([]domain.ArticleVersion, error) {
	var versions []domain.ArticleVersion
	query := `
		SELECT id, article_id, title, summary, body, created_at
		FROM article_versions
		WHERE article_id = $1
		ORDER BY created_at, id`

	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &versions, query, articleID)
	return versions, err
}
