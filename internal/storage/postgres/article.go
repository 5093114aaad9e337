package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Redoni18/scriba-aggregator/internal/domain"
)

const articleColumns = `id, source_id, external_id, canonical_url, title, summary,
	thumbnail_url, cover_image_url, body_hash, published_at, journalist_id,
	created_at, updated_at`

type ArticleStore struct {
	db *sqlx.DB
}

func NewArticleStore(db *sqlx.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

func (s *ArticleStore) FindByExternalID(ctx context.Context, sourceID uuid.UUID, externalID string) (*domain.Article, error) {
	var article domain.Article
	query := `SELECT ` + articleColumns + ` FROM articles WHERE source_id = $1 AND external_id = $2`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &article, query, sourceID, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// Create inserts the article. When a row with the same (source_id, external_id)
// already exists the row is left as is and article takes its id.
func (s *ArticleStore) Create(ctx context.Context, article *domain.Article) error {
	query := `
		INSERT INTO articles (
			id, source_id, external_id, canonical_url, title, summary,
			thumbnail_url, cover_image_url, body_hash, published_at, journalist_id,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		ON CONFLICT (source_id, external_id) DO UPDATE SET
			updated_at = articles.updated_at
		RETURNING id, created_at`

	return GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		article.ID,
		article.SourceID,
		article.ExternalID,
		article.CanonicalURL,
		article.Title,
		article.Summary,
		article.ThumbnailURL,
		article.CoverImageURL,
		article.BodyHash,
		article.PublishedAt,
		article.JournalistID,
		article.CreatedAt,
		article.UpdatedAt,
	).Scan(&article.ID, &article.CreatedAt)
}

func (s *ArticleStore) Update(ctx context.Context, article *domain.Article) error {
	query := `
		UPDATE articles SET
			canonical_url = $2,
			title = $3,
			summary = $4,
			thumbnail_url = $5,
			cover_image_url = $6,
			body_hash = $7,
			journalist_id = $8,
			updated_at = $9
		WHERE id = $1`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		article.ID,
		article.CanonicalURL,
		article.Title,
		article.Summary,
		article.ThumbnailURL,
		article.CoverImageURL,
		article.BodyHash,
		article.JournalistID,
		article.UpdatedAt,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
