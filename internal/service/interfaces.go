package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/Redoni18/scriba-aggregator/internal/domain"
	"github.com/Redoni18/scriba-aggregator/internal/source"
)

type ArticleStore interface {
	// FindByExternalID returns nil, nil when the article does not exist.
	FindByExternalID(ctx context.Context, sourceID uuid.UUID, externalID string) (*domain.Article, error)
	// Create inserts the article and sets its ID to the stored row's id.
	Create(ctx context.Context, article *domain.Article) error
	Update(ctx context.Context, article *domain.Article) error
}

type VersionStore interface {
	Create(ctx context.Context, version *domain.ArticleVersion) error
}

type JournalistStore interface {
	// Ensure upserts by SourceUniqueID and links the journalist to the source.
	Ensure(ctx context.Context, sourceID uuid.UUID, journalist *domain.Journalist) (*domain.Journalist, error)
}

type TagStore interface {
	Ensure(ctx context.Context, sourceID uuid.UUID, names []string) ([]domain.Tag, error)
	LinkToArticle(ctx context.Context, articleID uuid.UUID, tagIDs []uuid.UUID) error
}

type CategoryStore interface {
	Ensure(ctx context.Context, sourceID uuid.UUID, names []string) ([]domain.Category, error)
	LinkToArticle(ctx context.Context, articleID uuid.UUID, categoryIDs []uuid.UUID) error
}

type SourceProgressStore interface {
	UpdateProgress(ctx context.Context, sourceID uuid.UUID, progress domain.SourceProgress) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, event *domain.ArticleEvent) error
	Close() error
}

type AdapterProvider interface {
	New(src *domain.Source) (source.Adapter, error)
}

type ArticleIngester interface {
	Ingest(ctx context.Context, src *domain.Source, article *domain.RemoteArticle) (*domain.IngestResult, error)
}
