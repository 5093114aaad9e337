// Package source defines the contract remote content platforms are adapted to
// and the registry that maps a source's platform tag to its adapter.
package source

//go:generate mockgen -source=source.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"

	"github.com/Redoni18/scriba-aggregator/internal/domain"
	"github.com/Redoni18/scriba-aggregator/internal/fetch"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrNotSupported        = errors.New("operation not supported by platform")
	ErrArticleNotFound     = errors.New("article not found")
)

// Fetcher is the transport adapters issue requests through.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts *fetch.Options) (*fetch.Response, error)
}

// Adapter normalizes one remote platform into domain.RemoteArticle values.
// Pages are 1-based and ordered by descending publish time.
type Adapter interface {
	FetchPage(ctx context.Context, page int) ([]domain.RemoteArticle, error)
	FetchTagsByID(ctx context.Context, ids []int64) ([]string, error)
	FetchCategoriesByID(ctx context.Context, ids []int64) ([]string, error)
	FetchAuthorByID(ctx context.Context, id int64) (*domain.Author, error)
	HasMore(page, lastBatchSize int) bool
}

// URLFetcher is implemented by adapters that can fetch a single article out of band.
type URLFetcher interface {
	FetchByURL(ctx context.Context, articleURL string) (*domain.RemoteArticle, error)
}
