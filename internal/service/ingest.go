package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Redoni18/scriba-aggregator/internal/domain"
	"github.com/Redoni18/scriba-aggregator/internal/fingerprint"
)

// Ingestor stores one normalized article: journalist, taxonomy, versioned
// article row and the taxonomy links. It does not retry.
type Ingestor struct {
	articles    ArticleStore
	journalists JournalistStore
	tags        TagStore
	categories  CategoryStore
	engine      *VersionEngine
	logger      *slog.Logger
}

func NewIngestor(
	articles ArticleStore,
	versions VersionStore,
	journalists JournalistStore,
	tags TagStore,
	categories CategoryStore,
	txManager TransactionManager,
	logger *slog.Logger,
) *Ingestor {
	return &Ingestor{
		articles:    articles,
		journalists: journalists,
		tags:        tags,
		categories:  categories,
		engine:      NewVersionEngine(articles, versions, txManager),
		logger:      logger.With("component", "ingest"),
	}
}

// JournalistKey is the natural key of a journalist within a source.
func JournalistKey(sourceName, authorID string) string {
	if authorID == "" {
		authorID = "0"
	}
	return sourceName + "_" + authorID
}

func (i *Ingestor) Ingest(ctx context.Context, src *domain.Source, remote *domain.RemoteArticle) (*domain.IngestResult, error) {
	bodyHash := fingerprint.Body(remote.Body)

	existing, err := i.articles.FindByExternalID(ctx, src.ID, remote.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("find article: %w", err)
	}

	journalist, err := i.ensureJournalist(ctx, src, remote)
	if err != nil {
		return nil, err
	}

	tagNames := uniqueNames(remote.Tags)
	categoryNames := uniqueNames(remote.Categories)

	var (
		tags       []domain.Tag
		categories []domain.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	if len(tagNames) > 0 {
		g.Go(func() error {
			var err error
			if tags, err = i.tags.Ensure(gctx, src.ID, tagNames); err != nil {
				return fmt.Errorf("ensure tags: %w", err)
			}
			return nil
		})
	}
	if len(categoryNames) > 0 {
		g.Go(func() error {
			var err error
			if categories, err = i.categories.Ensure(gctx, src.ID, categoryNames); err != nil {
				return fmt.Errorf("ensure categories: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result, err := i.engine.Apply(ctx, src.ID, existing, remote, bodyHash, &journalist.ID)
	if err != nil {
		return nil, err
	}

	articleID := result.Article.ID

	g, gctx = errgroup.WithContext(ctx)
	if len(tags) > 0 {
		g.Go(func() error {
			if err := i.tags.LinkToArticle(gctx, articleID, tagIDs(tags)); err != nil {
				return fmt.Errorf("link tags: %w", err)
			}
			return nil
		})
	}
	if len(categories) > 0 {
		g.Go(func() error {
			if err := i.categories.LinkToArticle(gctx, articleID, categoryIDs(categories)); err != nil {
				return fmt.Errorf("link categories: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	i.logger.Debug("article ingested",
		"source", src.Name,
		"external_id", remote.ExternalID,
		"outcome", result.Outcome,
	)

	return result, nil
}

func (i *Ingestor) ensureJournalist(ctx context.Context, src *domain.Source, remote *domain.RemoteArticle) (*domain.Journalist, error) {
	name := strings.TrimSpace(remote.AuthorName)
	if name == "" {
		name = domain.UnknownAuthor
	}

	journalist, err := i.journalists.Ensure(ctx, src.ID, &domain.Journalist{
		ID:              uuid.New(),
		Name:            name,
		ProfileImageURL: remote.AuthorProfileImageURL,
		SourceUniqueID:  JournalistKey(src.Name, remote.AuthorID),
	})
	if err != nil {
		return nil, fmt.Errorf("ensure journalist: %w", err)
	}
	return journalist, nil
}

// uniqueNames trims names and drops blanks and repeats, keeping first-seen order.
func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func tagIDs(tags []domain.Tag) []uuid.UUID {
	ids := make([]uuid.UUID, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}

func categoryIDs(categories []domain.Category) []uuid.UUID {
	ids := make([]uuid.UUID, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	return ids
}
