package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Redoni18/scriba-aggregator/internal/domain"
)

// memStore is an in-memory stand-in for the Postgres repositories, keyed the
// same way as the unique constraints.
type memStore struct {
	mu             sync.Mutex
	articles       map[string]*domain.Article
	versions       []domain.ArticleVersion
	journalists    map[string]*domain.Journalist
	journalistSrcs map[[2]uuid.UUID]struct{}
	tags           map[string]domain.Tag
	categories     map[string]domain.Category
	articleTags    map[[2]uuid.UUID]struct{}
	articleCats    map[[2]uuid.UUID]struct{}
}

func newMemStore() *memStore {
	return &memStore{
		articles:       map[string]*domain.Article{},
		journalists:    map[string]*domain.Journalist{},
		journalistSrcs: map[[2]uuid.UUID]struct{}{},
		tags:           map[string]domain.Tag{},
		categories:     map[string]domain.Category{},
		articleTags:    map[[2]uuid.UUID]struct{}{},
		articleCats:    map[[2]uuid.UUID]struct{}{},
	}
}

func articleKey(sourceID uuid.UUID, externalID string) string {
	return sourceID.String() + "/" + externalID
}

type memArticles struct{ *memStore }

func (m memArticles) FindByExternalID(_ context.Context, sourceID uuid.UUID, externalID string) (*domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[articleKey(sourceID, externalID)]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m memArticles) Create(_ context.Context, article *domain.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := articleKey(article.SourceID, article.ExternalID)
	if existing, ok := m.articles[key]; ok {
		article.ID = existing.ID
	}
	cp := *article
	m.articles[key] = &cp
	return nil
}

func (m memArticles) Update(_ context.Context, article *domain.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *article
	m.articles[articleKey(article.SourceID, article.ExternalID)] = &cp
	return nil
}

type memVersions struct{ *memStore }

func (m memVersions) Create(_ context.Context, v *domain.ArticleVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions = append(m.versions, *v)
	return nil
}

type memJournalists struct{ *memStore }

func (m memJournalists) Ensure(_ context.Context, sourceID uuid.UUID, j *domain.Journalist) (*domain.Journalist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.journalists[j.SourceUniqueID]
	switch {
	case !ok:
		cp := *j
		stored = &cp
		m.journalists[j.SourceUniqueID] = stored
	case stored.Name == domain.UnknownAuthor && j.Name != domain.UnknownAuthor:
		stored.Name = j.Name
		stored.ProfileImageURL = j.ProfileImageURL
	}
	m.journalistSrcs[[2]uuid.UUID{stored.ID, sourceID}] = struct{}{}
	cp := *stored
	return &cp, nil
}

type memTags struct{ *memStore }

func (m memTags) Ensure(_ context.Context, sourceID uuid.UUID, names []string) ([]domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Tag, 0, len(names))
	for _, n := range names {
		key := sourceID.String() + "/" + n
		t, ok := m.tags[key]
		if !ok {
			t = domain.Tag{ID: uuid.New(), SourceID: sourceID, Name: n}
			m.tags[key] = t
		}
		out = append(out, t)
	}
	return out, nil
}

func (m memTags) LinkToArticle(_ context.Context, articleID uuid.UUID, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		m.articleTags[[2]uuid.UUID{articleID, id}] = struct{}{}
	}
	return nil
}

type memCategories struct{ *memStore }

func (m memCategories) Ensure(_ context.Context, sourceID uuid.UUID, names []string) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Category, 0, len(names))
	for _, n := range names {
		key := sourceID.String() + "/" + n
		c, ok := m.categories[key]
		if !ok {
			c = domain.Category{ID: uuid.New(), SourceID: sourceID, Name: n}
			m.categories[key] = c
		}
		out = append(out, c)
	}
	return out, nil
}

func (m memCategories) LinkToArticle(_ context.Context, articleID uuid.UUID, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		m.articleCats[[2]uuid.UUID{articleID, id}] = struct{}{}
	}
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func ptr[T any](v T) *T {
	return &v
}
