package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/Redoni18/scriba-aggregator/internal/domain"
	"github.com/Redoni18/scriba-aggregator/internal/service/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type IngestorTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	articles    *mocks.MockArticleStore
	versions    *mocks.MockVersionStore
	journalists *mocks.MockJournalistStore
	tags        *mocks.MockTagStore
	categories  *mocks.MockCategoryStore
	txManager   *mocks.MockTransactionManager

	ingestor *Ingestor
	src      *domain.Source
}

func (s *IngestorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.articles = mocks.NewMockArticleStore(s.ctrl)
	s.versions = mocks.NewMockVersionStore(s.ctrl)
	s.journalists = mocks.NewMockJournalistStore(s.ctrl)
	s.tags = mocks.NewMockTagStore(s.ctrl)
	s.categories = mocks.NewMockCategoryStore(s.ctrl)
	s.txManager = mocks.NewMockTransactionManager(s.ctrl)

	s.txManager.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	).AnyTimes()

	s.ingestor = NewIngestor(s.articles, s.versions, s.journalists, s.tags, s.categories, s.txManager, testLogger())
	s.src = &domain.Source{ID: uuid.New(), Name: "Example", Platform: domain.PlatformWordPress}
}

func (s *IngestorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestIngestorTestSuite(t *testing.T) {
	suite.Run(t, new(IngestorTestSuite))
}

func (s *IngestorTestSuite) remote() *domain.RemoteArticle {
	return &domain.RemoteArticle{
		ExternalID:            "7",
		CanonicalURL:          "https://example.com/7",
		Title:                 "Seven",
		Body:                  "<p>seven</p>",
		PublishedAt:           time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
		AuthorName:            "Jane",
		AuthorID:              "12",
		AuthorProfileImageURL: ptr("https://a/jane.png"),
		Tags:                  []string{"Politics", " Politics", "", "Economy"},
		Categories:            []string{"News"},
	}
}

func (s *IngestorTestSuite) TestIngest_NewArticle() {
	ctx := context.Background()
	journalistID := uuid.New()
	tagA, tagB, cat := uuid.New(), uuid.New(), uuid.New()
	var articleID uuid.UUID

	s.articles.EXPECT().FindByExternalID(ctx, s.src.ID, "7").Return(nil, nil)
	s.journalists.EXPECT().Ensure(ctx, s.src.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uuid.UUID, j *domain.Journalist) (*domain.Journalist, error) {
			s.Equal("Example_12", j.SourceUniqueID)
			s.Equal("Jane", j.Name)
			s.Equal("https://a/jane.png", *j.ProfileImageURL)
			return &domain.Journalist{ID: journalistID, Name: j.Name, SourceUniqueID: j.SourceUniqueID}, nil
		},
	)
	s.tags.EXPECT().Ensure(gomock.Any(), s.src.ID, []string{"Politics", "Economy"}).Return([]domain.Tag{
		{ID: tagA, SourceID: s.src.ID, Name: "Politics"},
		{ID: tagB, SourceID: s.src.ID, Name: "Economy"},
	}, nil)
	s.categories.EXPECT().Ensure(gomock.Any(), s.src.ID, []string{"News"}).Return([]domain.Category{
		{ID: cat, SourceID: s.src.ID, Name: "News"},
	}, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, a *domain.Article) error {
			s.Equal(journalistID, *a.JournalistID)
			articleID = a.ID
			return nil
		},
	)
	s.versions.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	s.tags.EXPECT().LinkToArticle(gomock.Any(), gomock.Any(), []uuid.UUID{tagA, tagB}).DoAndReturn(
		func(_ context.Context, id uuid.UUID, _ []uuid.UUID) error {
			s.Equal(articleID, id)
			return nil
		},
	)
	s.categories.EXPECT().LinkToArticle(gomock.Any(), gomock.Any(), []uuid.UUID{cat}).Return(nil)

	result, err := s.ingestor.Ingest(ctx, s.src, s.remote())

	s.Require().NoError(err)
	s.Equal(domain.OutcomeCreated, result.Outcome)
}

func (s *IngestorTestSuite) TestIngest_NoTaxonomySkipsTaxonomyStores() {
	ctx := context.Background()
	remote := s.remote()
	remote.Tags = nil
	remote.Categories = []string{"  "}
	remote.AuthorID = ""
	remote.AuthorName = ""

	s.articles.EXPECT().FindByExternalID(ctx, s.src.ID, "7").Return(nil, nil)
	s.journalists.EXPECT().Ensure(ctx, s.src.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uuid.UUID, j *domain.Journalist) (*domain.Journalist, error) {
			s.Equal("Example_0", j.SourceUniqueID)
			s.Equal(domain.UnknownAuthor, j.Name)
			return j, nil
		},
	)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	s.versions.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	result, err := s.ingestor.Ingest(ctx, s.src, remote)

	s.Require().NoError(err)
	s.Equal(domain.OutcomeCreated, result.Outcome)
}

func (s *IngestorTestSuite) TestIngest_LookupFailurePropagates() {
	boom := errors.New("db down")
	s.articles.EXPECT().FindByExternalID(gomock.Any(), s.src.ID, "7").Return(nil, boom)

	result, err := s.ingestor.Ingest(context.Background(), s.src, s.remote())

	s.Nil(result)
	s.ErrorIs(err, boom)
}

func (s *IngestorTestSuite) TestIngest_TagFailureStopsBeforeArticleWrite() {
	boom := errors.New("tag upsert failed")

	s.articles.EXPECT().FindByExternalID(gomock.Any(), s.src.ID, "7").Return(nil, nil)
	s.journalists.EXPECT().Ensure(gomock.Any(), s.src.ID, gomock.Any()).Return(&domain.Journalist{ID: uuid.New()}, nil)
	s.tags.EXPECT().Ensure(gomock.Any(), s.src.ID, gomock.Any()).Return(nil, boom)
	s.categories.EXPECT().Ensure(gomock.Any(), s.src.ID, gomock.Any()).Return([]domain.Category{}, nil).AnyTimes()

	result, err := s.ingestor.Ingest(context.Background(), s.src, s.remote())

	s.Nil(result)
	s.ErrorIs(err, boom)
	s.ErrorContains(err, "ensure tags")
}

func (s *IngestorTestSuite) TestIngest_LinkFailurePropagates() {
	boom := errors.New("link failed")
	tagID := uuid.New()

	s.articles.EXPECT().FindByExternalID(gomock.Any(), s.src.ID, "7").Return(nil, nil)
	s.journalists.EXPECT().Ensure(gomock.Any(), s.src.ID, gomock.Any()).Return(&domain.Journalist{ID: uuid.New()}, nil)
	s.tags.EXPECT().Ensure(gomock.Any(), s.src.ID, gomock.Any()).Return([]domain.Tag{{ID: tagID}}, nil)
	s.categories.EXPECT().Ensure(gomock.Any(), s.src.ID, gomock.Any()).Return(nil, nil)
	s.articles.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	s.versions.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	s.tags.EXPECT().LinkToArticle(gomock.Any(), gomock.Any(), []uuid.UUID{tagID}).Return(boom)

	_, err := s.ingestor.Ingest(context.Background(), s.src, s.remote())

	s.ErrorIs(err, boom)
}

func newMemIngestor() (*Ingestor, *memStore) {
	m := newMemStore()
	return NewIngestor(memArticles{m}, memVersions{m}, memJournalists{m}, memTags{m}, memCategories{m}, passthroughTx{}, testLogger()), m
}

func memRemote() *domain.RemoteArticle {
	return &domain.RemoteArticle{
		ExternalID:  "100",
		Title:       "Original",
		Body:        "body v1",
		PublishedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		AuthorName:  "Jane",
		AuthorID:    "3",
		Tags:        []string{"a", "b"},
		Categories:  []string{"c"},
	}
}

func TestIngest_IdenticalArticleTwiceIsIdempotent(t *testing.T) {
	ingestor, m := newMemIngestor()
	src := &domain.Source{ID: uuid.New(), Name: "Example"}
	ctx := context.Background()

	first, err := ingestor.Ingest(ctx, src, memRemote())
	require.NoError(t, err)
	second, err := ingestor.Ingest(ctx, src, memRemote())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeCreated, first.Outcome)
	assert.Equal(t, domain.OutcomeUnchanged, second.Outcome)
	assert.Equal(t, first.Article.ID, second.Article.ID)
	assert.Len(t, m.articles, 1)
	assert.Len(t, m.versions, 1)
	assert.Len(t, m.journalists, 1)
	assert.Len(t, m.journalistSrcs, 1)
	assert.Len(t, m.tags, 2)
	assert.Len(t, m.articleTags, 2)
	assert.Len(t, m.articleCats, 1)
}

func TestIngest_BodyChangeAddsExactlyOneVersion(t *testing.T) {
	ingestor, m := newMemIngestor()
	src := &domain.Source{ID: uuid.New(), Name: "Example"}
	ctx := context.Background()

	_, err := ingestor.Ingest(ctx, src, memRemote())
	require.NoError(t, err)

	changed := memRemote()
	changed.Body = "body v2"
	result, err := ingestor.Ingest(ctx, src, changed)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeUpdated, result.Outcome)
	assert.Len(t, m.versions, 2)
	assert.Equal(t, "body v2", m.versions[1].Body)

	stored, _ := memArticles{m}.FindByExternalID(ctx, src.ID, "100")
	assert.Equal(t, result.Article.BodyHash, stored.BodyHash)
}

func TestIngest_TitleChangeUpdatesWithoutVersion(t *testing.T) {
	ingestor, m := newMemIngestor()
	src := &domain.Source{ID: uuid.New(), Name: "Example"}
	ctx := context.Background()

	_, err := ingestor.Ingest(ctx, src, memRemote())
	require.NoError(t, err)

	retitled := memRemote()
	retitled.Title = "Corrected"
	result, err := ingestor.Ingest(ctx, src, retitled)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeMetadataUpdated, result.Outcome)
	assert.Len(t, m.versions, 1)

	stored, _ := memArticles{m}.FindByExternalID(ctx, src.ID, "100")
	assert.Equal(t, "Corrected", stored.Title)
}

func TestIngest_SameExternalIDAcrossSourcesIsDistinct(t *testing.T) {
	ingestor, m := newMemIngestor()
	ctx := context.Background()

	_, err := ingestor.Ingest(ctx, &domain.Source{ID: uuid.New(), Name: "A"}, memRemote())
	require.NoError(t, err)
	_, err = ingestor.Ingest(ctx, &domain.Source{ID: uuid.New(), Name: "B"}, memRemote())
	require.NoError(t, err)

	assert.Len(t, m.articles, 2)
	assert.Len(t, m.journalists, 2)
	assert.Len(t, m.tags, 4)
}

func TestUniqueNames(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, uniqueNames([]string{" a", "b", "a ", "", "  "}))
	assert.Empty(t, uniqueNames(nil))
}

func TestJournalistKey(t *testing.T) {
	assert.Equal(t, "Example_12", JournalistKey("Example", "12"))
	assert.Equal(t, "Example_0", JournalistKey("Example", ""))
}
