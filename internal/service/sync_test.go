package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/Redoni18/scriba-aggregator/internal/config"
	"github.com/Redoni18/scriba-aggregator/internal/domain"
	"github.com/Redoni18/scriba-aggregator/internal/service/mocks"
	"github.com/Redoni18/scriba-aggregator/internal/source"
	sourcemocks "github.com/Redoni18/scriba-aggregator/internal/source/mocks"
)

type SyncRunnerTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	adapters  *mocks.MockAdapterProvider
	adapter   *sourcemocks.MockAdapter
	ingester  *mocks.MockArticleIngester
	progress  *mocks.MockSourceProgressStore
	publisher *mocks.MockPublisher

	cfg    config.SyncConfig
	src    *domain.Source
	cursor time.Time
	start  time.Time
}

func (s *SyncRunnerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.adapters = mocks.NewMockAdapterProvider(s.ctrl)
	s.adapter = sourcemocks.NewMockAdapter(s.ctrl)
	s.ingester = mocks.NewMockArticleIngester(s.ctrl)
	s.progress = mocks.NewMockSourceProgressStore(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)

	s.cfg = config.SyncConfig{
		MaxPagesPerRun:        5,
		MaxConsecutiveSkipped: 10,
		SmoothingFactor:       0.2,
	}

	s.cursor = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	s.start = time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC)
	s.src = &domain.Source{
		ID:                  uuid.New(),
		Name:                "Example",
		Platform:            domain.PlatformWordPress,
		IsActive:            true,
		LastSeenPublishedAt: &s.cursor,
	}

	s.adapters.EXPECT().New(s.src).Return(s.adapter, nil).AnyTimes()
}

func (s *SyncRunnerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestSyncRunnerTestSuite(t *testing.T) {
	suite.Run(t, new(SyncRunnerTestSuite))
}

// newRunner builds a runner whose clock reads start on the first call and
// start+2s afterwards.
func (s *SyncRunnerTestSuite) newRunner(publisher Publisher) *SyncRunner {
	r := NewSyncRunner(s.adapters, s.ingester, s.progress, publisher, nil, testLogger(), s.cfg)
	calls := 0
	r.now = func() time.Time {
		calls++
		if calls == 1 {
			return s.start
		}
		return s.start.Add(2 * time.Second)
	}
	return r
}

func article(id string, publishedAt time.Time) domain.RemoteArticle {
	return domain.RemoteArticle{ExternalID: id, Title: "t" + id, Body: "b" + id, PublishedAt: publishedAt}
}

func (s *SyncRunnerTestSuite) ingestReturns(outcomes ...domain.IngestOutcome) {
	for _, o := range outcomes {
		s.ingester.EXPECT().Ingest(gomock.Any(), s.src, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ *domain.Source, a *domain.RemoteArticle) (*domain.IngestResult, error) {
				return &domain.IngestResult{
					Article: &domain.Article{ID: uuid.New(), ExternalID: a.ExternalID},
					Outcome: o,
				}, nil
			},
		)
	}
}

func (s *SyncRunnerTestSuite) captureProgress() *domain.SourceProgress {
	got := &domain.SourceProgress{}
	s.progress.EXPECT().UpdateProgress(gomock.Any(), s.src.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uuid.UUID, p domain.SourceProgress) error {
			*got = p
			return nil
		},
	)
	return got
}

func (s *SyncRunnerTestSuite) TestRun_StopsAtWatermarkAndCommitsNewestTime() {
	ctx := context.Background()
	t := s.cursor
	page := []domain.RemoteArticle{
		article("1", t.Add(5*time.Hour)),
		article("2", t.Add(2*time.Hour)),
		article("3", t.Add(-1*time.Hour)),
	}

	s.adapter.EXPECT().FetchPage(gomock.Any(), 1).Return(page, nil)
	var ingested []string
	s.ingester.EXPECT().Ingest(gomock.Any(), s.src, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *domain.Source, a *domain.RemoteArticle) (*domain.IngestResult, error) {
			ingested = append(ingested, a.ExternalID)
			return &domain.IngestResult{Article: &domain.Article{}, Outcome: domain.OutcomeCreated}, nil
		},
	).Times(2)
	progress := s.captureProgress()

	stats, err := s.newRunner(nil).Run(ctx, s.src)

	s.Require().NoError(err)
	s.Equal([]string{"1", "2"}, ingested)
	s.Equal(domain.StopWatermark, stats.StopReason)
	s.Equal(2, stats.New)
	s.Require().NotNil(progress.Cursor)
	s.Equal(t.Add(5*time.Hour), *progress.Cursor)
	s.Equal(s.start.Add(2*time.Second), progress.LastFetchedAt)
}

func (s *SyncRunnerTestSuite) TestRun_ArticleAtCursorIsAlreadySeen() {
	s.adapter.EXPECT().FetchPage(gomock.Any(), 1).Return([]domain.RemoteArticle{article("1", s.cursor)}, nil)
	progress := s.captureProgress()

	stats, err := s.newRunner(nil).Run(context.Background(), s.src)

	s.Require().NoError(err)
	s.Equal(domain.StopWatermark, stats.StopReason)
	s.Zero(stats.Processed)
	s.Nil(progress.Cursor)
	s.Nil(stats.Cursor)
}

func (s *SyncRunnerTestSuite) TestRun_SkipThreshold() {
	s.cfg.MaxConsecutiveSkipped = 3
	s.src.LastSeenPublishedAt = nil
	base := s.start

	page := make([]domain.RemoteArticle, 8)
	for i := range page {
		page[i] = article(string(rune('a'+i)), base.Add(-time.Duration(i)*time.Minute))
	}

	s.adapter.EXPECT().FetchPage(gomock.Any(), 1).Return(page, nil)
	s.ingestReturns(
		domain.OutcomeUnchanged,
		domain.OutcomeMetadataUpdated,
		domain.OutcomeCreated,
		domain.OutcomeUnchanged,
		domain.OutcomeUnchanged,
		domain.OutcomeUnchanged,
	)
	progress := s.captureProgress()

	stats, err := s.newRunner(nil).Run(context.Background(), s.src)

	s.Require().NoError(err)
	s.Equal(domain.StopSkipThreshold, stats.StopReason)
	s.Equal(6, stats.Processed)
	s.Equal(4, stats.Unchanged)
	s.Equal(1, stats.MetadataUpdated)
	s.Equal(1, stats.New)
	s.Require().NotNil(progress.Cursor)
	s.Equal(base, *progress.Cursor)
}

func (s *SyncRunnerTestSuite) TestRun_PageCap() {
	s.cfg.MaxPagesPerRun = 2
	s.src.LastSeenPublishedAt = nil
	now := s.start

	s.adapter.EXPECT().FetchPage(gomock.Any(), 1).Return([]domain.RemoteArticle{
		article("1", now), article("2", now.Add(-time.Minute)),
	}, nil)
	s.adapter.EXPECT().HasMore(1, 2).Return(true)
	s.adapter.EXPECT().FetchPage(gomock.Any(), 2).Return([]domain.RemoteArticle{
		article("3", now.Add(-2*time.Minute)), article("4", now.Add(-3*time.Minute)),
	}, nil)
	s.ingestReturns(domain.OutcomeCreated, domain.OutcomeCreated, domain.OutcomeUpdated, domain.OutcomeCreated)
	s.captureProgress()

	stats, err := s.newRunner(nil).Run(context.Background(), s.src)

	s.Require().NoError(err)
	s.Equal(domain.StopPageCap, stats.StopReason)
	s.Equal(2, stats.Pages)
	s.Equal(4, stats.Fetched)
	s.Equal(3, stats.New)
	s.Equal(1, stats.Updated)
}

func (s *SyncRunnerTestSuite) TestRun_EmptyPageExhausts() {
	s.src.LastSeenPublishedAt = nil

	s.adapter.EXPECT().FetchPage(gomock.Any(), 1).Return([]domain.RemoteArticle{article("1", s.start)}, nil)
	s.adapter.EXPECT().HasMore(1, 1).Return(true)
	s.adapter.EXPECT().FetchPage(gomock.Any(), 2).Return(nil, nil)
	s.ingestReturns(domain.OutcomeCreated)
	s.captureProgress()

	stats, err := s.newRunner(nil).Run(context.Background(), s.src)

	s.Require().NoError(err)
	s.Equal(domain.StopExhausted, stats.StopReason)
	s.Equal(2, stats.Pages)
}

func (s *SyncRunnerTestSuite) TestRun_HasMoreFalseExhausts() {
	s.src.LastSeenPublishedAt = nil

	s.adapter.EXPECT().FetchPage(gomock.Any(), 1).Return([]domain.RemoteArticle{article("1", s.start)}, nil)
	s.adapter.EXPECT().HasMore(1, 1).Return(false)
	s.ingestReturns(domain.OutcomeCreated)
	s.captureProgress()

	stats, err := s.newRunner(nil).Run(context.Background(), s.src)

	s.Require().NoError(err)
	s.Equal(domain.StopExhausted, stats.StopReason)
	s.Equal(1, stats.Pages)
}

func (s *SyncRunnerTestSuite) TestRun_ArticleFailureDoesNotAbortRun() {
	s.src.LastSeenPublishedAt = nil

	s.adapter.EXPECT().FetchPage(gomock.Any(), 1).Return([]domain.RemoteArticle{
		article("1", s.start), article("2", s.start.Add(-time.Minute)),
	}, nil)
	s.adapter.EXPECT().HasMore(1, 2).Return(false)
	gomock.InOrder(
		s.ingester.EXPECT().Ingest(gomock.Any(), s.src, gomock.Any()).Return(nil, errors.New("constraint violation")),
		s.ingester.EXPECT().Ingest(gomock.Any(), s.src, gomock.Any()).Return(
			&domain.IngestResult{Article: &domain.Article{}, Outcome: domain.OutcomeCreated}, nil),
	)
	s.captureProgress()

	stats, err := s.newRunner(nil).Run(context.Background(), s.src)

	s.Require().NoError(err)
	s.Equal(1, stats.Errors)
	s.Equal(1, stats.New)
	s.Equal(1, stats.Processed)
}

func (s *SyncRunnerTestSuite) TestRun_CursorPassesFailedArticle() {
	failedAt := s.cursor.Add(3 * time.Hour)
	s.adapter.EXPECT().FetchPage(gomock.Any(), 1).Return([]domain.RemoteArticle{
		article("1", failedAt), article("2", s.cursor.Add(time.Hour)),
	}, nil)
	s.adapter.EXPECT().HasMore(1, 2).Return(false)
	gomock.InOrder(
		s.ingester.EXPECT().Ingest(gomock.Any(), s.src, gomock.Any()).Return(nil, errors.New("constraint violation")),
		s.ingester.EXPECT().Ingest(gomock.Any(), s.src, gomock.Any()).Return(
			&domain.IngestResult{Article: &domain.Article{}, Outcome: domain.OutcomeCreated}, nil),
	)
	progress := s.captureProgress()

	stats, err := s.newRunner(nil).Run(context.Background(), s.src)

	s.Require().NoError(err)
	s.Equal(1, stats.Errors)
	s.Require().NotNil(progress.Cursor)
	s.Equal(failedAt, *progress.Cursor)
}

func (s *SyncRunnerTestSuite) TestRun_FetchFailureIsRunLevel() {
	boom := errors.New("network down")
	s.adapter.EXPECT().FetchPage(gomock.Any(), 1).Return(nil, boom)

	stats, err := s.newRunner(nil).Run(context.Background(), s.src)

	s.ErrorIs(err, boom)
	s.NotNil(stats)
}

func (s *SyncRunnerTestSuite) TestRun_AdapterConstructionFailure() {
	src := &domain.Source{ID: uuid.New(), Name: "Ghost", Platform: "ghost"}
	s.adapters.EXPECT().New(src).Return(nil, source.ErrUnsupportedPlatform)

	stats, err := s.newRunner(nil).Run(context.Background(), src)

	s.Nil(stats)
	s.ErrorIs(err, source.ErrUnsupportedPlatform)
}

func (s *SyncRunnerTestSuite) TestRun_ProgressFailureIsRunLevel() {
	s.adapter.EXPECT().FetchPage(gomock.Any(), 1).Return(nil, nil)
	boom := errors.New("update failed")
	s.progress.EXPECT().UpdateProgress(gomock.Any(), s.src.ID, gomock.Any()).Return(boom)

	_, err := s.newRunner(nil).Run(context.Background(), s.src)

	s.ErrorIs(err, boom)
}

func (s *SyncRunnerTestSuite) TestRun_CancellationDuringIngestAborts() {
	s.src.LastSeenPublishedAt = nil
	ctx, cancel := context.WithCancel(context.Background())

	s.adapter.EXPECT().FetchPage(gomock.Any(), 1).Return([]domain.RemoteArticle{
		article("1", s.start), article("2", s.start.Add(-time.Minute)),
	}, nil)
	s.ingester.EXPECT().Ingest(gomock.Any(), s.src, gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *domain.Source, _ *domain.RemoteArticle) (*domain.IngestResult, error) {
			cancel()
			return nil, ctx.Err()
		},
	)

	_, err := s.newRunner(nil).Run(ctx, s.src)

	s.ErrorIs(err, context.Canceled)
}

func (s *SyncRunnerTestSuite) TestRun_SmoothsRunMetrics() {
	s.src.LastSeenPublishedAt = nil
	s.src.AvgArticlesPerRun = 10
	s.src.AvgTimePerRunMs = 1000

	page := make([]domain.RemoteArticle, 5)
	for i := range page {
		page[i] = article(string(rune('a'+i)), s.start.Add(-time.Duration(i)*time.Minute))
	}
	s.adapter.EXPECT().FetchPage(gomock.Any(), 1).Return(page, nil)
	s.adapter.EXPECT().HasMore(1, 5).Return(false)
	s.ingestReturns(
		domain.OutcomeCreated, domain.OutcomeCreated, domain.OutcomeCreated,
		domain.OutcomeUnchanged, domain.OutcomeUpdated,
	)
	progress := s.captureProgress()

	stats, err := s.newRunner(nil).Run(context.Background(), s.src)

	s.Require().NoError(err)
	s.Equal(2*time.Second, stats.Duration)
	s.InDelta(9.0, progress.AvgArticlesPerRun, 1e-9)
	s.InDelta(1200.0, progress.AvgTimePerRunMs, 1e-9)
}

func (s *SyncRunnerTestSuite) TestRun_ColdStartSeedsMetrics() {
	s.src.LastSeenPublishedAt = nil

	s.adapter.EXPECT().FetchPage(gomock.Any(), 1).Return([]domain.RemoteArticle{article("1", s.start)}, nil)
	s.adapter.EXPECT().HasMore(1, 1).Return(false)
	s.ingestReturns(domain.OutcomeCreated)
	progress := s.captureProgress()

	_, err := s.newRunner(nil).Run(context.Background(), s.src)

	s.Require().NoError(err)
	s.InDelta(1.0, progress.AvgArticlesPerRun, 1e-9)
	s.InDelta(2000.0, progress.AvgTimePerRunMs, 1e-9)
	s.Require().NotNil(progress.Cursor)
	s.Equal(s.start, *progress.Cursor)
}

func (s *SyncRunnerTestSuite) TestRun_PublishesChangedArticles() {
	s.src.LastSeenPublishedAt = nil

	s.adapter.EXPECT().FetchPage(gomock.Any(), 1).Return([]domain.RemoteArticle{
		article("1", s.start),
		article("2", s.start.Add(-time.Minute)),
		article("3", s.start.Add(-2*time.Minute)),
		article("4", s.start.Add(-3*time.Minute)),
	}, nil)
	s.adapter.EXPECT().HasMore(1, 4).Return(false)
	s.ingestReturns(
		domain.OutcomeCreated,
		domain.OutcomeUnchanged,
		domain.OutcomeMetadataUpdated,
		domain.OutcomeUpdated,
	)
	s.captureProgress()

	var actions []domain.EventAction
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e *domain.ArticleEvent) error {
			actions = append(actions, e.Action)
			s.Equal(s.src.ID, e.SourceID)
			if e.Action == domain.ActionUpdate {
				return errors.New("broker unavailable")
			}
			return nil
		},
	).Times(3)

	stats, err := s.newRunner(s.publisher).Run(context.Background(), s.src)

	s.Require().NoError(err)
	s.Equal([]domain.EventAction{domain.ActionCreate, domain.ActionMetadataUpdate, domain.ActionUpdate}, actions)
	s.Equal(2, stats.Published)
	s.Zero(stats.Errors)
}

// urlAdapter is an adapter that can also fetch single articles by URL.
type urlAdapter struct {
	*sourcemocks.MockAdapter
	*sourcemocks.MockURLFetcher
}

func (s *SyncRunnerTestSuite) TestSyncURL_IngestsAndPublishes() {
	byURL := sourcemocks.NewMockURLFetcher(s.ctrl)
	adapters := mocks.NewMockAdapterProvider(s.ctrl)
	adapters.EXPECT().New(s.src).Return(urlAdapter{s.adapter, byURL}, nil)

	remote := article("9", s.start)
	stored := &domain.Article{ID: uuid.New(), ExternalID: "9"}
	byURL.EXPECT().FetchByURL(gomock.Any(), "https://example.com/nine/").Return(&remote, nil)
	s.ingester.EXPECT().Ingest(gomock.Any(), s.src, &remote).
		Return(&domain.IngestResult{Article: stored, Outcome: domain.OutcomeCreated}, nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e *domain.ArticleEvent) error {
			s.Equal(domain.ActionCreate, e.Action)
			s.Equal(stored.ID, e.Article.ID)
			return nil
		},
	)

	r := s.newRunner(s.publisher)
	r.adapters = adapters

	result, err := r.SyncURL(context.Background(), s.src, "https://example.com/nine/")

	s.Require().NoError(err)
	s.Equal(domain.OutcomeCreated, result.Outcome)
}

func (s *SyncRunnerTestSuite) TestSyncURL_AdapterWithoutURLLookup() {
	_, err := s.newRunner(nil).SyncURL(context.Background(), s.src, "https://example.com/nine/")

	s.ErrorIs(err, source.ErrNotSupported)
}

func (s *SyncRunnerTestSuite) TestSyncURL_NotFound() {
	byURL := sourcemocks.NewMockURLFetcher(s.ctrl)
	adapters := mocks.NewMockAdapterProvider(s.ctrl)
	adapters.EXPECT().New(s.src).Return(urlAdapter{s.adapter, byURL}, nil)
	byURL.EXPECT().FetchByURL(gomock.Any(), "https://example.com/gone/").
		Return(nil, source.ErrArticleNotFound)

	r := s.newRunner(nil)
	r.adapters = adapters

	_, err := r.SyncURL(context.Background(), s.src, "https://example.com/gone/")

	s.ErrorIs(err, source.ErrArticleNotFound)
}

func TestSmooth(t *testing.T) {
	assert.InDelta(t, 5.0, smooth(0, 5, 0.2), 1e-9)
	assert.InDelta(t, 9.0, smooth(10, 5, 0.2), 1e-9)
	assert.InDelta(t, 10.0, smooth(10, 10, 0.2), 1e-9)
}
