package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Redoni18/scriba-aggregator/internal/config"
	"github.com/Redoni18/scriba-aggregator/internal/domain"
	"github.com/Redoni18/scriba-aggregator/internal/metrics"
	"github.com/Redoni18/scriba-aggregator/internal/source"
)

// SyncRunner performs one incremental run for one source. It walks pages
// newest first and stops at the first of: an article not newer than the
// source cursor, too many consecutive articles without new content, the page
// cap, or the end of the remote listing.
type SyncRunner struct {
	adapters  AdapterProvider
	ingester  ArticleIngester
	progress  SourceProgressStore
	publisher Publisher
	metrics   *metrics.Recorder
	logger    *slog.Logger
	config    config.SyncConfig
	now       func() time.Time
}

// NewSyncRunner creates a runner. publisher and recorder may be nil.
func NewSyncRunner(
	adapters AdapterProvider,
	ingester ArticleIngester,
	progress SourceProgressStore,
	publisher Publisher,
	recorder *metrics.Recorder,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *SyncRunner {
	return &SyncRunner{
		adapters:  adapters,
		ingester:  ingester,
		progress:  progress,
		publisher: publisher,
		metrics:   recorder,
		logger:    logger.With("component", "sync"),
		config:    cfg,
		now:       time.Now,
	}
}

// Run returns an error only for run-level failures: adapter construction,
// page fetches, cancellation and the final progress write. Per-article
// failures are counted in the stats and are not retried by later runs. The
// cursor advances past every article observed, stored or not; SyncURL is the
// way to ingest a failed article again.
func (r *SyncRunner) Run(ctx context.Context, src *domain.Source) (*domain.SyncStats, error) {
	startTime := r.now()
	logger := r.logger.With("source", src.Name)

	adapter, err := r.adapters.New(src)
	if err != nil {
		return nil, fmt.Errorf("create adapter: %w", err)
	}

	cursor := src.LastSeenPublishedAt
	logger.Info("starting sync",
		"platform", src.Platform,
		"cursor", cursor,
		"max_pages", r.config.MaxPagesPerRun,
	)

	stats := &domain.SyncStats{SourceID: src.ID}
	var maxSeen *time.Time
	skipped := 0

	for page := 1; stats.StopReason == ""; page++ {
		articles, err := adapter.FetchPage(ctx, page)
		if err != nil {
			return stats, fmt.Errorf("fetch page %d: %w", page, err)
		}
		stats.Pages++
		stats.Fetched += len(articles)

		if len(articles) == 0 {
			stats.StopReason = domain.StopExhausted
			break
		}

		for i := range articles {
			article := &articles[i]

			if cursor != nil && !article.PublishedAt.After(*cursor) {
				logger.Debug("reached watermark",
					"external_id", article.ExternalID,
					"published_at", article.PublishedAt,
				)
				stats.StopReason = domain.StopWatermark
				break
			}

			if maxSeen == nil || article.PublishedAt.After(*maxSeen) {
				t := article.PublishedAt
				maxSeen = &t
			}

			result, err := r.ingester.Ingest(ctx, src, article)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return stats, ctxErr
				}
				stats.Errors++
				r.metrics.ArticleFailed(src.Name)
				logger.Error("failed to ingest article",
					"external_id", article.ExternalID,
					"error", err,
				)
				continue
			}

			stats.Record(result.Outcome)
			r.metrics.ArticleIngested(src.Name, string(result.Outcome))
			r.publish(ctx, src, result, stats)

			if result.Outcome.HasNewContent() {
				skipped = 0
			} else {
				skipped++
			}
			if skipped >= r.config.MaxConsecutiveSkipped {
				logger.Debug("skip threshold reached", "skipped", skipped)
				stats.StopReason = domain.StopSkipThreshold
				break
			}
		}
		if stats.StopReason != "" {
			break
		}

		if page >= r.config.MaxPagesPerRun {
			stats.StopReason = domain.StopPageCap
		} else if !adapter.HasMore(page, len(articles)) {
			stats.StopReason = domain.StopExhausted
		}
	}

	finishedAt := r.now()
	stats.Duration = finishedAt.Sub(startTime)

	progress := domain.SourceProgress{
		LastFetchedAt:     finishedAt.UTC(),
		AvgArticlesPerRun: smooth(src.AvgArticlesPerRun, float64(stats.Processed), r.config.SmoothingFactor),
		AvgTimePerRunMs:   smooth(src.AvgTimePerRunMs, float64(stats.Duration.Milliseconds()), r.config.SmoothingFactor),
	}
	if maxSeen != nil && (cursor == nil || maxSeen.After(*cursor)) {
		progress.Cursor = maxSeen
		stats.Cursor = maxSeen
	}

	if err := r.progress.UpdateProgress(ctx, src.ID, progress); err != nil {
		return stats, fmt.Errorf("update source progress: %w", err)
	}

	r.metrics.RunSucceeded(src.Name, string(stats.StopReason), stats.Duration)

	logger.Info("sync completed",
		"stop_reason", stats.StopReason,
		"pages", stats.Pages,
		"fetched", stats.Fetched,
		"new", stats.New,
		"updated", stats.Updated,
		"metadata_updated", stats.MetadataUpdated,
		"unchanged", stats.Unchanged,
		"errors", stats.Errors,
		"published", stats.Published,
		"cursor", stats.Cursor,
		"duration", stats.Duration,
	)

	return stats, nil
}

// SyncURL ingests a single article by its public URL, outside the page walk.
// The source cursor and run averages are left untouched.
func (r *SyncRunner) SyncURL(ctx context.Context, src *domain.Source, articleURL string) (*domain.IngestResult, error) {
	adapter, err := r.adapters.New(src)
	if err != nil {
		return nil, fmt.Errorf("create adapter: %w", err)
	}

	byURL, ok := adapter.(source.URLFetcher)
	if !ok {
		return nil, fmt.Errorf("fetch by url on %s: %w", src.Platform, source.ErrNotSupported)
	}

	remote, err := byURL.FetchByURL(ctx, articleURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", articleURL, err)
	}

	result, err := r.ingester.Ingest(ctx, src, remote)
	if err != nil {
		r.metrics.ArticleFailed(src.Name)
		return nil, fmt.Errorf("ingest %s: %w", articleURL, err)
	}
	r.metrics.ArticleIngested(src.Name, string(result.Outcome))

	var stats domain.SyncStats
	r.publish(ctx, src, result, &stats)

	r.logger.Info("article synced by url",
		"source", src.Name,
		"url", articleURL,
		"outcome", result.Outcome,
	)
	return result, nil
}

func (r *SyncRunner) publish(ctx context.Context, src *domain.Source, result *domain.IngestResult, stats *domain.SyncStats) {
	if r.publisher == nil {
		return
	}
	action, ok := result.Outcome.EventAction()
	if !ok {
		return
	}

	event := &domain.ArticleEvent{
		Action:    action,
		SourceID:  src.ID,
		Article:   *result.Article,
		Timestamp: r.now().UTC(),
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.metrics.PublishFailed(src.Name)
		r.logger.Warn("failed to publish article event",
			"source", src.Name,
			"external_id", result.Article.ExternalID,
			"error", err,
		)
		return
	}
	stats.Published++
}

// smooth is an exponential moving average seeded by the first observation.
func smooth(old, observed, factor float64) float64 {
	if old <= 0 {
		return observed
	}
	return old*(1-factor) + observed*factor
}
