package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Redoni18/scriba-aggregator/internal/config"
	"github.com/Redoni18/scriba-aggregator/internal/domain"
	"github.com/Redoni18/scriba-aggregator/internal/metrics"
)

var (
	ErrSourceNotFound = errors.New("source not found")
	ErrSourceInactive = errors.New("source is inactive")
)

type Mode int

const (
	ModeContinuous Mode = iota
	ModeOnce
)

type Scheduler struct {
	sources  SourceStore
	runner   Runner
	metrics  *metrics.Recorder
	interval time.Duration
	maxErrs  int
	logger   *slog.Logger
	now      func() time.Time
}

func NewScheduler(sources SourceStore, runner Runner, recorder *metrics.Recorder, cfg config.SchedulerConfig, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sources:  sources,
		runner:   runner,
		metrics:  recorder,
		interval: cfg.Interval,
		maxErrs:  cfg.MaxConsecutiveErrors,
		logger:   logger.With("component", "scheduler"),
		now:      time.Now,
	}
}

func (s *Scheduler) Run(ctx context.Context, mode Mode) error {
	if mode == ModeOnce {
		return s.RunOnce(ctx)
	}
	return s.Start(ctx)
}

// Start runs cycles until ctx is cancelled. A cycle in progress when ctx is
// cancelled runs to completion; no new cycle is started after it.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	for {
		if err := s.RunOnce(context.WithoutCancel(ctx)); err != nil {
			s.logger.Error("cycle failed", "error", err)
		}

		s.logger.Info("cycle complete, sleeping", "interval", s.interval)

		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler stopped")
			return nil
		case <-timer.C:
		}
	}
}

// RunOnce syncs every active source once, sequentially. Only a failure to
// list sources is returned; source failures are recorded on the source.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	sources, err := s.sources.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active sources: %w", err)
	}

	s.logger.Info("starting cycle", "sources", len(sources))

	for i := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.runSource(ctx, &sources[i])
	}
	return nil
}

// RunSource syncs the source registered for sourceDomain now.
func (s *Scheduler) RunSource(ctx context.Context, sourceDomain string) (*domain.SyncStats, error) {
	src, err := s.sources.GetByDomain(ctx, sourceDomain)
	if err != nil {
		return nil, fmt.Errorf("get source %q: %w", sourceDomain, err)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, sourceDomain)
	}
	if !src.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrSourceInactive, src.Name)
	}

	stats, err := s.runSource(ctx, src)
	if err != nil {
		return stats, fmt.Errorf("sync %s: %w", src.Name, err)
	}
	return stats, nil
}

func (s *Scheduler) runSource(ctx context.Context, src *domain.Source) (*domain.SyncStats, error) {
	logger := s.logger.With("source", src.Name)

	stats, err := s.safeRun(ctx, src)
	if err == nil {
		if recErr := s.sources.RecordSuccess(ctx, src.ID); recErr != nil {
			logger.Error("failed to reset source errors", "error", recErr)
		}
		return stats, nil
	}

	s.metrics.RunFailed(src.Name)
	logger.Error("source sync failed", "error", err)

	health, recErr := s.sources.RecordFailure(ctx, src.ID, err.Error(), s.now().UTC(), s.maxErrs)
	if recErr != nil {
		logger.Error("failed to record source failure", "error", recErr)
		return stats, err
	}

	if !health.IsActive {
		s.metrics.SourceDisabled(src.Name)
		logger.Error("source disabled after consecutive failures", "error_count", health.ErrorCount)
	}
	return stats, err
}

// safeRun turns a panic inside the runner into a run failure.
func (s *Scheduler) safeRun(ctx context.Context, src *domain.Source) (stats *domain.SyncStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during sync: %v", r)
		}
	}()
	return s.runner.Run(ctx, src)
}
