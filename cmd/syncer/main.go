package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Redoni18/scriba-aggregator/internal/config"
	"github.com/Redoni18/scriba-aggregator/internal/domain"
	"github.com/Redoni18/scriba-aggregator/internal/fetch"
	"github.com/Redoni18/scriba-aggregator/internal/metrics"
	"github.com/Redoni18/scriba-aggregator/internal/publisher"
	"github.com/Redoni18/scriba-aggregator/internal/scheduler"
	"github.com/Redoni18/scriba-aggregator/internal/service"
	"github.com/Redoni18/scriba-aggregator/internal/source"
	"github.com/Redoni18/scriba-aggregator/internal/source/ecb"
	"github.com/Redoni18/scriba-aggregator/internal/source/wordpress"
	"github.com/Redoni18/scriba-aggregator/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single cycle over all active sources and exit")
	sourceDomain := flag.String("source", "", "sync only the source with this domain and exit")
	articleURL := flag.String("url", "", "with -source, ingest only the article at this URL and exit")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(reg)

	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	pub, err := newPublisher(cfg.Publisher, logger)
	if err != nil {
		logger.Error("failed to initialize publisher", "error", err)
		os.Exit(1)
	}
	if pub != nil {
		defer pub.Close()
	}

	fetcher := fetch.New(fetch.Config{
		Timeout:        cfg.Fetch.Timeout,
		MaxRetries:     cfg.Fetch.Retries(),
		InitialBackoff: cfg.Fetch.InitialBackoff,
		MaxBackoff:     cfg.Fetch.MaxBackoff,
		UserAgent:      cfg.Fetch.UserAgent,
		RateLimit:      cfg.Fetch.RateLimit,
		Burst:          cfg.Fetch.Burst,
	}, logger, fetch.WithRetryObserver(recorder))

	registry := newRegistry(fetcher, cfg.Adapters, logger)

	sourceStore := postgres.NewSourceStore(db)
	txManager := postgres.NewTransactionManager(db)

	ingestor := service.NewIngestor(
		postgres.NewArticleStore(db),
		postgres.NewVersionStore(db),
		postgres.NewJournalistStore(db),
		postgres.NewTagStore(db),
		postgres.NewCategoryStore(db),
		txManager,
		logger,
	)

	runner := service.NewSyncRunner(registry, ingestor, sourceStore, pub, recorder, logger, cfg.Sync)
	sched := scheduler.NewScheduler(sourceStore, runner, recorder, cfg.Scheduler, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if *articleURL != "" {
		if err := syncURL(ctx, sourceStore, runner, *sourceDomain, *articleURL, logger); err != nil {
			logger.Error("article sync failed", "url", *articleURL, "error", err)
			os.Exit(1)
		}
		return
	}

	if *sourceDomain != "" {
		stats, err := sched.RunSource(ctx, *sourceDomain)
		if err != nil {
			logger.Error("source sync failed", "domain", *sourceDomain, "error", err)
			os.Exit(1)
		}
		logger.Info("source sync complete",
			"domain", *sourceDomain,
			"new", stats.New,
			"updated", stats.Updated,
			"metadata_updated", stats.MetadataUpdated,
			"unchanged", stats.Unchanged,
			"errors", stats.Errors,
			"stop_reason", stats.StopReason,
		)
		return
	}

	mode := scheduler.ModeContinuous
	if *once {
		mode = scheduler.ModeOnce
	}

	logger.Info("starting scriba syncer",
		"once", *once,
		"interval", cfg.Scheduler.Interval,
		"max_pages", cfg.Sync.MaxPagesPerRun,
		"platforms", registry.Platforms(),
		"publisher", cfg.Publisher.Driver,
	)

	if err := sched.Run(ctx, mode); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func syncURL(ctx context.Context, sources *postgres.SourceStore, runner *service.SyncRunner, sourceDomain, articleURL string, logger *slog.Logger) error {
	if sourceDomain == "" {
		return errors.New("-url requires -source")
	}

	src, err := sources.GetByDomain(ctx, sourceDomain)
	if err != nil {
		return fmt.Errorf("get source %q: %w", sourceDomain, err)
	}
	if src == nil {
		return fmt.Errorf("%w: %s", scheduler.ErrSourceNotFound, sourceDomain)
	}

	result, err := runner.SyncURL(ctx, src, articleURL)
	if err != nil {
		return err
	}

	logger.Info("article sync complete",
		"domain", sourceDomain,
		"article_id", result.Article.ID,
		"outcome", result.Outcome,
	)
	return nil
}

func newRegistry(fetcher source.Fetcher, cfg config.AdaptersConfig, logger *slog.Logger) *source.Registry {
	registry := source.NewRegistry()
	registry.Register(domain.PlatformWordPress, func(src *domain.Source) (source.Adapter, error) {
		return wordpress.New(src, fetcher, wordpress.Config{PerPage: cfg.WordPress.PerPage}, logger)
	})
	registry.Register(domain.PlatformECB, func(src *domain.Source) (source.Adapter, error) {
		return ecb.New(src, fetcher, ecb.Config{PageSize: cfg.ECB.PageSize}, logger)
	})
	return registry
}

// newPublisher returns nil when no driver is configured.
func newPublisher(cfg config.PublisherConfig, logger *slog.Logger) (service.Publisher, error) {
	switch cfg.Driver {
	case config.PublisherRabbitMQ:
		return publisher.NewRabbitMQ(publisher.RabbitMQConfig{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
	case config.PublisherKafka:
		return publisher.NewKafka(publisher.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, logger)
	case config.PublisherNone, "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown publisher driver %q", cfg.Driver)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
