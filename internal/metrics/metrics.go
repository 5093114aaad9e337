// Package metrics exposes sync activity as Prometheus metrics.
//
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scriba"

type Recorder struct {
	articles        *prometheus.CounterVec
	articleFailures *prometheus.CounterVec
	runs            *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	stops           *prometheus.CounterVec
	fetchRetries    *prometheus.CounterVec
	sourcesDisabled *prometheus.CounterVec
	publishFailures *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)

	return &Recorder{
		articles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "articles_total",
			Help:      "Articles ingested by source and outcome.",
		}, []string{"source", "outcome"}),

		articleFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "article_failures_total",
			Help:      "Articles that failed to ingest.",
		}, []string{"source"}),

		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Source runs by status.",
		}, []string{"source", "status"}),

		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "run_duration_seconds",
			Help:      "Duration of successful source runs.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"source"}),

		stops: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "stops_total",
			Help:      "Source runs by the rule that stopped them.",
		}, []string{"source", "reason"}),

		fetchRetries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "retries_total",
			Help:      "HTTP request retries by host.",
		}, []string{"host"}),

		sourcesDisabled: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "sources_disabled_total",
			Help:      "Sources deactivated after repeated run failures.",
		}, []string{"source"}),

		publishFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publisher",
			Name:      "failures_total",
			Help:      "Article events that could not be published.",
		}, []string{"source"}),
	}
}

func (r *Recorder) ArticleIngested(source, outcome string) {
	if r == nil {
		return
	}
	r.articles.WithLabelValues(source, outcome).Inc()
}

func (r *Recorder) ArticleFailed(source string) {
	if r == nil {
		return
	}
	r.articleFailures.WithLabelValues(source).Inc()
}

func (r *Recorder) RunSucceeded(source, stopReason string, d time.Duration) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(source, "success").Inc()
	r.runDuration.WithLabelValues(source).Observe(d.Seconds())
	r.stops.WithLabelValues(source, stopReason).Inc()
}

func (r *Recorder) RunFailed(source string) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(source, "failure").Inc()
}

// FetchRetry satisfies fetch.RetryObserver.
func (r *Recorder) FetchRetry(host string) {
	if r == nil {
		return
	}
	r.fetchRetries.WithLabelValues(host).Inc()
}

func (r *Recorder) SourceDisabled(source string) {
	if r == nil {
		return
	}
	r.sourcesDisabled.WithLabelValues(source).Inc()
}

func (r *Recorder) PublishFailed(source string) {
	if r == nil {
		return
	}
	r.publishFailures.WithLabelValues(source).Inc()
}
