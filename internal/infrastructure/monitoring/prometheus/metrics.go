package prometheus

import (
	"time"

	"github.com/juristack/juristack/internal/domain/pipeline"
)

// AppMetrics holds the application metric set.
type AppMetrics struct {
	// HTTP surface
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Case intake
	CaseUploadsTotal CounterVec

	// Pipeline
	StageRunsTotal CounterVec
	StageDuration  HistogramVec
	StageRetries   CounterVec
	QueueDepth     GaugeVec

	// Similarity and prediction
	SimilarityQueriesTotal CounterVec
	SimilarityDuration     HistogramVec
	PredictionsTotal       CounterVec

	// Chatbot
	ChatRequestsTotal CounterVec
	ChatLatency       HistogramVec

	// AI backends
	AIRequestsTotal   CounterVec
	AIRequestDuration HistogramVec

	// Infrastructure
	CacheHitsTotal        CounterVec
	CacheMissesTotal      CounterVec
	EventsPublishedTotal  CounterVec
	DBConnectionPoolTotal GaugeVec
	HealthCheckStatus     GaugeVec
	ErrorsTotal           CounterVec
}

// Stage duration buckets skew wide: embedding and translation run seconds,
// not milliseconds.
var stageDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}

var httpDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// NewAppMetrics registers every application metric against the collector.
func NewAppMetrics(c MetricsCollector) *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal: c.RegisterCounter("http_requests_total",
			"Total HTTP requests served.", "method", "path", "status"),
		HTTPRequestDuration: c.RegisterHistogram("http_request_duration_seconds",
			"HTTP request latency.", httpDurationBuckets, "method", "path"),
		HTTPActiveRequests: c.RegisterGauge("http_active_requests",
			"In-flight HTTP requests.", "method"),

		CaseUploadsTotal: c.RegisterCounter("case_uploads_total",
			"Judgment uploads by outcome.", "status"),

		StageRunsTotal: c.RegisterCounter("stage_runs_total",
			"Pipeline stage executions by outcome.", "stage", "outcome"),
		StageDuration: c.RegisterHistogram("stage_duration_seconds",
			"Pipeline stage execution time.", stageDurationBuckets, "stage"),
		StageRetries: c.RegisterCounter("stage_retries_total",
			"Stage retries scheduled after transient failures.", "stage"),
		QueueDepth: c.RegisterGauge("queue_depth",
			"Queue entries per stage.", "stage"),

		SimilarityQueriesTotal: c.RegisterCounter("similarity_queries_total",
			"Similarity rankings computed.", "status"),
		SimilarityDuration: c.RegisterHistogram("similarity_duration_seconds",
			"Similarity ranking latency.", stageDurationBuckets),
		PredictionsTotal: c.RegisterCounter("predictions_total",
			"Outcome predictions by verdict label.", "outcome", "source"),

		ChatRequestsTotal: c.RegisterCounter("chat_requests_total",
			"Chat questions answered, by routed intent.", "intent", "status"),
		ChatLatency: c.RegisterHistogram("chat_latency_seconds",
			"End-to-end chat answer latency.", nil, "intent"),

		AIRequestsTotal: c.RegisterCounter("ai_requests_total",
			"Calls to AI model backends.", "model", "operation", "status"),
		AIRequestDuration: c.RegisterHistogram("ai_request_duration_seconds",
			"AI backend call latency.", stageDurationBuckets, "model", "operation"),

		CacheHitsTotal: c.RegisterCounter("cache_hits_total",
			"Cache hits.", "cache"),
		CacheMissesTotal: c.RegisterCounter("cache_misses_total",
			"Cache misses.", "cache"),
		EventsPublishedTotal: c.RegisterCounter("events_published_total",
			"Pipeline events published to the broker.", "topic", "status"),
		DBConnectionPoolTotal: c.RegisterGauge("db_connection_pool",
			"Database connection pool state.", "state"),
		HealthCheckStatus: c.RegisterGauge("health_check_status",
			"Component health: 1 healthy, 0 unhealthy.", "component"),
		ErrorsTotal: c.RegisterCounter("errors_total",
			"Application errors by code.", "code"),
	}
}

// ObserveHTTPRequest records one served request.
func (m *AppMetrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCacheAccess counts a hit or miss on the named cache.
func (m *AppMetrics) RecordCacheAccess(cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// RecordEvent counts a broker publish attempt.
func (m *AppMetrics) RecordEvent(topic string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.EventsPublishedTotal.WithLabelValues(topic, status).Inc()
}

// SetHealth flips the component health gauge.
func (m *AppMetrics) SetHealth(component string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1.0
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

// SetQueueDepth publishes per-stage queue counts, typically fed from
// QueueRepository.CountByStage.
func (m *AppMetrics) SetQueueDepth(counts map[pipeline.Stage]int64) {
	for stage, n := range counts {
		m.QueueDepth.WithLabelValues(string(stage)).Set(float64(n))
	}
}

// StageObserver adapts AppMetrics to the pipeline orchestrator's
// observation hook.
type StageObserver struct {
	metrics *AppMetrics
}

var _ pipeline.StageObserver = (*StageObserver)(nil)

func NewStageObserver(metrics *AppMetrics) *StageObserver {
	return &StageObserver{metrics: metrics}
}

// ObserveStage records one stage execution.
func (o *StageObserver) ObserveStage(stage pipeline.Stage, outcome string, duration time.Duration) {
	if o.metrics == nil {
		return
	}
	o.metrics.StageRunsTotal.WithLabelValues(string(stage), outcome).Inc()
	o.metrics.StageDuration.WithLabelValues(string(stage)).Observe(duration.Seconds())
	if outcome == pipeline.OutcomeRetried {
		o.metrics.StageRetries.WithLabelValues(string(stage)).Inc()
	}
}
