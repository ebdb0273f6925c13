package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all command center metrics
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Kafka metrics
	KafkaEventsPublished *prometheus.CounterVec
	KafkaPublishDuration *prometheus.HistogramVec

	// Source read metrics (postgres, mongodb, neo4j, redis)
	SourceReads        *prometheus.CounterVec
	SourceReadDuration *prometheus.HistogramVec

	// Snapshot metrics
	SnapshotsBuilt         *prometheus.CounterVec
	SnapshotDuration       prometheus.Histogram
	EngineDuration         *prometheus.HistogramVec
	SectionsDegraded       *prometheus.CounterVec
	SnapshotCacheLookups   *prometheus.CounterVec
	DataQualityHealthScore prometheus.Gauge

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "opscenter",
	}
}

// New creates a new Metrics instance
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being processed",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.KafkaEventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "kafka_events_published_total",
			Help:      "Total number of Kafka events published",
		},
		[]string{"service", "topic", "event_type", "status"},
	)

	m.KafkaPublishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "kafka_publish_duration_seconds",
			Help:      "Kafka publish duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"service", "topic"},
	)

	m.SourceReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "source_reads_total",
			Help:      "Total number of reads against backing stores",
		},
		[]string{"service", "source", "operation", "status"},
	)

	m.SourceReadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "source_read_duration_seconds",
			Help:      "Backing store read duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"service", "source", "operation"},
	)

	m.SnapshotsBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "snapshots_built_total",
			Help:      "Total number of command center snapshots built",
		},
		[]string{"service", "outcome"},
	)

	m.SnapshotDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "snapshot_duration_seconds",
			Help:        "End-to-end snapshot aggregation duration in seconds",
			Buckets:     []float64{.01, .025, .05, .1, .25, .5, 1, 2, 3, 5, 8},
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.EngineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "engine_duration_seconds",
			Help:      "Per-section engine duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"service", "section"},
	)

	m.SectionsDegraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "sections_degraded_total",
			Help:      "Total number of snapshot sections returned degraded",
		},
		[]string{"service", "section", "reason"},
	)

	m.SnapshotCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "snapshot_cache_lookups_total",
			Help:      "Snapshot cache lookups by result",
		},
		[]string{"service", "result"},
	)

	m.DataQualityHealthScore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "data_quality_health_score",
			Help:        "Most recent master data health score (0-100)",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"service", "name"},
	)

	m.CircuitBreakerTrips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "circuit_breaker_trips_total",
			Help:      "Total number of circuit breaker trips",
		},
		[]string{"service", "name"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.KafkaEventsPublished,
		m.KafkaPublishDuration,
		m.SourceReads,
		m.SourceReadDuration,
		m.SnapshotsBuilt,
		m.SnapshotDuration,
		m.EngineDuration,
		m.SectionsDegraded,
		m.SnapshotCacheLookups,
		m.DataQualityHealthScore,
		m.CircuitBreakerState,
		m.CircuitBreakerTrips,
	)

	return m
}

// Handler returns an HTTP handler for metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// RecordKafkaPublish records a Kafka publish event
func (m *Metrics) RecordKafkaPublish(topic, eventType string, success bool, duration time.Duration) {
	m.KafkaEventsPublished.WithLabelValues(m.serviceName, topic, eventType, statusLabel(success)).Inc()
	m.KafkaPublishDuration.WithLabelValues(m.serviceName, topic).Observe(duration.Seconds())
}

// RecordSourceRead records a read against a backing store
func (m *Metrics) RecordSourceRead(source, operation string, success bool, duration time.Duration) {
	m.SourceReads.WithLabelValues(m.serviceName, source, operation, statusLabel(success)).Inc()
	m.SourceReadDuration.WithLabelValues(m.serviceName, source, operation).Observe(duration.Seconds())
}

// RecordSnapshot records a finished snapshot. outcome is complete, partial or failed.
func (m *Metrics) RecordSnapshot(outcome string, duration time.Duration) {
	m.SnapshotsBuilt.WithLabelValues(m.serviceName, outcome).Inc()
	m.SnapshotDuration.Observe(duration.Seconds())
}

// RecordEngine records the duration of one section engine
func (m *Metrics) RecordEngine(section string, duration time.Duration) {
	m.EngineDuration.WithLabelValues(m.serviceName, section).Observe(duration.Seconds())
}

// RecordSectionDegraded records a degraded section with its reason code
func (m *Metrics) RecordSectionDegraded(section, reason string) {
	m.SectionsDegraded.WithLabelValues(m.serviceName, section, reason).Inc()
}

// RecordCacheLookup records a snapshot cache hit or miss
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.SnapshotCacheLookups.WithLabelValues(m.serviceName, result).Inc()
}

// SetDataQualityHealthScore publishes the latest health score
func (m *Metrics) SetDataQualityHealthScore(score int) {
	m.DataQualityHealthScore.Set(float64(score))
}

// SetCircuitBreakerState sets the circuit breaker state
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.CircuitBreakerState.WithLabelValues(m.serviceName, name).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(name string) {
	m.CircuitBreakerTrips.WithLabelValues(m.serviceName, name).Inc()
}

// IncrementHTTPRequestsInFlight increments in-flight requests
func (m *Metrics) IncrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// DecrementHTTPRequestsInFlight decrements in-flight requests
func (m *Metrics) DecrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}
