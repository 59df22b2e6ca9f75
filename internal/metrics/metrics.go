// Package metrics exposes the service collectors as Prometheus metrics.
package metrics

import (
	"strconv"
	"time"

	"walletcore/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const namespace = "walletcore"

// Metrics holds every collector, registered on one registerer.
type Metrics struct {
	Ledger  *LedgerMetrics
	Payment *PaymentMetrics
	Limit   *LimitMetrics
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Ledger:  newLedgerMetrics(f),
		Payment: newPaymentMetrics(f),
		Limit:   newLimitMetrics(f),
	}
}

func operationVecs(f promauto.Factory, subsystem string) (*prometheus.HistogramVec, *prometheus.CounterVec) {
	duration := f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "operation_duration_seconds",
		Help:      "Duration of service operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	results := f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "operations_total",
		Help:      "Service operations by result.",
	}, []string{"operation", "result"})
	return duration, results
}

// LedgerMetrics implements ledger.MetricsCollector.
type LedgerMetrics struct {
	duration *prometheus.HistogramVec
	results  *prometheus.CounterVec
	postings *prometheus.CounterVec
	volume   *prometheus.CounterVec
	replays  *prometheus.CounterVec
}

func newLedgerMetrics(f promauto.Factory) *LedgerMetrics {
	duration, results := operationVecs(f, "ledger")
	return &LedgerMetrics{
		duration: duration,
		results:  results,
		postings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "postings_total",
			Help:      "Applied postings by direction and currency.",
		}, []string{"direction", "currency"}),
		volume: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "posted_amount_total",
			Help:      "Sum of applied posting amounts by direction and currency.",
		}, []string{"direction", "currency"}),
		replays: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "replays_total",
			Help:      "Postings answered from an existing idempotency key.",
		}, []string{"operation"}),
	}
}

func (m *LedgerMetrics) RecordOperationDuration(operation string, d time.Duration) {
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *LedgerMetrics) RecordOperationResult(operation, result string) {
	m.results.WithLabelValues(operation, result).Inc()
}

func (m *LedgerMetrics) RecordPosting(direction models.Direction, currency string, amount decimal.Decimal) {
	m.postings.WithLabelValues(string(direction), currency).Inc()
	m.volume.WithLabelValues(string(direction), currency).Add(amount.InexactFloat64())
}

func (m *LedgerMetrics) RecordReplay(operation string) {
	m.replays.WithLabelValues(operation).Inc()
}

// PaymentMetrics implements payment.MetricsCollector.
type PaymentMetrics struct {
	duration      *prometheus.HistogramVec
	results       *prometheus.CounterVec
	started       *prometheus.CounterVec
	completed     *prometheus.CounterVec
	replays       *prometheus.CounterVec
	startFailures *prometheus.CounterVec
}

func newPaymentMetrics(f promauto.Factory) *PaymentMetrics {
	duration, results := operationVecs(f, "payment")
	return &PaymentMetrics{
		duration: duration,
		results:  results,
		started: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "processes_started_total",
			Help:      "Payment processes created by type.",
		}, []string{"type"}),
		completed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "processes_completed_total",
			Help:      "Payment processes reaching a terminal status.",
		}, []string{"type", "status"}),
		replays: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "replays_total",
			Help:      "Requests answered from an existing idempotency key.",
		}, []string{"operation"}),
		startFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "workflow_start_failures_total",
			Help:      "Failed calls to the workflow starter.",
		}, []string{"type"}),
	}
}

func (m *PaymentMetrics) RecordOperationDuration(operation string, d time.Duration) {
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *PaymentMetrics) RecordOperationResult(operation, result string) {
	m.results.WithLabelValues(operation, result).Inc()
}

func (m *PaymentMetrics) RecordProcessStarted(t models.PaymentType) {
	m.started.WithLabelValues(string(t)).Inc()
}

func (m *PaymentMetrics) RecordProcessCompleted(t models.PaymentType, status models.PaymentStatus) {
	m.completed.WithLabelValues(string(t), string(status)).Inc()
}

func (m *PaymentMetrics) RecordReplay(operation string) {
	m.replays.WithLabelValues(operation).Inc()
}

func (m *PaymentMetrics) RecordWorkflowStartFailure(t models.PaymentType) {
	m.startFailures.WithLabelValues(string(t)).Inc()
}

// LimitMetrics implements limit.MetricsCollector.
type LimitMetrics struct {
	checks *prometheus.CounterVec
	cache  *prometheus.CounterVec
}

func newLimitMetrics(f promauto.Factory) *LimitMetrics {
	return &LimitMetrics{
		checks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "limit",
			Name:      "checks_total",
			Help:      "Limit checks by definition and decision.",
		}, []string{"definition", "allowed"}),
		cache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "limit",
			Name:      "cache_requests_total",
			Help:      "Definition cache lookups by outcome.",
		}, []string{"key", "outcome"}),
	}
}

func (m *LimitMetrics) RecordCheck(definitionCode string, allowed bool) {
	m.checks.WithLabelValues(definitionCode, strconv.FormatBool(allowed)).Inc()
}

func (m *LimitMetrics) RecordCacheHit(key string) {
	m.cache.WithLabelValues(key, "hit").Inc()
}

func (m *LimitMetrics) RecordCacheMiss(key string) {
	m.cache.WithLabelValues(key, "miss").Inc()
}
