// Package metrics exposes Prometheus instrumentation for the confirmation
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the engine.
type Metrics struct {
	registry *prometheus.Registry

	EventsIngested  *prometheus.CounterVec
	CandidatesFound prometheus.Counter
	Confirmations   *prometheus.CounterVec
	ReviewsFlagged  prometheus.Counter
	PaymentsExpired prometheus.Counter
	PendingPayments prometheus.Gauge
}

// New creates and registers all engine collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		EventsIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paywatch_events_ingested_total",
				Help: "Raw messages delivered to the engine by source channel",
			},
			[]string{"channel"},
		),

		CandidatesFound: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "paywatch_candidates_parsed_total",
				Help: "Messages that parsed into a payment candidate",
			},
		),

		Confirmations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paywatch_confirmations_total",
				Help: "Confirmed payments by mode (auto or manual)",
			},
			[]string{"mode"},
		),

		ReviewsFlagged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "paywatch_manual_reviews_total",
				Help: "Matches flagged for manual review",
			},
		),

		PaymentsExpired: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "paywatch_payments_expired_total",
				Help: "Pending payments evicted by the sweeper",
			},
		),

		PendingPayments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "paywatch_pending_payments",
				Help: "Payments currently awaiting confirmation",
			},
		),
	}

	m.registry.MustRegister(
		m.EventsIngested,
		m.CandidatesFound,
		m.Confirmations,
		m.ReviewsFlagged,
		m.PaymentsExpired,
		m.PendingPayments,
	)

	return m
}

// Handler returns an HTTP handler serving the engine metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
