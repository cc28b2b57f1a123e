// Package engine wires the parser, registry, matcher and dispatcher into
// the payment auto-confirmation pipeline.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/paywatch/paywatch/internal/bus"
	"github.com/paywatch/paywatch/internal/match"
	"github.com/paywatch/paywatch/internal/metrics"
	"github.com/paywatch/paywatch/internal/model"
	"github.com/paywatch/paywatch/internal/parse"
	"github.com/paywatch/paywatch/internal/registry"
	"github.com/paywatch/paywatch/internal/service"
)

// Config holds configuration options for the confirmation engine.
type Config struct {
	// ParserConfig supplies the pattern tables; zero value means defaults.
	ParserConfig *parse.Config

	// NotificationWindow and SMSWindow bound how old a pending payment may
	// be relative to an observed message and still match. SMS is tighter
	// because bank SMS arrives with less jitter than app notifications.
	NotificationWindow time.Duration
	SMSWindow          time.Duration

	// StaleAfter is the age at which the sweeper evicts a pending payment.
	StaleAfter time.Duration
	// SweepInterval is how often the sweeper scans the registry.
	SweepInterval time.Duration

	// AutoConfirmThreshold and ReviewThreshold split match confidence into
	// auto-confirm (>= auto), manual review (>= review) and ignore bands.
	AutoConfirmThreshold int
	ReviewThreshold      int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		NotificationWindow:   10 * time.Minute,
		SMSWindow:            5 * time.Minute,
		StaleAfter:           30 * time.Minute,
		SweepInterval:        60 * time.Second,
		AutoConfirmThreshold: 85,
		ReviewThreshold:      60,
	}
}

// Engine is the payment auto-confirmation engine. One instance is
// constructed at startup and handed to whichever layers need it; there is
// no package-level state. All methods are safe for concurrent use.
type Engine struct {
	cfg      Config
	store    service.ConfirmationStore
	parser   *parse.Parser
	registry *registry.Registry
	matcher  *match.Matcher
	bus      *bus.Bus
	metrics  *metrics.Metrics
	now      func() time.Time
}

// New creates an engine with the default configuration.
func New(store service.ConfirmationStore) (*Engine, error) {
	return NewWithConfig(store, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(store service.ConfirmationStore, cfg Config) (*Engine, error) {
	defaults := DefaultConfig()
	if cfg.NotificationWindow <= 0 {
		cfg.NotificationWindow = defaults.NotificationWindow
	}
	if cfg.SMSWindow <= 0 {
		cfg.SMSWindow = defaults.SMSWindow
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = defaults.StaleAfter
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaults.SweepInterval
	}
	if cfg.AutoConfirmThreshold <= 0 {
		cfg.AutoConfirmThreshold = defaults.AutoConfirmThreshold
	}
	if cfg.ReviewThreshold <= 0 {
		cfg.ReviewThreshold = defaults.ReviewThreshold
	}

	parserCfg := parse.DefaultConfig()
	if cfg.ParserConfig != nil {
		parserCfg = *cfg.ParserConfig
	}
	parser, err := parse.NewParser(parserCfg)
	if err != nil {
		return nil, err
	}

	windows := map[model.SourceChannel]time.Duration{
		model.ChannelNotification: cfg.NotificationWindow,
		model.ChannelSMS:          cfg.SMSWindow,
	}

	return &Engine{
		cfg:      cfg,
		store:    store,
		parser:   parser,
		registry: registry.New(),
		matcher:  match.NewMatcher(windows, cfg.NotificationWindow),
		bus:      bus.New(),
		metrics:  metrics.New(),
		now:      time.Now,
	}, nil
}

// TrackPayment registers a payment the checkout flow is now awaiting.
// Invalid input (empty id, non-positive amount) is rejected here, at the
// call boundary.
func (e *Engine) TrackPayment(paymentID string, expectedAmount float64, payeeID, customerLabel string) error {
	if err := e.registry.Track(paymentID, expectedAmount, payeeID, customerLabel); err != nil {
		return err
	}

	e.metrics.PendingPayments.Set(float64(e.registry.Count()))
	slog.Info("Tracking payment",
		"payment_id", paymentID,
		"expected_amount", expectedAmount,
		"payee", payeeID)

	return nil
}

// UntrackPayment stops waiting for a payment, e.g. when the checkout dialog
// is closed. Unknown ids are a no-op.
func (e *Engine) UntrackPayment(paymentID string) {
	e.registry.Untrack(paymentID)
	e.metrics.PendingPayments.Set(float64(e.registry.Count()))
}

// GetPending returns the tracked payment for the given id.
func (e *Engine) GetPending(paymentID string) (model.PendingPayment, bool) {
	return e.registry.Get(paymentID)
}

// PendingCount returns the number of payments currently awaited.
func (e *Engine) PendingCount() int {
	return e.registry.Count()
}

// Subscribe registers a callback for confirmation, review and expiry
// events; the returned handle unsubscribes it.
func (e *Engine) Subscribe(fn func(model.PaymentEvent)) func() {
	return e.bus.Subscribe(fn)
}

// Metrics returns the engine's Prometheus collectors for serving.
func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

// DeliverEvent is the single entry point for ingestion adapters: raw
// notification or SMS text flows through the parser and matcher, and a
// sufficiently confident match confirms the payment automatically. Nothing
// in this path blocks on network I/O.
func (e *Engine) DeliverEvent(ctx context.Context, rawText string, channel model.SourceChannel, observedAt time.Time) {
	e.metrics.EventsIngested.WithLabelValues(string(channel)).Inc()

	candidate := e.parser.Parse(rawText, channel, observedAt)
	if candidate == nil {
		slog.Debug("Message carried no payment signal", "channel", channel)
		return
	}
	e.metrics.CandidatesFound.Inc()

	result, ok := e.matcher.BestMatch(*candidate, e.registry.AllPending())
	if !ok {
		slog.Debug("No pending payment matched candidate",
			"amount", candidate.Amount,
			"channel", channel,
			"content_confidence", candidate.ContentConfidence)
		return
	}

	switch {
	case result.MatchConfidence >= e.cfg.AutoConfirmThreshold:
		e.confirmAutomatic(ctx, result)
	case result.MatchConfidence >= e.cfg.ReviewThreshold:
		e.requestManualReview(result)
	default:
		slog.Debug("Match below review threshold, ignoring",
			"payment_id", result.PaymentID,
			"match_confidence", result.MatchConfidence)
	}
}

// ManualConfirm resolves a payment on the merchant's say-so. Returns false
// when the id is not tracked; nothing is published or persisted in that
// case.
func (e *Engine) ManualConfirm(ctx context.Context, paymentID string, amount float64) bool {
	pending, ok := e.registry.Remove(paymentID)
	if !ok {
		return false
	}
	e.metrics.PendingPayments.Set(float64(e.registry.Count()))

	record := model.ConfirmationRecord{
		PaymentID:       pending.PaymentID,
		Amount:          amount,
		ConfirmedAt:     e.now(),
		MatchConfidence: 100,
		Manual:          true,
	}

	e.persist(ctx, record)
	e.metrics.Confirmations.WithLabelValues("manual").Inc()

	e.bus.Publish(model.PaymentEvent{
		EventID:         uuid.NewString(),
		Kind:            model.EventConfirmed,
		PaymentID:       pending.PaymentID,
		Amount:          amount,
		MatchConfidence: 100,
		AutoConfirmed:   false,
		At:              record.ConfirmedAt,
	})

	slog.Info("Payment confirmed manually", "payment_id", paymentID, "amount", amount)
	return true
}

// confirmAutomatic resolves a matched payment. The entry is removed from
// the registry before anything is published so a crash mid-publish cannot
// double-confirm; an entry that is already gone was resolved concurrently
// and is skipped.
func (e *Engine) confirmAutomatic(ctx context.Context, result model.MatchResult) {
	pending, ok := e.registry.Remove(result.PaymentID)
	if !ok {
		slog.Debug("Payment already resolved, skipping confirmation",
			"payment_id", result.PaymentID)
		return
	}
	e.metrics.PendingPayments.Set(float64(e.registry.Count()))

	candidate := result.Candidate
	record := model.ConfirmationRecord{
		PaymentID:         pending.PaymentID,
		Amount:            candidate.Amount,
		Reference:         candidate.Reference,
		CounterpartyLabel: candidate.CounterpartyLabel,
		SourceApp:         candidate.SourceApp,
		ConfirmedAt:       e.now(),
		MatchConfidence:   result.MatchConfidence,
		Manual:            false,
	}

	e.persist(ctx, record)
	e.metrics.Confirmations.WithLabelValues("auto").Inc()

	e.bus.Publish(model.PaymentEvent{
		EventID:           uuid.NewString(),
		Kind:              model.EventConfirmed,
		PaymentID:         pending.PaymentID,
		Amount:            candidate.Amount,
		Reference:         candidate.Reference,
		CounterpartyLabel: candidate.CounterpartyLabel,
		SourceApp:         candidate.SourceApp,
		MatchConfidence:   result.MatchConfidence,
		AutoConfirmed:     true,
		At:                record.ConfirmedAt,
	})

	slog.Info("Payment confirmed automatically",
		"payment_id", pending.PaymentID,
		"amount", candidate.Amount,
		"match_confidence", result.MatchConfidence,
		"source_app", candidate.SourceApp)
}

// requestManualReview flags a mid-confidence match for the merchant. The
// entry stays tracked so it can still resolve automatically or manually.
func (e *Engine) requestManualReview(result model.MatchResult) {
	e.metrics.ReviewsFlagged.Inc()

	candidate := result.Candidate
	e.bus.Publish(model.PaymentEvent{
		EventID:           uuid.NewString(),
		Kind:              model.EventManualReviewRequired,
		PaymentID:         result.PaymentID,
		Amount:            candidate.Amount,
		Reference:         candidate.Reference,
		CounterpartyLabel: candidate.CounterpartyLabel,
		SourceApp:         candidate.SourceApp,
		MatchConfidence:   result.MatchConfidence,
		At:                e.now(),
	})

	slog.Info("Match flagged for manual review",
		"payment_id", result.PaymentID,
		"match_confidence", result.MatchConfidence)
}

// persist appends to the audit log fire-and-forget: a failed append is
// logged and dropped, never retried, and never blocks confirmation
// delivery. The order system remains the source of truth for settlement.
func (e *Engine) persist(ctx context.Context, record model.ConfirmationRecord) {
	if e.store == nil {
		return
	}
	if err := e.store.AppendConfirmation(ctx, record); err != nil {
		slog.Error("Failed to persist confirmation record",
			"payment_id", record.PaymentID,
			"error", err)
	}
}
