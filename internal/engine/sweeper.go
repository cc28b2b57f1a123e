package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/paywatch/paywatch/internal/model"
)

// RunSweeper periodically evicts pending payments older than the stale
// threshold, bounding registry size and preventing far-future false
// matches. It blocks until ctx is cancelled.
func (e *Engine) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.sweep()
		}
	}
}

// sweep runs one eviction pass. Each evicted payment is published as an
// expiry event so the UI can stop showing it as awaited.
func (e *Engine) sweep() {
	evicted := e.registry.EvictStale(e.cfg.StaleAfter)
	if len(evicted) == 0 {
		return
	}

	e.metrics.PendingPayments.Set(float64(e.registry.Count()))

	for _, p := range evicted {
		e.metrics.PaymentsExpired.Inc()
		e.bus.Publish(model.PaymentEvent{
			EventID:   uuid.NewString(),
			Kind:      model.EventExpired,
			PaymentID: p.PaymentID,
			Amount:    p.ExpectedAmount,
			At:        e.now(),
		})

		slog.Info("Evicted stale pending payment",
			"payment_id", p.PaymentID,
			"expected_amount", p.ExpectedAmount,
			"tracked_at", p.CreatedAt)
	}
}
