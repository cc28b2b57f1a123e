// Package registry owns the set of pending payments awaiting confirmation.
package registry

import (
	"sync"
	"time"

	"github.com/paywatch/paywatch/internal/common"
	"github.com/paywatch/paywatch/internal/model"
)

// Registry is the single owner of pending payment state. Reads hand out
// copies; writers hold the lock, so matcher and sweeper scans never observe
// a half-mutated entry.
type Registry struct {
	payments map[string]model.PendingPayment
	now      func() time.Time
	mu       sync.RWMutex
}

// New creates an empty registry.
func New() *Registry {
	return NewWithClock(time.Now)
}

// NewWithClock creates a registry using the given clock. Tests use this to
// control entry ages deterministically.
func NewWithClock(now func() time.Time) *Registry {
	return &Registry{
		payments: make(map[string]model.PendingPayment),
		now:      now,
	}
}

// Track upserts a pending payment. Repeated calls with the same id are
// idempotent with respect to Count; the entry itself is last-write-wins
// and gets a fresh CreatedAt.
func (r *Registry) Track(paymentID string, expectedAmount float64, payeeID, customerLabel string) error {
	if paymentID == "" {
		return common.NewUserError("cannot track payment", common.ErrEmptyPaymentID)
	}
	if expectedAmount <= 0 {
		return common.NewUserError("cannot track payment", common.ErrInvalidAmount)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.payments[paymentID] = model.PendingPayment{
		PaymentID:      paymentID,
		ExpectedAmount: expectedAmount,
		PayeeID:        payeeID,
		CustomerLabel:  customerLabel,
		CreatedAt:      r.now(),
		Status:         model.StatusPending,
	}

	return nil
}

// Untrack removes a payment. Absent ids are a no-op: the caller may race
// with a confirmation that already resolved the entry.
func (r *Registry) Untrack(paymentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.payments, paymentID)
}

// Get returns the tracked payment for the given id.
func (r *Registry) Get(paymentID string) (model.PendingPayment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[paymentID]
	return p, ok
}

// AllPending returns a snapshot copy of every tracked payment.
func (r *Registry) AllPending() []model.PendingPayment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]model.PendingPayment, 0, len(r.payments))
	for _, p := range r.payments {
		snapshot = append(snapshot, p)
	}
	return snapshot
}

// Count returns the number of tracked payments.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.payments)
}

// Remove atomically takes a payment out of the registry. The second return
// is false when the id is already gone, which callers treat as "already
// resolved" rather than an error.
func (r *Registry) Remove(paymentID string) (model.PendingPayment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[paymentID]
	if ok {
		delete(r.payments, paymentID)
	}
	return p, ok
}

// EvictStale removes every payment tracked for at least ttl and returns
// the evicted entries with Status set to Expired.
func (r *Registry) EvictStale(ttl time.Duration) []model.PendingPayment {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var evicted []model.PendingPayment
	for id, p := range r.payments {
		if now.Sub(p.CreatedAt) >= ttl {
			p.Status = model.StatusExpired
			evicted = append(evicted, p)
			delete(r.payments, id)
		}
	}
	return evicted
}
