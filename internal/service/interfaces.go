// Package service defines the interfaces between the engine and its collaborators.
package service

import (
	"context"

	"github.com/paywatch/paywatch/internal/model"
)

// ConfirmationStore defines the contract for the persisted confirmation log.
// The log is an audit trail, not the system of record: appends that fail are
// logged and dropped, never retried.
type ConfirmationStore interface {
	// AppendConfirmation adds a record to the log, evicting the oldest
	// entries beyond the configured cap.
	AppendConfirmation(ctx context.Context, record model.ConfirmationRecord) error
	// ReadRecentConfirmations returns up to limit records, most recent first.
	ReadRecentConfirmations(ctx context.Context, limit int) ([]model.ConfirmationRecord, error)
	Close() error
}

// Publisher defines the contract for fan-out of payment events.
type Publisher interface {
	// Publish delivers the event to all current subscribers synchronously.
	Publish(event model.PaymentEvent)
	// Subscribe registers a callback and returns an unsubscribe handle.
	Subscribe(fn func(model.PaymentEvent)) (unsubscribe func())
}
