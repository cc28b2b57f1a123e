package model

import "time"

// ConfirmationRecord is an immutable audit entry describing a resolved
// payment. Records live in a FIFO-capped log; the order/checkout system
// remains the source of truth for whether a payment actually settled.
type ConfirmationRecord struct {
	ConfirmedAt       time.Time
	PaymentID         string
	Reference         string
	CounterpartyLabel string
	SourceApp         string
	ID                int64
	Amount            float64
	MatchConfidence   int
	Manual            bool
}

// EventKind classifies events published on the subscription bus.
type EventKind string

// Event kind constants.
const (
	EventConfirmed            EventKind = "payment.confirmed"
	EventManualReviewRequired EventKind = "payment.requires_manual_confirmation"
	EventExpired              EventKind = "payment.expired"
)

// PaymentEvent is the payload delivered to bus subscribers. EventID is
// unique per publish so consumers can deduplicate.
type PaymentEvent struct {
	At                time.Time
	EventID           string
	Kind              EventKind
	PaymentID         string
	Reference         string
	CounterpartyLabel string
	SourceApp         string
	Amount            float64
	MatchConfidence   int
	AutoConfirmed     bool
}
