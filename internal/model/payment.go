// Package model defines the core domain types used throughout the engine.
package model

import "time"

// PaymentStatus indicates where a tracked payment is in its lifecycle.
type PaymentStatus string

// Payment status constants.
const (
	StatusPending   PaymentStatus = "PENDING"
	StatusConfirmed PaymentStatus = "CONFIRMED"
	StatusExpired   PaymentStatus = "EXPIRED"
)

// SourceChannel identifies where a raw payment message came from.
type SourceChannel string

// Source channel constants.
const (
	ChannelNotification SourceChannel = "notification"
	ChannelSMS          SourceChannel = "sms"
)

// PendingPayment represents a payment the merchant is currently waiting
// to receive confirmation for. Entries are owned by the registry: created
// by Track, removed on confirmation or expiry.
type PendingPayment struct {
	CreatedAt      time.Time
	PaymentID      string
	PayeeID        string
	CustomerLabel  string
	Status         PaymentStatus
	ExpectedAmount float64
}

// Age returns how long the payment has been tracked as of now.
func (p PendingPayment) Age(now time.Time) time.Duration {
	return now.Sub(p.CreatedAt)
}
