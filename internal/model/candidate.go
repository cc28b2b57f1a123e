package model

import "time"

// ParsedCandidate is the result of parsing one raw notification or SMS
// message. It is ephemeral: produced by the parser, consumed by the
// matcher, never persisted.
type ParsedCandidate struct {
	ObservedAt        time.Time
	Reference         string
	CounterpartyLabel string
	SourceApp         string
	RawText           string
	SourceChannel     SourceChannel
	Amount            float64
	ContentConfidence int // heuristic score in [0,100], not a probability
}

// MatchResult pairs a parsed candidate with the pending payment it most
// plausibly confirms.
type MatchResult struct {
	Candidate       ParsedCandidate
	PaymentID       string
	MatchConfidence int // heuristic score in [0,100]
}
