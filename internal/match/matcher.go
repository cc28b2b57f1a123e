// Package match scores parsed candidates against pending payments.
package match

import (
	"math"
	"time"

	"github.com/paywatch/paywatch/internal/model"
)

// AmountEpsilon is the maximum absolute difference for a candidate amount
// to count as the expected amount. Amount matching is a hard filter, not a
// scored signal: auto-confirming the wrong payment is the critical failure
// mode, so nothing below this bar is ever considered.
const AmountEpsilon = 0.01

// Scoring weights for candidates that survive the hard filters. The amount
// weight is a constant on every survivor; it is kept as an explicit term so
// a future tolerance-band design can grade it.
const (
	amountMatchWeight = 70

	freshBonus  = 20 // under 2 minutes
	recentBonus = 15 // under 5 minutes
	agingBonus  = 10 // under 10 minutes

	freshCutoff  = 2 * time.Minute
	recentCutoff = 5 * time.Minute
	agingCutoff  = 10 * time.Minute
)

// Matcher finds the pending payment a candidate most plausibly confirms.
type Matcher struct {
	windows       map[model.SourceChannel]time.Duration
	defaultWindow time.Duration
}

// NewMatcher creates a matcher with per-channel match windows. Channels
// without an entry fall back to defaultWindow.
func NewMatcher(windows map[model.SourceChannel]time.Duration, defaultWindow time.Duration) *Matcher {
	return &Matcher{windows: windows, defaultWindow: defaultWindow}
}

// Window returns the match window applied to the given channel.
func (m *Matcher) Window(channel model.SourceChannel) time.Duration {
	if w, ok := m.windows[channel]; ok {
		return w
	}
	return m.defaultWindow
}

// BestMatch scans the pending snapshot for the best match. Survivors of the
// amount and recency filters are scored; the highest confidence wins, ties
// broken by earliest CreatedAt (the oldest pending payment is the one most
// likely being actively awaited). Returns false when nothing survives.
//
// Two pending entries with identical amounts inside the same window are
// resolved by the age tie-break. That is a heuristic, not a guarantee; it
// can misattribute.
func (m *Matcher) BestMatch(candidate model.ParsedCandidate, pending []model.PendingPayment) (model.MatchResult, bool) {
	window := m.Window(candidate.SourceChannel)

	var (
		best  model.PendingPayment
		score int
		found bool
	)

	for _, p := range pending {
		if math.Abs(candidate.Amount-p.ExpectedAmount) >= AmountEpsilon {
			continue
		}

		age := candidate.ObservedAt.Sub(p.CreatedAt)
		if age >= window {
			continue
		}

		s := confidence(age, candidate.ContentConfidence)
		if !found || s > score || (s == score && p.CreatedAt.Before(best.CreatedAt)) {
			best = p
			score = s
			found = true
		}
	}

	if !found {
		return model.MatchResult{}, false
	}

	return model.MatchResult{
		PaymentID:       best.PaymentID,
		Candidate:       candidate,
		MatchConfidence: score,
	}, true
}

func confidence(age time.Duration, contentConfidence int) int {
	score := amountMatchWeight

	switch {
	case age < freshCutoff:
		score += freshBonus
	case age < recentCutoff:
		score += recentBonus
	case age < agingCutoff:
		score += agingBonus
	}

	score += 10 * contentConfidence / 100

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
