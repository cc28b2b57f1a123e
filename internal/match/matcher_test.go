package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paywatch/paywatch/internal/model"
)

var t0 = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func newTestMatcher() *Matcher {
	return NewMatcher(map[model.SourceChannel]time.Duration{
		model.ChannelNotification: 10 * time.Minute,
		model.ChannelSMS:          5 * time.Minute,
	}, 10*time.Minute)
}

func pending(id string, amount float64, createdAt time.Time) model.PendingPayment {
	return model.PendingPayment{
		PaymentID:      id,
		ExpectedAmount: amount,
		PayeeID:        "merchant@upi",
		CreatedAt:      createdAt,
		Status:         model.StatusPending,
	}
}

func candidate(amount float64, channel model.SourceChannel, observedAt time.Time, contentConfidence int) model.ParsedCandidate {
	return model.ParsedCandidate{
		Amount:            amount,
		SourceChannel:     channel,
		ObservedAt:        observedAt,
		ContentConfidence: contentConfidence,
	}
}

func TestBestMatch_AmountFilter(t *testing.T) {
	m := newTestMatcher()

	tests := []struct {
		name      string
		candAmt   float64
		expected  float64
		wantMatch bool
	}{
		{"exact", 250.00, 250.00, true},
		{"within epsilon", 250.005, 250.00, true},
		{"one rupee off", 499, 500, false},
		{"exactly epsilon off", 250.01, 250.00, false},
		{"one paisa over epsilon", 250.02, 250.00, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := candidate(tt.candAmt, model.ChannelNotification, t0.Add(time.Minute), 50)
			_, ok := m.BestMatch(cand, []model.PendingPayment{pending("P1", tt.expected, t0)})
			assert.Equal(t, tt.wantMatch, ok)
		})
	}
}

func TestBestMatch_RecencyFilter(t *testing.T) {
	m := newTestMatcher()

	tests := []struct {
		name      string
		channel   model.SourceChannel
		age       time.Duration
		wantMatch bool
	}{
		{"notification inside window", model.ChannelNotification, 9 * time.Minute, true},
		{"notification at window", model.ChannelNotification, 10 * time.Minute, false},
		{"notification outside window", model.ChannelNotification, 12 * time.Minute, false},
		{"sms tighter window", model.ChannelSMS, 6 * time.Minute, false},
		{"sms inside window", model.ChannelSMS, 4 * time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := candidate(100, tt.channel, t0.Add(tt.age), 50)
			_, ok := m.BestMatch(cand, []model.PendingPayment{pending("P1", 100, t0)})
			assert.Equal(t, tt.wantMatch, ok)
		})
	}
}

func TestBestMatch_Confidence(t *testing.T) {
	m := newTestMatcher()

	tests := []struct {
		name    string
		age     time.Duration
		content int
		want    int
	}{
		// 70 + age bonus + content/10
		{"fresh", 1 * time.Minute, 75, 97},
		{"under five minutes", 3 * time.Minute, 50, 90},
		{"under ten minutes", 7 * time.Minute, 50, 85},
		{"fresh low content", 90 * time.Second, 0, 90},
		{"full content clamps", 1 * time.Minute, 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := candidate(100, model.ChannelNotification, t0.Add(tt.age), tt.content)
			result, ok := m.BestMatch(cand, []model.PendingPayment{pending("P1", 100, t0)})
			require.True(t, ok)
			assert.Equal(t, tt.want, result.MatchConfidence)
			assert.Equal(t, "P1", result.PaymentID)
			assert.GreaterOrEqual(t, result.MatchConfidence, 0)
			assert.LessOrEqual(t, result.MatchConfidence, 100)
		})
	}
}

func TestBestMatch_TieBreakOldestWins(t *testing.T) {
	m := newTestMatcher()

	// Two pending payments for the same amount; the older one is matched.
	entries := []model.PendingPayment{
		pending("P5", 300, t0.Add(5*time.Second)),
		pending("P4", 300, t0),
	}

	cand := candidate(300, model.ChannelNotification, t0.Add(10*time.Second), 60)
	result, ok := m.BestMatch(cand, entries)

	require.True(t, ok)
	assert.Equal(t, "P4", result.PaymentID)
}

func TestBestMatch_PrefersFresherEntryOnHigherScore(t *testing.T) {
	m := newTestMatcher()

	// P1 is 7 minutes old (+10), P2 is 1 minute old (+20): P2 scores higher
	// and wins despite P1 being older.
	entries := []model.PendingPayment{
		pending("P1", 100, t0.Add(-7*time.Minute)),
		pending("P2", 100, t0.Add(-time.Minute)),
	}

	result, ok := m.BestMatch(candidate(100, model.ChannelNotification, t0, 50), entries)

	require.True(t, ok)
	assert.Equal(t, "P2", result.PaymentID)
}

func TestBestMatch_EmptyRegistry(t *testing.T) {
	m := newTestMatcher()

	_, ok := m.BestMatch(candidate(100, model.ChannelNotification, t0, 50), nil)
	assert.False(t, ok)
}

func TestWindow_DefaultFallback(t *testing.T) {
	m := NewMatcher(nil, 10*time.Minute)
	assert.Equal(t, 10*time.Minute, m.Window(model.ChannelSMS))
}
