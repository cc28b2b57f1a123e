package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paywatch/paywatch/internal/model"
)

const sampleScript = `
# scenario: auto-confirmation
track P1 250.00 merchant@upi Asha
sms You have received Rs. 250.00 via UPI. Txn successful.
notify Payment received Rs 100 via Google Pay
confirm P2 75
untrack P3
sleep 10ms
`

func TestParseScript(t *testing.T) {
	steps, err := ParseScript(strings.NewReader(sampleScript))
	require.NoError(t, err)
	require.Len(t, steps, 6)

	assert.Equal(t, Step{Op: OpTrack, PaymentID: "P1", Amount: 250.00, PayeeID: "merchant@upi", Label: "Asha"}, steps[0])
	assert.Equal(t, Step{Op: OpSMS, Text: "You have received Rs. 250.00 via UPI. Txn successful."}, steps[1])
	assert.Equal(t, Step{Op: OpNotify, Text: "Payment received Rs 100 via Google Pay"}, steps[2])
	assert.Equal(t, Step{Op: OpConfirm, PaymentID: "P2", Amount: 75}, steps[3])
	assert.Equal(t, Step{Op: OpUntrack, PaymentID: "P3"}, steps[4])
	assert.Equal(t, Step{Op: OpSleep, Pause: 10 * time.Millisecond}, steps[5])
}

func TestParseScript_Errors(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"unknown directive", "explode now"},
		{"track missing fields", "track P1"},
		{"track bad amount", "track P1 abc merchant@upi"},
		{"confirm bad amount", "confirm P1 xyz"},
		{"confirm missing amount", "confirm P1"},
		{"sleep bad duration", "sleep forever"},
		{"untrack missing id", "untrack"},
		{"sms missing text", "sms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript(strings.NewReader(tt.script))
			assert.Error(t, err)
		})
	}
}

func TestParseScript_ReportsLineNumber(t *testing.T) {
	script := "track P1 100 merchant@upi\n\nbogus line\n"
	_, err := ParseScript(strings.NewReader(script))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

// recordingController captures every engine call a script makes.
type recordingController struct {
	calls []string
}

func (r *recordingController) DeliverEvent(_ context.Context, rawText string, channel model.SourceChannel, _ time.Time) {
	r.calls = append(r.calls, "deliver:"+string(channel)+":"+rawText)
}

func (r *recordingController) TrackPayment(paymentID string, _ float64, _, _ string) error {
	r.calls = append(r.calls, "track:"+paymentID)
	return nil
}

func (r *recordingController) UntrackPayment(paymentID string) {
	r.calls = append(r.calls, "untrack:"+paymentID)
}

func (r *recordingController) ManualConfirm(_ context.Context, paymentID string, _ float64) bool {
	r.calls = append(r.calls, "confirm:"+paymentID)
	return true
}

func TestScriptAdapter_Execute(t *testing.T) {
	steps, err := ParseScript(strings.NewReader(sampleScript))
	require.NoError(t, err)

	ctrl := &recordingController{}
	adapter := NewScriptAdapter(steps)

	var progressed int
	adapter.OnStep = func(Step) { progressed++ }

	require.NoError(t, adapter.Execute(context.Background(), ctrl))

	assert.Equal(t, []string{
		"track:P1",
		"deliver:sms:You have received Rs. 250.00 via UPI. Txn successful.",
		"deliver:notification:Payment received Rs 100 via Google Pay",
		"confirm:P2",
		"untrack:P3",
	}, ctrl.calls)
	assert.Equal(t, len(steps), progressed)
}

func TestScriptAdapter_CancelledContext(t *testing.T) {
	steps := []Step{{Op: OpSleep, Pause: time.Minute}}
	adapter := NewScriptAdapter(steps)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := adapter.Execute(ctx, &recordingController{})
	assert.ErrorIs(t, err, context.Canceled)
}
