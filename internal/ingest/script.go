package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/paywatch/paywatch/internal/model"
)

// Controller is the engine surface a replay script drives: the ingestion
// sink plus the track/untrack/confirm operations the checkout flow would
// normally call.
type Controller interface {
	Sink
	TrackPayment(paymentID string, expectedAmount float64, payeeID, customerLabel string) error
	UntrackPayment(paymentID string)
	ManualConfirm(ctx context.Context, paymentID string, amount float64) bool
}

// StepOp enumerates replay script directives.
type StepOp string

// Script directives.
const (
	OpTrack   StepOp = "track"
	OpUntrack StepOp = "untrack"
	OpSMS     StepOp = "sms"
	OpNotify  StepOp = "notify"
	OpConfirm StepOp = "confirm"
	OpSleep   StepOp = "sleep"
)

// Step is one parsed line of a replay script.
type Step struct {
	Op        StepOp
	PaymentID string
	PayeeID   string
	Label     string
	Text      string
	Amount    float64
	Pause     time.Duration
}

// ParseScript reads a replay script: one directive per line, blank lines
// and #-comments ignored.
//
//	track <id> <amount> <payee> [customer label...]
//	untrack <id>
//	sms <raw message text>
//	notify <raw message text>
//	confirm <id> <amount>
//	sleep <duration>
func ParseScript(r io.Reader) ([]Step, error) {
	var steps []Step

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		step, err := parseStep(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		steps = append(steps, step)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return steps, nil
}

func parseStep(line string) (Step, error) {
	op, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch StepOp(op) {
	case OpTrack:
		fields := strings.Fields(rest)
		if len(fields) < 3 {
			return Step{}, fmt.Errorf("track needs <id> <amount> <payee>")
		}
		amount, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return Step{}, fmt.Errorf("invalid amount %q: %w", fields[1], err)
		}
		return Step{
			Op:        OpTrack,
			PaymentID: fields[0],
			Amount:    amount,
			PayeeID:   fields[2],
			Label:     strings.Join(fields[3:], " "),
		}, nil

	case OpUntrack:
		if rest == "" {
			return Step{}, fmt.Errorf("untrack needs <id>")
		}
		return Step{Op: OpUntrack, PaymentID: rest}, nil

	case OpSMS, OpNotify:
		if rest == "" {
			return Step{}, fmt.Errorf("%s needs message text", op)
		}
		return Step{Op: StepOp(op), Text: rest}, nil

	case OpConfirm:
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return Step{}, fmt.Errorf("confirm needs <id> <amount>")
		}
		amount, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return Step{}, fmt.Errorf("invalid amount %q: %w", fields[1], err)
		}
		return Step{Op: OpConfirm, PaymentID: fields[0], Amount: amount}, nil

	case OpSleep:
		d, err := time.ParseDuration(rest)
		if err != nil {
			return Step{}, fmt.Errorf("invalid duration %q: %w", rest, err)
		}
		return Step{Op: OpSleep, Pause: d}, nil

	default:
		return Step{}, fmt.Errorf("unknown directive %q", op)
	}
}

// ScriptAdapter replays parsed steps against a controller. OnStep, when
// set, is invoked after each executed step (the CLI hangs a progress bar
// off it).
type ScriptAdapter struct {
	Steps  []Step
	OnStep func(Step)
	now    func() time.Time
}

// NewScriptAdapter creates an adapter replaying the given steps.
func NewScriptAdapter(steps []Step) *ScriptAdapter {
	return &ScriptAdapter{Steps: steps, now: time.Now}
}

// Execute runs every step in order against the controller.
func (a *ScriptAdapter) Execute(ctx context.Context, ctrl Controller) error {
	now := a.now
	if now == nil {
		now = time.Now
	}

	for _, step := range a.Steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		switch step.Op {
		case OpTrack:
			if err := ctrl.TrackPayment(step.PaymentID, step.Amount, step.PayeeID, step.Label); err != nil {
				return fmt.Errorf("track %s: %w", step.PaymentID, err)
			}
		case OpUntrack:
			ctrl.UntrackPayment(step.PaymentID)
		case OpSMS:
			ctrl.DeliverEvent(ctx, step.Text, model.ChannelSMS, now())
		case OpNotify:
			ctrl.DeliverEvent(ctx, step.Text, model.ChannelNotification, now())
		case OpConfirm:
			ctrl.ManualConfirm(ctx, step.PaymentID, step.Amount)
		case OpSleep:
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(step.Pause):
			}
		}

		if a.OnStep != nil {
			a.OnStep(step)
		}
	}

	return nil
}
