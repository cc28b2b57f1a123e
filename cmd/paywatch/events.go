package main

import (
	"fmt"
	"io"

	"github.com/paywatch/paywatch/internal/cli"
	"github.com/paywatch/paywatch/internal/model"
)

// printEvent renders one bus event for the terminal.
func printEvent(w io.Writer, event model.PaymentEvent) {
	switch event.Kind {
	case model.EventConfirmed:
		mode := "auto"
		if !event.AutoConfirmed {
			mode = "manual"
		}
		line := fmt.Sprintf("✓ %s confirmed (%s) amount=%.2f confidence=%d",
			event.PaymentID, mode, event.Amount, event.MatchConfidence)
		if event.SourceApp != "" {
			line += " via " + event.SourceApp
		}
		if event.CounterpartyLabel != "" {
			line += " from " + event.CounterpartyLabel
		}
		fmt.Fprintln(w, cli.SuccessStyle.Render(line))

	case model.EventManualReviewRequired:
		fmt.Fprintln(w, cli.WarningStyle.Render(fmt.Sprintf(
			"? %s needs manual review: amount=%.2f confidence=%d",
			event.PaymentID, event.Amount, event.MatchConfidence)))

	case model.EventExpired:
		fmt.Fprintln(w, cli.SubtleStyle.Render(fmt.Sprintf(
			"✗ %s expired unconfirmed (expected %.2f)",
			event.PaymentID, event.Amount)))
	}
}
