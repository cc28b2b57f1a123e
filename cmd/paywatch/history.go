package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paywatch/paywatch/internal/cli"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent payment confirmations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := newStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			if err := store.Migrate(ctx); err != nil {
				return err
			}

			records, err := store.ReadRecentConfirmations(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to read confirmations: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("no confirmations recorded"))
				return nil
			}

			fmt.Fprintln(out, cli.TitleStyle.Render("Recent confirmations"))
			for _, rec := range records {
				mode := "auto"
				if rec.Manual {
					mode = "manual"
				}
				line := fmt.Sprintf("%s  %-12s %8.2f  %-6s confidence=%d",
					rec.ConfirmedAt.Format("2006-01-02 15:04:05"),
					rec.PaymentID,
					rec.Amount,
					mode,
					rec.MatchConfidence)
				if rec.SourceApp != "" {
					line += "  " + rec.SourceApp
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum records to show")

	return cmd
}
