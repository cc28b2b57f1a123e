package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/paywatch/paywatch/internal/cli"
	"github.com/paywatch/paywatch/internal/model"
	"github.com/paywatch/paywatch/internal/parse"
)

func parseCmd() *cobra.Command {
	var channel string

	cmd := &cobra.Command{
		Use:   "parse <message text>",
		Short: "Run the content parser on one message and print the candidate",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := parse.NewParser(parse.DefaultConfig())
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			candidate := parser.Parse(text, model.SourceChannel(channel), time.Now())

			out := cmd.OutOrStdout()
			if candidate == nil {
				fmt.Fprintln(out, cli.SubtleStyle.Render("no payment signal"))
				return nil
			}

			fmt.Fprintln(out, cli.TitleStyle.Render("Parsed candidate"))
			fmt.Fprintf(out, "  amount:       %.2f\n", candidate.Amount)
			fmt.Fprintf(out, "  confidence:   %d\n", candidate.ContentConfidence)
			if candidate.Reference != "" {
				fmt.Fprintf(out, "  reference:    %s\n", candidate.Reference)
			}
			if candidate.CounterpartyLabel != "" {
				fmt.Fprintf(out, "  counterparty: %s\n", candidate.CounterpartyLabel)
			}
			if candidate.SourceApp != "" {
				fmt.Fprintf(out, "  source app:   %s\n", candidate.SourceApp)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "notification", "source channel to attribute (notification, sms)")

	return cmd
}
