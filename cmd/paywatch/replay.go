package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/paywatch/paywatch/internal/cli"
	"github.com/paywatch/paywatch/internal/engine"
	"github.com/paywatch/paywatch/internal/ingest"
	"github.com/paywatch/paywatch/internal/model"
)

func replayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <script>",
		Short: "Replay a scripted payment scenario through a fresh engine",
		Long: `Replays a scenario script against a fresh engine instance. Scripts mix
checkout-side directives (track, untrack, confirm) with incoming
messages (sms, notify) and pauses (sleep), one per line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open script: %w", err)
			}
			defer func() { _ = f.Close() }()

			steps, err := ingest.ParseScript(f)
			if err != nil {
				return fmt.Errorf("failed to parse script: %w", err)
			}
			if len(steps) == 0 {
				return fmt.Errorf("script contains no steps")
			}

			store, err := newStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			if err := store.Migrate(ctx); err != nil {
				return err
			}

			eng, err := engine.NewWithConfig(store, engineConfig())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			unsubscribe := eng.Subscribe(func(event model.PaymentEvent) {
				printEvent(out, event)
			})
			defer unsubscribe()

			fmt.Fprintln(out, cli.TitleStyle.Render(fmt.Sprintf("Replaying %s (%d steps)", args[0], len(steps))))

			bar := progressbar.Default(int64(len(steps)), "replaying")
			adapter := ingest.NewScriptAdapter(steps)
			adapter.OnStep = func(ingest.Step) { _ = bar.Add(1) }

			if err := adapter.Execute(ctx, eng); err != nil {
				return fmt.Errorf("replay failed: %w", err)
			}
			_ = bar.Finish()

			fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("%d payment(s) still pending", eng.PendingCount())))
			return nil
		},
	}
}
