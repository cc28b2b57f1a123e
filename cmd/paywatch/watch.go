package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/paywatch/paywatch/internal/engine"
	"github.com/paywatch/paywatch/internal/ingest"
	"github.com/paywatch/paywatch/internal/model"
)

func watchCmd() *cobra.Command {
	var (
		channel     string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the engine against messages read from stdin",
		Long: `Runs a live engine fed one raw message per line from stdin. Use replay
for scripted scenarios that also track and untrack payments.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ch := model.SourceChannel(channel)
			if ch != model.ChannelNotification && ch != model.ChannelSMS {
				return fmt.Errorf("invalid channel %q (want notification or sms)", channel)
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

			unsubscribe := eng.Subscribe(func(event model.PaymentEvent) {
				printEvent(cmd.OutOrStdout(), event)
			})
			defer unsubscribe()

			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", eng.Metrics().Handler())
				server := &http.Server{
					Addr:              metricsAddr,
					Handler:           mux,
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					slog.Info("Serving metrics", "addr", metricsAddr)
					if serveErr := server.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
						slog.Error("Metrics server failed", "error", serveErr)
					}
				}()
				defer func() { _ = server.Close() }()
			}

			go eng.RunSweeper(ctx)

			adapter := ingest.NewReaderAdapter(os.Stdin, ch)
			return adapter.Run(ctx, eng)
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "notification", "source channel for stdin messages (notification, sms)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9190)")

	return cmd
}
