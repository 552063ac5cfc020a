package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"stock-dashboard/config"
	"stock-dashboard/observability"
)

func newQuoteCmd() *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "quote <symbol>",
		Short: "Print the dashboard for one symbol as JSON",
		Example: `  stockdash quote RELIANCE
  stockdash quote tcs --compact`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			// stdout carries the JSON document
			observability.SetupLogger(observability.LogOptions{
				JSON:   cfg.Log.Format == "json",
				Level:  slog.LevelError,
				Output: cmd.ErrOrStderr(),
			})

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTP.RequestTimeout)
			defer cancel()

			dash, err := newApp(cfg).Lookup(ctx, args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(dash)
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "Print JSON on a single line")
	return cmd
}
