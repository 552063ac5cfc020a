// Command stockdash serves the Indian equity dashboard and answers one-off quote lookups.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stockdash",
		Short: "Indian equity dashboard with rule-based insights",
		Long: `stockdash shows quotes, a daily price series with 20 and 50 day moving
averages, and rule-based insights for NSE/BSE symbols. Data is synthesized
in demo mode or fetched from Alpha Vantage when an API key is configured.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newQuoteCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stockdash version %s\n", version)
		},
	}
}
