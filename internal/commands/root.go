package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tickerdeck",
	Short: "Live price ticker backend",
	Long: `A small backend that polls public cryptocurrency and equity price APIs
and publishes live-updating display records to rendering clients.

Screens:
• btc        — spot price, metrics self-derived from a yearly series (30s)
• btc-detail — provider-precomputed market data (120s)
• mstr       — daily equity series from Alpha Vantage (120s)

Each record carries the price, a performance snapshot, a downsampled chart,
and loading/error flags, pushed over REST and WebSocket.`,
	Version: "1.0.0",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
