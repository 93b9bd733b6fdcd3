package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "daybot",
	Short: "A risk-gated automated trading bot for Alpaca",
	Long: `Daybot runs a periodic decision loop against an Alpaca brokerage account.

Every cycle it:
  - Closes positions that breached the stop-loss or take-profit thresholds
  - Checks the daily circuit breakers (loss limits, profit goal, spend budget)
  - Scans the symbol universe for entry signals and sizes new orders

Credentials come from the standard APCA_API_KEY_ID and APCA_API_SECRET_KEY
environment variables (a .env file in the working directory is honored).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
