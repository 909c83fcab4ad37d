package commands

import (
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	provider   string
}

// NewRootCommand builds the niveshak command tree.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "niveshak",
		Short: "Watchlist technical signal scanner",
		Long: `Niveshak scans watchlists of exchange-listed stocks, computes RSI, ADX,
EMA, Bollinger Bands and Stochastic indicators over recent daily history and
classifies each symbol into a composite trade signal.

Examples:
  niveshak lists                      # show configured watchlists
  niveshak scan nifty-banks           # scan one watchlist
  niveshak scan auto --provider yahoo # use Yahoo Finance for this run
  niveshak serve                      # Telegram bot, cron reports and HTTP API`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (default $CONFIG_PATH or configs/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flags.logLevel, "log-level", "l", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&flags.provider, "provider", "p", "", "data provider (nse, yahoo, mock)")

	rootCmd.AddCommand(newScanCommand(flags), newListsCommand(flags), newServeCommand(flags))
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}
