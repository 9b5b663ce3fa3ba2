package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rh",
		Short:         "Robinhood CLI (rh): trade, track positions, and pull market data",
		Long:          "rh is a terminal client for the Robinhood brokerage API: log in (with MFA and device challenges), inspect holdings and orders, pull quotes and market data, place and cancel trades, and export order history to CSV.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newLogoutCmd(app),
		newStatusCmd(app),
		newQuoteCmd(app),
		newPositionsCmd(app),
		newOrdersCmd(app),
		newMarketsCmd(app),
		newExportCmd(app),
		newSessionCmd(app),
	)

	return rootCmd
}
