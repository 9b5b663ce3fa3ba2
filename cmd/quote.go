package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func printJSON(cmd *cobra.Command, data any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func newQuoteCmd(app *app) *cobra.Command {
	var (
		field    string
		latest   bool
		extended bool
	)

	cmd := &cobra.Command{
		Use:   "quote SYMBOL...",
		Short: "Fetch quotes for one or more tickers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if latest {
				prices := app.service.LatestPrice(cmd.Context(), args, extended)
				for i, price := range prices {
					symbol := ""
					if i < len(args) {
						symbol = strings.ToUpper(strings.TrimSpace(args[i]))
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", symbol, price)
				}
				return nil
			}

			return printJSON(cmd, app.service.Quotes(cmd.Context(), args, field))
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "Project a single field from each quote")
	cmd.Flags().BoolVar(&latest, "latest", false, "Print only the latest trade price per symbol")
	cmd.Flags().BoolVar(&extended, "extended-hours", false, "Prefer the extended-hours price when available")

	return cmd
}

func newMarketsCmd(app *app) *cobra.Command {
	var field string

	cmd := &cobra.Command{
		Use:   "markets",
		Short: "List exchanges and market movers",
	}
	cmd.PersistentFlags().StringVar(&field, "field", "", "Project a single field from each entry")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the exchanges",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd, app.service.Markets(cmd.Context(), field))
		},
	}

	moversCmd := &cobra.Command{
		Use:   "movers [up|down]",
		Short: "Show the S&P 500 movers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}
			return printJSON(cmd, app.service.TopMoversSP500(cmd.Context(), direction, field))
		},
	}

	hoursCmd := &cobra.Command{
		Use:   "hours MIC [DATE]",
		Short: "Show session hours for an exchange",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				return printJSON(cmd, app.service.MarketHours(cmd.Context(), args[0], args[1], field))
			}
			return printJSON(cmd, app.service.MarketTodayHours(cmd.Context(), args[0], field))
		},
	}

	top100Cmd := &cobra.Command{
		Use:   "top100",
		Short: "Show the hundred most popular stocks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd, app.service.Top100(cmd.Context(), field))
		},
	}

	cmd.AddCommand(listCmd, moversCmd, hoursCmd, top100Cmd)
	return cmd
}
