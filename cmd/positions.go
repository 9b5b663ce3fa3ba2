package cmd

import (
	"github.com/spf13/cobra"
)

func newPositionsCmd(app *app) *cobra.Command {
	var (
		field  string
		all    bool
		crypto bool
	)

	cmd := &cobra.Command{
		Use:   "positions",
		Short: "List positions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if crypto {
				data, err := app.service.CryptoPositions(cmd.Context(), field)
				if err != nil {
					return err
				}
				return printJSON(cmd, data)
			}

			if all {
				data, err := app.service.AllPositions(cmd.Context(), field)
				if err != nil {
					return err
				}
				return printJSON(cmd, data)
			}

			data, err := app.service.OpenStockPositions(cmd.Context(), field)
			if err != nil {
				return err
			}
			return printJSON(cmd, data)
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "Project a single field from each position")
	cmd.Flags().BoolVar(&all, "all", false, "Include closed positions")
	cmd.Flags().BoolVar(&crypto, "crypto", false, "List crypto holdings instead of stocks")

	return cmd
}
