package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd(app *app) *cobra.Command {
	var (
		dir      string
		fileName string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export completed orders to CSV",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", ".", "Destination directory")
	cmd.PersistentFlags().StringVar(&fileName, "file", "", "File name (defaults to <kind>_orders_<date>.csv)")

	report := func(cmd *cobra.Command, path string, err error) error {
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return err
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "stocks",
			Short: "Export executed stock orders",
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, err := app.service.ExportCompletedStockOrders(cmd.Context(), dir, fileName)
				return report(cmd, path, err)
			},
		},
		&cobra.Command{
			Use:   "options",
			Short: "Export filled option orders",
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, err := app.service.ExportCompletedOptionOrders(cmd.Context(), dir, fileName)
				return report(cmd, path, err)
			},
		},
		&cobra.Command{
			Use:   "crypto",
			Short: "Export filled crypto orders",
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, err := app.service.ExportCompletedCryptoOrders(cmd.Context(), dir, fileName)
				return report(cmd, path, err)
			},
		},
	)

	return cmd
}
