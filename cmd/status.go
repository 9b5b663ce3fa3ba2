package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	holdingsadapter "github.com/bnema/robinhood-cli/internal/adapters/render/holdings"
	"github.com/bnema/robinhood-cli/internal/application"
)

func newStatusCmd(app *app) *cobra.Command {
	var (
		withDividends bool
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show portfolio holdings and account summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				holdings map[string]application.Holding
				profile  map[string]string
			)

			fetch := func(ctx context.Context) error {
				var err error
				if holdings, err = app.service.BuildHoldings(ctx, withDividends); err != nil {
					return err
				}
				profile, err = app.service.BuildUserProfile(ctx)
				return err
			}

			if err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching portfolio...", fetch); err != nil {
				return err
			}

			sorted := application.SortedHoldings(holdings)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Profile  map[string]string
					Holdings []application.Holding
				}{Profile: profile, Holdings: sorted})
			}

			rendered, err := app.holdingsRenderer(sorted, holdingsadapter.RenderOptions{
				Profile:       profile,
				WithDividends: withDividends,
			})
			if err != nil {
				return fmt.Errorf("render holdings: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&withDividends, "dividends", false, "Include dividend history per position")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of the rendered view")

	return cmd
}
