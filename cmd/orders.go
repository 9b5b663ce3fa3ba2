package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/robinhood-cli/internal/application"
)

func newOrdersCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List, place, and cancel orders",
	}

	cmd.AddCommand(
		newOrdersListCmd(app),
		newOrdersPlaceCmd(app),
		newOrdersCancelCmd(app),
		newOrdersCancelAllCmd(app),
	)

	return cmd
}

func newOrdersListCmd(app *app) *cobra.Command {
	var (
		kind  string
		open  bool
		field string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List order history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				data any
				err  error
			)

			switch kind {
			case "stock":
				if open {
					data, err = app.service.OpenStockOrders(cmd.Context(), field)
				} else {
					data, err = app.service.AllStockOrders(cmd.Context(), field)
				}
			case "option":
				if open {
					data, err = app.service.OpenOptionOrders(cmd.Context(), field)
				} else {
					data, err = app.service.AllOptionOrders(cmd.Context(), field)
				}
			case "crypto":
				if open {
					data, err = app.service.OpenCryptoOrders(cmd.Context(), field)
				} else {
					data, err = app.service.AllCryptoOrders(cmd.Context(), field)
				}
			default:
				return fmt.Errorf("unknown order kind %q (expected stock, option, or crypto)", kind)
			}
			if err != nil {
				return err
			}

			return printJSON(cmd, data)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "stock", "Order kind: stock, option, or crypto")
	cmd.Flags().BoolVar(&open, "open", false, "Only orders that can still be cancelled")
	cmd.Flags().StringVar(&field, "field", "", "Project a single field from each order")

	return cmd
}

func newOrdersPlaceCmd(app *app) *cobra.Command {
	var req application.OrderRequest

	cmd := &cobra.Command{
		Use:   "place SYMBOL",
		Short: "Place a stock order",
		Long:  "place submits a stock order. With no price flags the order is a market order; --limit makes it a limit order, --stop adds a stop trigger, and both together make a stop-limit order.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Symbol = args[0]

			data, err := app.service.PlaceOrder(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd, data)
		},
	}

	cmd.Flags().Float64Var(&req.Quantity, "quantity", 0, "Number of shares")
	cmd.Flags().StringVar(&req.Side, "side", "buy", "Order side: buy or sell")
	cmd.Flags().Float64Var(&req.LimitPrice, "limit", 0, "Limit price")
	cmd.Flags().Float64Var(&req.StopPrice, "stop", 0, "Stop trigger price")
	cmd.Flags().StringVar(&req.TimeInForce, "time-in-force", "", "gtc or gfd (default gtc)")
	cmd.Flags().BoolVar(&req.ExtendedHours, "extended-hours", false, "Allow execution outside regular hours")
	_ = cmd.MarkFlagRequired("quantity")

	return cmd
}

func newOrdersCancelCmd(app *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "cancel ORDER_ID",
		Short: "Cancel one open order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data any
				err  error
			)

			switch kind {
			case "stock":
				data, err = app.service.CancelStockOrder(cmd.Context(), args[0])
			case "option":
				data, err = app.service.CancelOptionOrder(cmd.Context(), args[0])
			case "crypto":
				data, err = app.service.CancelCryptoOrder(cmd.Context(), args[0])
			default:
				return fmt.Errorf("unknown order kind %q (expected stock, option, or crypto)", kind)
			}
			if err != nil {
				return err
			}

			return printJSON(cmd, data)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "stock", "Order kind: stock, option, or crypto")

	return cmd
}

func newOrdersCancelAllCmd(app *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "cancel-all",
		Short: "Cancel every open order of a kind",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				cancelled []any
				err       error
			)

			switch kind {
			case "stock":
				cancelled, err = app.service.CancelAllStockOrders(cmd.Context())
			case "option":
				cancelled, err = app.service.CancelAllOptionOrders(cmd.Context())
			case "crypto":
				cancelled, err = app.service.CancelAllCryptoOrders(cmd.Context())
			default:
				return fmt.Errorf("unknown order kind %q (expected stock, option, or crypto)", kind)
			}
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %d open orders.\n", len(cancelled))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "stock", "Order kind: stock, option, or crypto")

	return cmd
}
