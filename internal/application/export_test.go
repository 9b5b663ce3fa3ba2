package application

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVPathDefaultsAndExtension(t *testing.T) {
	t.Parallel()

	assert.True(t, strings.HasSuffix(csvPath("/tmp", "", "stock"), ".csv"))
	assert.True(t, strings.HasPrefix(filepath.Base(csvPath("/tmp", "", "stock")), "stock_orders_"))
	assert.Equal(t, filepath.Join("/tmp", "trades.csv"), csvPath("/tmp", "trades", "stock"))
	assert.Equal(t, filepath.Join("/tmp", "trades.csv"), csvPath("/tmp", "trades.txt", "stock"))
	assert.Equal(t, filepath.Join("/tmp", "trades.csv"), csvPath("/tmp", "trades.csv", "stock"))
}

func TestExportCompletedStockOrdersWritesFilledAndPartialRows(t *testing.T) {
	t.Parallel()

	service, _ := loggedInService(func(r *http.Request) (*http.Response, error) {
		switch r.URL.Path {
		case "/orders/":
			return jsonResponse(http.StatusOK, map[string]any{
				"results": []any{
					map[string]any{
						"state":               "filled",
						"cancel":              nil,
						"instrument":          "https://api.robinhood.com/instruments/instrument-1/",
						"last_transaction_at": "2026-08-01T14:30:00Z",
						"type":                "market",
						"side":                "buy",
						"fees":                "0.00",
						"quantity":            "10.00000000",
						"average_price":       "150.25000000",
					},
					map[string]any{
						"state":      "cancelled",
						"instrument": "https://api.robinhood.com/instruments/instrument-1/",
						"type":       "limit",
						"side":       "sell",
						"fees":       "0.02",
						"executions": []any{
							map[string]any{
								"timestamp": "2026-08-02T10:00:00Z",
								"quantity":  "3.00000000",
								"price":     "151.00000000",
							},
						},
					},
					map[string]any{
						"state": "queued",
					},
				},
			}), nil
		case "/instruments/instrument-1/":
			return jsonResponse(http.StatusOK, map[string]any{"symbol": "AAPL"}), nil
		default:
			t.Fatalf("unexpected request to %s", r.URL.Path)
			return nil, nil
		}
	})

	dir := t.TempDir()
	path, err := service.ExportCompletedStockOrders(context.Background(), dir, "trades")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "trades.csv"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "symbol,date,order_type,side,fees,quantity,average_price", lines[0])
	assert.Equal(t, "AAPL,2026-08-01T14:30:00Z,market,buy,0.00,10.00000000,150.25000000", lines[1])
	assert.Equal(t, "AAPL,2026-08-02T10:00:00Z,limit,sell,0.02,3.00000000,151.00000000", lines[2])
}

func TestExportCompletedCryptoOrdersResolvesPairSymbol(t *testing.T) {
	t.Parallel()

	service, _ := loggedInService(func(r *http.Request) (*http.Response, error) {
		switch r.URL.Path {
		case "/orders/":
			return jsonResponse(http.StatusOK, map[string]any{
				"results": []any{
					map[string]any{
						"state":               "filled",
						"cancel_url":          nil,
						"currency_pair_id":    "pair-1",
						"last_transaction_at": "2026-08-03T09:00:00Z",
						"type":                "market",
						"side":                "buy",
						"fees":                "0.00",
						"quantity":            "0.50000000",
						"average_price":       "40000.00000000",
					},
				},
			}), nil
		case "/marketdata/forex/quotes/pair-1/":
			return jsonResponse(http.StatusOK, map[string]any{"symbol": "BTCUSD"}), nil
		default:
			t.Fatalf("unexpected request to %s", r.URL.Path)
			return nil, nil
		}
	})

	dir := t.TempDir()
	path, err := service.ExportCompletedCryptoOrders(context.Background(), dir, "")
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "BTCUSD")
	assert.Contains(t, lines[1], "40000.00000000")
}

func TestExportCompletedOptionOrdersWritesOneRowPerLeg(t *testing.T) {
	t.Parallel()

	service, _ := loggedInService(func(r *http.Request) (*http.Response, error) {
		switch r.URL.Path {
		case "/options/orders/":
			return jsonResponse(http.StatusOK, map[string]any{
				"results": []any{
					map[string]any{
						"state":              "filled",
						"chain_symbol":       "AAPL",
						"created_at":         "2026-08-04T15:00:00Z",
						"direction":          "debit",
						"quantity":           "1.00000000",
						"type":               "limit",
						"opening_strategy":   "long_call",
						"closing_strategy":   nil,
						"price":              "2.50000000",
						"processed_quantity": "1.00000000",
						"legs": []any{
							map[string]any{
								"side":   "buy",
								"option": "https://api.robinhood.com/options/instruments/option-1/",
							},
							map[string]any{
								"side":   "sell",
								"option": "https://api.robinhood.com/options/instruments/option-2/",
							},
						},
					},
				},
			}), nil
		case "/options/instruments/option-1/", "/options/instruments/option-2/":
			return jsonResponse(http.StatusOK, map[string]any{
				"expiration_date": "2026-09-18",
				"strike_price":    "160.00000000",
				"type":            "call",
			}), nil
		default:
			t.Fatalf("unexpected request to %s", r.URL.Path)
			return nil, nil
		}
	})

	dir := t.TempDir()
	path, err := service.ExportCompletedOptionOrders(context.Background(), dir, "")
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "chain_symbol,expiration_date,strike_price,option_type,side,order_created_at,direction,order_quantity,order_type,opening_strategy,closing_strategy,price,processed_quantity", lines[0])
	assert.Contains(t, lines[1], "AAPL,2026-09-18,160.00000000,call,buy")
	assert.Contains(t, lines[2], "AAPL,2026-09-18,160.00000000,call,sell")
}

func TestExportRequiresLogin(t *testing.T) {
	t.Parallel()

	service, _ := newTestService(func(r *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected request to %s", r.URL.Path)
		return nil, nil
	})

	_, err := service.ExportCompletedStockOrders(context.Background(), t.TempDir(), "")
	assert.Error(t, err)
}
