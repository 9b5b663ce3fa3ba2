package application

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/robinhood-cli/internal/adapters/transport"
	"github.com/bnema/robinhood-cli/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, payload any) *http.Response {
	body, _ := json.Marshal(payload)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

func newTestService(rt roundTripFunc) (*Service, *bytes.Buffer) {
	session := transport.NewSession()
	sink := transport.NewSink()
	output := &bytes.Buffer{}
	sink.Set(output)

	pipeline := transport.NewPipeline(session, &http.Client{Transport: rt}, sink)
	return NewService(pipeline), output
}

func loggedInService(rt roundTripFunc) (*Service, *bytes.Buffer) {
	service, output := newTestService(rt)
	service.Pipeline().Session().SetLoggedIn(true)
	return service, output
}

func TestAccountOperationsRequireLogin(t *testing.T) {
	t.Parallel()

	service, _ := newTestService(func(r *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected request to %s", r.URL.Path)
		return nil, nil
	})
	ctx := context.Background()

	_, err := service.AllPositions(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)

	_, err = service.AllStockOrders(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)

	_, err = service.AccountProfile(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)

	_, err = service.PlaceOrder(ctx, OrderRequest{Symbol: "AAPL", Quantity: 1, Side: "buy"})
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestIDForStockMemoizesLookups(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	service, _ := newTestService(func(r *http.Request) (*http.Response, error) {
		calls.Add(1)
		require.Equal(t, "/instruments/", r.URL.Path)
		require.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		return jsonResponse(http.StatusOK, map[string]any{
			"results": []any{map[string]any{"id": "instrument-1"}},
		}), nil
	})
	ctx := context.Background()

	assert.Equal(t, "instrument-1", service.IDForStock(ctx, "aapl"))
	assert.Equal(t, "instrument-1", service.IDForStock(ctx, " AAPL "))
	assert.EqualValues(t, 1, calls.Load())

	service.Reset()
	assert.Equal(t, "instrument-1", service.IDForStock(ctx, "AAPL"))
	assert.EqualValues(t, 2, calls.Load())
}

func TestLatestPricePrefersExtendedHoursWhenRequested(t *testing.T) {
	t.Parallel()

	service, _ := newTestService(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, map[string]any{
			"results": []any{
				map[string]any{
					"last_trade_price":                "150.00",
					"last_extended_hours_trade_price": "151.50",
				},
				map[string]any{
					"last_trade_price":                "50.00",
					"last_extended_hours_trade_price": nil,
				},
			},
		}), nil
	})
	ctx := context.Background()

	extended := service.LatestPrice(ctx, []string{"AAPL", "MSFT"}, true)
	assert.Equal(t, []string{"151.50", "50.00"}, extended)

	regular := service.LatestPrice(ctx, []string{"AAPL", "MSFT"}, false)
	assert.Equal(t, []string{"150.00", "50.00"}, regular)
}

func TestInstrumentsBySymbolsWarnsOnInvalidTicker(t *testing.T) {
	t.Parallel()

	service, output := newTestService(func(r *http.Request) (*http.Response, error) {
		if r.URL.Query().Get("symbol") == "AAPL" {
			return jsonResponse(http.StatusOK, map[string]any{
				"results": []any{map[string]any{"id": "instrument-1", "symbol": "AAPL"}},
			}), nil
		}
		return jsonResponse(http.StatusOK, map[string]any{"results": []any{}}), nil
	})

	data := service.InstrumentsBySymbols(context.Background(), []string{"AAPL", "FAKE"}, "symbol")

	assert.Equal(t, []any{"AAPL"}, data)
	assert.Contains(t, output.String(), `"FAKE" is not a valid stock ticker. It is being ignored.`)
}

func TestTopMoversSP500RejectsInvalidDirectionWithoutRequest(t *testing.T) {
	t.Parallel()

	service, output := newTestService(func(r *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected request to %s", r.URL.Path)
		return nil, nil
	})

	data := service.TopMoversSP500(context.Background(), "sideways", "")

	assert.Equal(t, []any{}, data)
	assert.Contains(t, output.String(), `direction must be "up" or "down"`)
}

func TestFindInstrumentDataLogsWhenNothingMatches(t *testing.T) {
	t.Parallel()

	service, output := newTestService(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, map[string]any{"results": []any{}}), nil
	})

	results := service.FindInstrumentData(context.Background(), "no-such-company")

	assert.Empty(t, results)
	assert.Contains(t, output.String(), "No results found for that keyword.")
}

func TestHistoricalsFlattensPerSymbolCandles(t *testing.T) {
	t.Parallel()

	service, _ := newTestService(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, map[string]any{
			"results": []any{
				map[string]any{
					"symbol": "AAPL",
					"historicals": []any{
						map[string]any{"close_price": "150.00"},
						map[string]any{"close_price": "151.00"},
					},
				},
				map[string]any{
					"symbol": "MSFT",
					"historicals": []any{
						map[string]any{"close_price": "300.00"},
					},
				},
			},
		}), nil
	})

	data := service.Historicals(context.Background(), []string{"AAPL", "MSFT"}, "day", "week", "regular", "")

	candles, ok := data.([]any)
	require.True(t, ok)
	require.Len(t, candles, 3)
	assert.Equal(t, "AAPL", candles[0].(map[string]any)["symbol"])
	assert.Equal(t, "MSFT", candles[2].(map[string]any)["symbol"])
}

func TestTotalDividendsSumsPaidAndReinvested(t *testing.T) {
	t.Parallel()

	service, _ := loggedInService(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, map[string]any{
			"results": []any{
				map[string]any{"state": "paid", "amount": "1.50"},
				map[string]any{"state": "reinvested", "amount": "2.25"},
				map[string]any{"state": "pending", "amount": "99.00"},
			},
		}), nil
	})

	total, err := service.TotalDividends(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 3.75, total, 1e-9)
}

func TestPlaceOrderDerivesTypeFromPrices(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	service, _ := loggedInService(func(r *http.Request) (*http.Response, error) {
		switch r.URL.Path {
		case "/instruments/":
			return jsonResponse(http.StatusOK, map[string]any{
				"results": []any{map[string]any{"id": "instrument-1", "url": "https://api.robinhood.com/instruments/instrument-1/"}},
			}), nil
		case "/accounts/":
			return jsonResponse(http.StatusOK, map[string]any{
				"results": []any{map[string]any{"url": "https://api.robinhood.com/accounts/ACC1/"}},
			}), nil
		case "/orders/":
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			return jsonResponse(http.StatusCreated, map[string]any{"id": "order-1", "state": "queued"}), nil
		default:
			t.Fatalf("unexpected request to %s", r.URL.Path)
			return nil, nil
		}
	})

	data, err := service.PlaceOrder(context.Background(), OrderRequest{
		Symbol:     "aapl",
		Quantity:   2,
		Side:       "buy",
		LimitPrice: 123.456,
	})
	require.NoError(t, err)
	require.NotNil(t, data)

	assert.Equal(t, "limit", captured["type"])
	assert.Equal(t, "immediate", captured["trigger"])
	assert.Equal(t, "123.46", captured["price"])
	assert.Equal(t, "2", captured["quantity"])
	assert.Equal(t, "AAPL", captured["symbol"])
	assert.Equal(t, "gtc", captured["time_in_force"])
	assert.NotEmpty(t, captured["ref_id"])
	assert.NotContains(t, captured, "stop_price")
}

func TestCancelAllStockOrdersPostsEachCancelURL(t *testing.T) {
	t.Parallel()

	var cancelled []string
	service, _ := loggedInService(func(r *http.Request) (*http.Response, error) {
		switch {
		case r.URL.Path == "/orders/" && r.Method == http.MethodGet:
			return jsonResponse(http.StatusOK, map[string]any{
				"results": []any{
					map[string]any{"id": "1", "cancel_url": "https://api.robinhood.com/orders/1/cancel/"},
					map[string]any{"id": "2", "cancel_url": nil},
					map[string]any{"id": "3", "cancel_url": "https://api.robinhood.com/orders/3/cancel/"},
				},
			}), nil
		case r.Method == http.MethodPost:
			cancelled = append(cancelled, r.URL.Path)
			return jsonResponse(http.StatusOK, map[string]any{}), nil
		default:
			t.Fatalf("unexpected request to %s", r.URL.Path)
			return nil, nil
		}
	})

	open, err := service.CancelAllStockOrders(context.Background())
	require.NoError(t, err)

	assert.Len(t, open, 2)
	assert.Equal(t, []string{"/orders/1/cancel/", "/orders/3/cancel/"}, cancelled)
}

func TestFindStockOrdersMatchesBySymbolWithoutMutatingCriteria(t *testing.T) {
	t.Parallel()

	instrumentURL := "https://api.robinhood.com/instruments/450dfc6d/"
	service, _ := loggedInService(func(r *http.Request) (*http.Response, error) {
		switch r.URL.Path {
		case "/orders/":
			return jsonResponse(http.StatusOK, map[string]any{
				"next": nil,
				"results": []any{
					map[string]any{"id": "1", "instrument": instrumentURL, "state": "filled"},
					map[string]any{"id": "2", "instrument": "https://api.robinhood.com/instruments/other/", "state": "filled"},
				},
			}), nil
		case "/instruments/":
			return jsonResponse(http.StatusOK, map[string]any{
				"results": []any{map[string]any{"url": instrumentURL, "symbol": "AAPL"}},
			}), nil
		default:
			t.Fatalf("unexpected request to %s", r.URL.Path)
			return nil, nil
		}
	})

	criteria := map[string]string{"symbol": "AAPL"}
	matched, err := service.FindStockOrders(context.Background(), criteria)
	require.NoError(t, err)

	require.Len(t, matched, 1)
	order, ok := matched[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1", order["id"])

	// The argument stays caller-owned.
	assert.Equal(t, map[string]string{"symbol": "AAPL"}, criteria)
}
