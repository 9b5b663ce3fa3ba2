package application

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bnema/robinhood-cli/internal/adapters/transport"
	"github.com/bnema/robinhood-cli/internal/api"
	"github.com/bnema/robinhood-cli/internal/domain"
	"github.com/google/uuid"
)

// AllStockOrders returns every stock order ever placed.
func (s *Service) AllStockOrders(ctx context.Context, field string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, api.Orders(), transport.ShapePagination, nil)
	return s.pipeline.Filter(data, field), nil
}

// AllOptionOrders returns every option order ever placed.
func (s *Service) AllOptionOrders(ctx context.Context, field string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, api.OptionOrders(), transport.ShapePagination, nil)
	return s.pipeline.Filter(data, field), nil
}

// AllCryptoOrders returns every crypto order ever placed.
func (s *Service) AllCryptoOrders(ctx context.Context, field string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, api.CryptoOrders(), transport.ShapePagination, nil)
	return s.pipeline.Filter(data, field), nil
}

// OpenStockOrders returns stock orders that can still be cancelled.
func (s *Service) OpenStockOrders(ctx context.Context, field string) (any, error) {
	return s.openOrders(ctx, api.Orders(), field)
}

// OpenOptionOrders returns option orders that can still be cancelled.
func (s *Service) OpenOptionOrders(ctx context.Context, field string) (any, error) {
	return s.openOrders(ctx, api.OptionOrders(), field)
}

// OpenCryptoOrders returns crypto orders that can still be cancelled.
func (s *Service) OpenCryptoOrders(ctx context.Context, field string) (any, error) {
	return s.openOrders(ctx, api.CryptoOrders(), field)
}

func (s *Service) openOrders(ctx context.Context, rawURL string, field string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, rawURL, transport.ShapePagination, nil)

	open := make([]any, 0)
	for _, item := range listOf(data) {
		if stringField(item, "cancel_url") != "" || stringField(item, "cancel") != "" {
			open = append(open, item)
		}
	}
	return s.pipeline.Filter(open, field), nil
}

// StockOrderInfo returns the details of a single stock order.
func (s *Service) StockOrderInfo(ctx context.Context, orderID string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}
	return s.pipeline.Get(ctx, api.OrderByID(orderID), transport.ShapeRegular, nil), nil
}

// OptionOrderInfo returns the details of a single option order.
func (s *Service) OptionOrderInfo(ctx context.Context, orderID string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}
	return s.pipeline.Get(ctx, api.OptionOrderByID(orderID), transport.ShapeRegular, nil), nil
}

// CryptoOrderInfo returns the details of a single crypto order.
func (s *Service) CryptoOrderInfo(ctx context.Context, orderID string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}
	return s.pipeline.Get(ctx, api.CryptoOrderByID(orderID), transport.ShapeRegular, nil), nil
}

// FindStockOrders returns orders matching the given field values.
// A symbol key is translated to the matching instrument URL first.
func (s *Service) FindStockOrders(ctx context.Context, criteria map[string]string) ([]any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, api.Orders(), transport.ShapePagination, nil)
	orders := listOf(data)
	if len(criteria) == 0 {
		return orders, nil
	}

	// The symbol key is rewritten to an instrument URL on a copy so the
	// caller's map stays untouched.
	want := make(map[string]string, len(criteria))
	for key, value := range criteria {
		want[key] = value
	}

	if symbol, ok := want["symbol"]; ok {
		urls := listOf(s.InstrumentsBySymbols(ctx, []string{symbol}, "url"))
		delete(want, "symbol")
		if len(urls) > 0 {
			instrumentURL, _ := urls[0].(string)
			want["instrument"] = instrumentURL
		}
	}

	matched := make([]any, 0)
	for _, item := range orders {
		order, ok := item.(map[string]any)
		if !ok {
			continue
		}

		matches := true
		for key, value := range want {
			got := stringField(order, key)
			// Quantities compare numerically: "1.00000000" matches "1".
			if key == "quantity" || key == "cumulative_quantity" {
				if parseFloat(got) != parseFloat(value) {
					matches = false
					break
				}
				continue
			}
			if got != value {
				matches = false
				break
			}
		}
		if matches {
			matched = append(matched, item)
		}
	}

	return matched, nil
}

// CancelStockOrder cancels one stock order.
func (s *Service) CancelStockOrder(ctx context.Context, orderID string) (any, error) {
	return s.cancelOrder(ctx, api.CancelOrder(orderID), orderID)
}

// CancelOptionOrder cancels one option order.
func (s *Service) CancelOptionOrder(ctx context.Context, orderID string) (any, error) {
	return s.cancelOrder(ctx, api.CancelOptionOrder(orderID), orderID)
}

// CancelCryptoOrder cancels one crypto order.
func (s *Service) CancelCryptoOrder(ctx context.Context, orderID string) (any, error) {
	return s.cancelOrder(ctx, api.CancelCryptoOrder(orderID), orderID)
}

func (s *Service) cancelOrder(ctx context.Context, rawURL string, orderID string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Post(ctx, rawURL, nil)
	if data == nil {
		return nil, fmt.Errorf("failed to cancel order %s", orderID)
	}
	return data, nil
}

// CancelAllStockOrders cancels every open stock order and returns the
// orders that were cancelled.
func (s *Service) CancelAllStockOrders(ctx context.Context) ([]any, error) {
	return s.cancelAll(ctx, api.Orders())
}

// CancelAllOptionOrders cancels every open option order.
func (s *Service) CancelAllOptionOrders(ctx context.Context) ([]any, error) {
	return s.cancelAll(ctx, api.OptionOrders())
}

// CancelAllCryptoOrders cancels every open crypto order.
func (s *Service) CancelAllCryptoOrders(ctx context.Context) ([]any, error) {
	return s.cancelAll(ctx, api.CryptoOrders())
}

func (s *Service) cancelAll(ctx context.Context, rawURL string) ([]any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, rawURL, transport.ShapePagination, nil)

	open := make([]any, 0)
	for _, item := range listOf(data) {
		if cancelURL := stringField(item, "cancel_url"); cancelURL != "" {
			s.pipeline.Post(ctx, cancelURL, nil)
			open = append(open, item)
		}
	}
	return open, nil
}

// OrderRequest describes a generic stock order. Zero prices fall back
// to the current ask (buy) or bid (sell).
type OrderRequest struct {
	Symbol        string
	Quantity      float64
	Side          string
	LimitPrice    float64
	StopPrice     float64
	TimeInForce   string
	ExtendedHours bool
	MarketHours   string
}

// PlaceOrder submits a stock order, deriving the order type and trigger
// from which prices were supplied.
func (s *Service) PlaceOrder(ctx context.Context, req OrderRequest) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	normalized := domain.NormalizeSymbols(req.Symbol)
	if len(normalized) == 0 {
		return nil, fmt.Errorf("invalid symbol %q", req.Symbol)
	}
	symbol := normalized[0]

	if req.TimeInForce == "" {
		req.TimeInForce = "gtc"
	}
	if req.MarketHours == "" {
		req.MarketHours = "regular_hours"
	}

	orderType := "market"
	trigger := "immediate"
	var price, stopPrice float64

	switch {
	case req.LimitPrice != 0 && req.StopPrice != 0:
		price = domain.RoundPrice(req.LimitPrice)
		stopPrice = domain.RoundPrice(req.StopPrice)
		orderType = "limit"
		trigger = "stop"
	case req.LimitPrice != 0:
		price = domain.RoundPrice(req.LimitPrice)
		orderType = "limit"
	case req.StopPrice != 0:
		stopPrice = domain.RoundPrice(req.StopPrice)
		if req.Side == "buy" {
			price = stopPrice
		}
		trigger = "stop"
	default:
		prices := s.LatestPrice(ctx, []string{symbol}, req.ExtendedHours)
		if len(prices) > 0 {
			price = domain.RoundPrice(parseFloat(prices[0]))
		}
	}

	accountURL, err := s.AccountProfileField(ctx, "url")
	if err != nil {
		return nil, err
	}
	instrumentURLs := listOf(s.InstrumentsBySymbols(ctx, []string{symbol}, "url"))
	if len(instrumentURLs) == 0 {
		return nil, fmt.Errorf("no instrument found for %q", symbol)
	}
	instrumentURL, _ := instrumentURLs[0].(string)

	payload := map[string]any{
		"account":        accountURL,
		"instrument":     instrumentURL,
		"symbol":         symbol,
		"price":          strconv.FormatFloat(price, 'f', -1, 64),
		"quantity":       strconv.FormatFloat(req.Quantity, 'f', -1, 64),
		"ref_id":         uuid.NewString(),
		"type":           orderType,
		"time_in_force":  req.TimeInForce,
		"trigger":        trigger,
		"side":           req.Side,
		"market_hours":   req.MarketHours,
		"extended_hours": req.ExtendedHours,
	}
	if stopPrice != 0 {
		payload["stop_price"] = strconv.FormatFloat(stopPrice, 'f', -1, 64)
	}

	data := s.pipeline.PostJSON(ctx, api.Orders(), payload)
	if data == nil {
		return nil, fmt.Errorf("failed to place order for %s", symbol)
	}
	return data, nil
}
