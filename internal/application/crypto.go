package application

import (
	"context"

	"github.com/bnema/robinhood-cli/internal/adapters/transport"
	"github.com/bnema/robinhood-cli/internal/api"
	"github.com/bnema/robinhood-cli/internal/domain"
)

// CryptoProfile returns the crypto trading account.
func (s *Service) CryptoProfile(ctx context.Context, field string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, api.CryptoAccounts(), transport.ShapeIndexZero, nil)
	return s.pipeline.Filter(data, field), nil
}

// CryptoPositions returns crypto holdings.
func (s *Service) CryptoPositions(ctx context.Context, field string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, api.CryptoHoldings(), transport.ShapePagination, nil)
	return s.pipeline.Filter(data, field), nil
}

// CryptoCurrencyPairs returns the tradable crypto pairs.
func (s *Service) CryptoCurrencyPairs(ctx context.Context, field string) any {
	data := s.pipeline.Get(ctx, api.CryptoCurrencyPairs(), transport.ShapeResults, nil)
	return s.pipeline.Filter(data, field)
}

// CryptoInfo returns the currency-pair record for one crypto ticker.
func (s *Service) CryptoInfo(ctx context.Context, symbol string, field string) any {
	normalized := domain.NormalizeSymbols(symbol)
	if len(normalized) == 0 {
		return nil
	}

	pairs := listOf(s.CryptoCurrencyPairs(ctx, ""))
	for _, item := range pairs {
		pair, ok := item.(map[string]any)
		if !ok {
			continue
		}
		assetCurrency, _ := pair["asset_currency"].(map[string]any)
		if code, _ := assetCurrency["code"].(string); code == normalized[0] {
			return s.pipeline.Filter(pair, field)
		}
	}

	s.pipeline.Sink().Printf("Warning: %q is not a valid crypto symbol.", normalized[0])
	return nil
}

// CryptoID resolves a crypto ticker to its currency-pair id.
func (s *Service) CryptoID(ctx context.Context, symbol string) string {
	id, _ := s.CryptoInfo(ctx, symbol, "id").(string)
	return id
}

// CryptoQuote returns quote data for a crypto ticker.
func (s *Service) CryptoQuote(ctx context.Context, symbol string, field string) any {
	id := s.CryptoID(ctx, symbol)
	if id == "" {
		return nil
	}
	return s.CryptoQuoteFromID(ctx, id, field)
}

// CryptoQuoteFromID returns quote data for a currency-pair id.
func (s *Service) CryptoQuoteFromID(ctx context.Context, id string, field string) any {
	data := s.pipeline.Get(ctx, api.CryptoQuote(id), transport.ShapeRegular, nil)
	return s.pipeline.Filter(data, field)
}

// CryptoHistoricals returns historical candles for a crypto ticker.
func (s *Service) CryptoHistoricals(ctx context.Context, symbol string, interval string, span string, bounds string, field string) any {
	id := s.CryptoID(ctx, symbol)
	if id == "" {
		return []any{}
	}

	query := urlValues("interval", interval, "span", span, "bounds", bounds)
	data := s.pipeline.Get(ctx, api.CryptoHistoricals(id), transport.ShapeRegular, query)

	body, ok := data.(map[string]any)
	if !ok {
		return []any{}
	}
	candles, _ := body["data_points"].([]any)
	return s.pipeline.Filter(candles, field)
}
