package application

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/bnema/robinhood-cli/internal/adapters/transport"
	"github.com/bnema/robinhood-cli/internal/api"
	"github.com/bnema/robinhood-cli/internal/domain"
)

// instrumentWorkers bounds the fan-out of per-symbol instrument
// lookups. The requests are independent and read-only: they never touch
// session state.
const instrumentWorkers = 8

// Quotes returns quote data for one or more tickers, optionally
// projected to a single field per quote.
func (s *Service) Quotes(ctx context.Context, symbols []string, field string) any {
	normalized := domain.NormalizeSymbols(symbols...)
	query := url.Values{"symbols": {strings.Join(normalized, ",")}}

	data := s.pipeline.Get(ctx, api.Quotes(), transport.ShapeResults, query)
	return s.pipeline.Filter(data, field)
}

// Fundamentals returns fundamental data for one or more tickers.
func (s *Service) Fundamentals(ctx context.Context, symbols []string, field string) any {
	normalized := domain.NormalizeSymbols(symbols...)
	query := url.Values{"symbols": {strings.Join(normalized, ",")}}

	data := s.pipeline.Get(ctx, api.Fundamentals(), transport.ShapeResults, query)
	return s.pipeline.Filter(data, field)
}

// InstrumentsBySymbols fetches instrument data per symbol, fanning the
// independent lookups out across a bounded worker pool while keeping
// the result order aligned with the input.
func (s *Service) InstrumentsBySymbols(ctx context.Context, symbols []string, field string) any {
	normalized := domain.NormalizeSymbols(symbols...)
	results := make([]any, len(normalized))

	var wg sync.WaitGroup
	slots := make(chan struct{}, instrumentWorkers)
	for i, symbol := range normalized {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			slots <- struct{}{}
			defer func() { <-slots }()

			results[i] = s.pipeline.Get(ctx, api.Instruments(), transport.ShapeIndexZero, url.Values{"symbol": {symbol}})
		}(i, symbol)
	}
	wg.Wait()

	collected := make([]any, 0, len(results))
	for i, item := range results {
		entry, ok := item.(map[string]any)
		if !ok || len(entry) == 0 {
			s.pipeline.Sink().Printf("Warning: %q is not a valid stock ticker. It is being ignored.", normalized[i])
			continue
		}
		collected = append(collected, item)
	}

	return s.pipeline.Filter(collected, field)
}

// LatestPrice returns the most recent price for each ticker. With
// extended hours included, the last extended-hours trade price wins
// when present.
func (s *Service) LatestPrice(ctx context.Context, symbols []string, includeExtendedHours bool) []string {
	quotes := listOf(s.Quotes(ctx, symbols, ""))

	prices := make([]string, 0, len(quotes))
	for _, item := range quotes {
		quote, ok := item.(map[string]any)
		if !ok {
			prices = append(prices, "")
			continue
		}

		price, _ := quote["last_trade_price"].(string)
		if includeExtendedHours {
			if extended, ok := quote["last_extended_hours_trade_price"].(string); ok && extended != "" {
				price = extended
			}
		}
		prices = append(prices, price)
	}
	return prices
}

// NameBySymbol returns the display name of a ticker, preferring the
// short name over the legal listing name.
func (s *Service) NameBySymbol(ctx context.Context, symbol string) string {
	data := s.pipeline.Get(ctx, api.Instruments(), transport.ShapeIndexZero, url.Values{"symbol": {symbol}})

	if name := stringField(data, "simple_name"); name != "" {
		return name
	}
	return stringField(data, "name")
}

// SymbolByURL returns the ticker behind an instrument URL.
func (s *Service) SymbolByURL(ctx context.Context, instrumentURL string) string {
	data := s.pipeline.Get(ctx, instrumentURL, transport.ShapeRegular, nil)
	return stringField(data, "symbol")
}

// Ratings returns analyst ratings for a ticker.
func (s *Service) Ratings(ctx context.Context, symbol string, field string) any {
	normalized := domain.NormalizeSymbols(symbol)
	if len(normalized) == 0 {
		return nil
	}

	data := s.pipeline.Get(ctx, api.Ratings(normalized[0]), transport.ShapeRegular, nil)
	return s.pipeline.Filter(data, field)
}

// News returns news stories for a ticker.
func (s *Service) News(ctx context.Context, symbol string, field string) any {
	normalized := domain.NormalizeSymbols(symbol)
	if len(normalized) == 0 {
		return []any{}
	}

	data := s.pipeline.Get(ctx, api.News(normalized[0]), transport.ShapeResults, nil)
	return s.pipeline.Filter(data, field)
}

// Historicals returns historical candle data for one or more tickers.
func (s *Service) Historicals(ctx context.Context, symbols []string, interval string, span string, bounds string, field string) any {
	normalized := domain.NormalizeSymbols(symbols...)
	query := url.Values{
		"symbols":  {strings.Join(normalized, ",")},
		"interval": {interval},
		"span":     {span},
		"bounds":   {bounds},
	}

	data := s.pipeline.Get(ctx, api.Historicals(), transport.ShapeResults, query)

	flattened := make([]any, 0)
	for _, item := range listOf(data) {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		symbol, _ := entry["symbol"].(string)
		candles, _ := entry["historicals"].([]any)
		for _, candle := range candles {
			if bar, ok := candle.(map[string]any); ok {
				bar["symbol"] = symbol
				flattened = append(flattened, bar)
			}
		}
	}

	return s.pipeline.Filter(flattened, field)
}

// Earnings returns earnings reports for a ticker.
func (s *Service) Earnings(ctx context.Context, symbol string, field string) any {
	normalized := domain.NormalizeSymbols(symbol)
	if len(normalized) == 0 {
		return []any{}
	}

	data := s.pipeline.Get(ctx, api.Earnings(), transport.ShapeResults, url.Values{"symbol": {normalized[0]}})
	return s.pipeline.Filter(data, field)
}

// Splits returns stock split events for a ticker.
func (s *Service) Splits(ctx context.Context, symbol string, field string) any {
	instrumentID := s.IDForStock(ctx, symbol)
	if instrumentID == "" {
		return []any{}
	}

	data := s.pipeline.Get(ctx, api.Splits(instrumentID), transport.ShapeResults, nil)
	return s.pipeline.Filter(data, field)
}

// FindInstrumentData searches instruments matching a free-text query.
func (s *Service) FindInstrumentData(ctx context.Context, query string) []any {
	data := s.pipeline.Get(ctx, api.Instruments(), transport.ShapePagination, url.Values{"query": {query}})

	results := listOf(data)
	if len(results) == 0 {
		s.pipeline.Sink().Printf("No results found for that keyword.")
		return []any{}
	}
	return results
}

// QuoteByID returns marketdata quote details for an instrument id.
func (s *Service) QuoteByID(ctx context.Context, stockID string, field string) any {
	data := s.pipeline.Get(ctx, api.MarketdataQuotes(stockID), transport.ShapeRegular, nil)
	return s.pipeline.Filter(data, field)
}

// QuoteBySymbol returns marketdata quote details for a ticker.
func (s *Service) QuoteBySymbol(ctx context.Context, symbol string, field string) any {
	return s.QuoteByID(ctx, s.IDForStock(ctx, symbol), field)
}

// PricebookByID returns the level-2 order book snapshot for an
// instrument id. Requires a Gold subscription on the account.
func (s *Service) PricebookByID(ctx context.Context, stockID string, field string) any {
	data := s.pipeline.Get(ctx, api.MarketdataPricebook(stockID), transport.ShapeRegular, nil)
	return s.pipeline.Filter(data, field)
}
