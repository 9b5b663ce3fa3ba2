// Package application exposes the endpoint wrappers: every data-access
// operation is a thin composition of the request pipeline's dispatch and
// field filter.
package application

import (
	"context"
	"net/url"
	"strconv"

	"github.com/bnema/robinhood-cli/internal/adapters/transport"
	"github.com/bnema/robinhood-cli/internal/api"
	"github.com/bnema/robinhood-cli/internal/domain"
	"github.com/bnema/robinhood-cli/internal/lru"
)

const lookupCacheSize = 128

// Service is the client handle for account and market data. Symbol
// lookup results are memoized in bounded caches owned by the handle;
// Reset clears them.
type Service struct {
	pipeline      *transport.Pipeline
	instrumentIDs *lru.Cache
	chainIDs      *lru.Cache
}

func NewService(pipeline *transport.Pipeline) *Service {
	return &Service{
		pipeline:      pipeline,
		instrumentIDs: lru.New(lookupCacheSize),
		chainIDs:      lru.New(lookupCacheSize),
	}
}

func (s *Service) Pipeline() *transport.Pipeline {
	return s.pipeline
}

// Reset invalidates the memoized symbol lookups.
func (s *Service) Reset() {
	s.instrumentIDs.Clear()
	s.chainIDs.Clear()
}

func (s *Service) requireLogin() error {
	if !s.pipeline.Session().LoggedIn() {
		return domain.ErrNotLoggedIn
	}
	return nil
}

// IDForStock resolves a ticker to its instrument id, memoized.
func (s *Service) IDForStock(ctx context.Context, symbol string) string {
	normalized := domain.NormalizeSymbols(symbol)
	if len(normalized) == 0 {
		return ""
	}
	symbol = normalized[0]

	if id, ok := s.instrumentIDs.Get(symbol); ok {
		return id
	}

	data := s.pipeline.Get(ctx, api.Instruments(), transport.ShapeIndexZero, url.Values{"symbol": {symbol}})
	id, _ := s.pipeline.Filter(data, "id").(string)
	if id != "" {
		s.instrumentIDs.Put(symbol, id)
	}
	return id
}

// IDForChain resolves a ticker to its tradable option chain id, memoized.
func (s *Service) IDForChain(ctx context.Context, symbol string) string {
	normalized := domain.NormalizeSymbols(symbol)
	if len(normalized) == 0 {
		return ""
	}
	symbol = normalized[0]

	if id, ok := s.chainIDs.Get(symbol); ok {
		return id
	}

	data := s.pipeline.Get(ctx, api.Instruments(), transport.ShapeIndexZero, url.Values{"symbol": {symbol}})
	id, _ := s.pipeline.Filter(data, "tradable_chain_id").(string)
	if id != "" {
		s.chainIDs.Put(symbol, id)
	}
	return id
}

// IDForGroup resolves the underlying instrument id of a ticker's option
// chain.
func (s *Service) IDForGroup(ctx context.Context, symbol string) string {
	chainID := s.IDForChain(ctx, symbol)
	if chainID == "" {
		return ""
	}

	data := s.pipeline.Get(ctx, api.OptionChains(chainID), transport.ShapeRegular, nil)
	chain, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	underlying, ok := chain["underlying_instruments"].([]any)
	if !ok || len(underlying) == 0 {
		return ""
	}
	first, _ := underlying[0].(map[string]any)
	id, _ := first["id"].(string)
	return id
}

// IDForOption resolves the id of a specific option instrument.
func (s *Service) IDForOption(ctx context.Context, symbol string, expirationDate string, strike string, optionType string) string {
	chainID := s.IDForChain(ctx, symbol)
	query := url.Values{
		"chain_id":         {chainID},
		"expiration_dates": {expirationDate},
		"strike_price":     {strike},
		"type":             {optionType},
		"state":            {"active"},
	}

	data := s.pipeline.Get(ctx, api.OptionInstruments(), transport.ShapePagination, query)
	options, _ := data.([]any)
	for _, item := range options {
		option, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if option["expiration_date"] == expirationDate {
			id, _ := option["id"].(string)
			return id
		}
	}

	s.pipeline.Sink().Printf("Getting the option ID failed. Perhaps the expiration date is the wrong format, or the strike price is wrong.")
	return ""
}

func stringField(item any, field string) string {
	entry, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	value, _ := entry[field].(string)
	return value
}

func floatField(item any, field string) float64 {
	return parseFloat(stringField(item, field))
}

func parseFloat(raw string) float64 {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}

// urlValues builds url.Values from key/value pairs, skipping empty
// values.
func urlValues(pairs ...string) url.Values {
	values := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			values.Set(pairs[i], pairs[i+1])
		}
	}
	return values
}

func listOf(data any) []any {
	list, ok := data.([]any)
	if !ok {
		return nil
	}
	if len(list) == 1 && list[0] == nil {
		return nil
	}
	return list
}
