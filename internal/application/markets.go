package application

import (
	"context"
	"net/url"

	"github.com/bnema/robinhood-cli/internal/adapters/transport"
	"github.com/bnema/robinhood-cli/internal/api"
)

// TopMoversSP500 returns the S&P 500 movers in the given direction
// ("up" or "down").
func (s *Service) TopMoversSP500(ctx context.Context, direction string, field string) any {
	if direction != "up" && direction != "down" {
		s.pipeline.Sink().Printf("Error: direction must be \"up\" or \"down\".")
		return []any{}
	}

	data := s.pipeline.Get(ctx, api.Movers(), transport.ShapePagination, url.Values{"direction": {direction}})
	return s.pipeline.Filter(data, field)
}

// Top100 returns the hundred most popular stocks.
func (s *Service) Top100(ctx context.Context, field string) any {
	return s.AllStocksFromMarketTag(ctx, "100-most-popular", field)
}

// TopMovers returns the day's top twenty movers.
func (s *Service) TopMovers(ctx context.Context, field string) any {
	return s.AllStocksFromMarketTag(ctx, "top-movers", field)
}

// AllStocksFromMarketTag returns the instruments in a curated market
// category.
func (s *Service) AllStocksFromMarketTag(ctx context.Context, tag string, field string) any {
	data := s.pipeline.Get(ctx, api.MarketCategory(tag), transport.ShapeRegular, nil)

	body, ok := data.(map[string]any)
	if !ok {
		return []any{}
	}
	instruments, _ := body["instruments"].([]any)

	quotes := make([]any, 0, len(instruments))
	for _, item := range instruments {
		instrumentURL, _ := item.(string)
		if instrumentURL == "" {
			continue
		}
		if quote := s.pipeline.Get(ctx, instrumentURL, transport.ShapeRegular, nil); quote != nil {
			quotes = append(quotes, quote)
		}
	}

	return s.pipeline.Filter(quotes, field)
}

// Markets lists the exchanges.
func (s *Service) Markets(ctx context.Context, field string) any {
	data := s.pipeline.Get(ctx, api.Markets(), transport.ShapeResults, nil)
	return s.pipeline.Filter(data, field)
}

// MarketTodayHours returns today's session hours for an exchange MIC.
func (s *Service) MarketTodayHours(ctx context.Context, market string, field string) any {
	data := s.pipeline.Get(ctx, api.MarketTodayHours(market), transport.ShapeRegular, nil)
	return s.pipeline.Filter(data, field)
}

// MarketHours returns the session hours for an exchange MIC on a date
// (YYYY-MM-DD).
func (s *Service) MarketHours(ctx context.Context, market string, date string, field string) any {
	data := s.pipeline.Get(ctx, api.MarketHours(market, date), transport.ShapeRegular, nil)
	return s.pipeline.Filter(data, field)
}

// MarketNextOpenHours returns the next session after today.
func (s *Service) MarketNextOpenHours(ctx context.Context, market string, field string) any {
	today := s.pipeline.Get(ctx, api.MarketTodayHours(market), transport.ShapeRegular, nil)
	nextURL := stringField(today, "next_open_hours")
	if nextURL == "" {
		return nil
	}

	data := s.pipeline.Get(ctx, nextURL, transport.ShapeRegular, nil)
	return s.pipeline.Filter(data, field)
}

// MarketNextOpenHoursAfterDate returns the first session after a date.
func (s *Service) MarketNextOpenHoursAfterDate(ctx context.Context, market string, date string, field string) any {
	day := s.pipeline.Get(ctx, api.MarketHours(market, date), transport.ShapeRegular, nil)
	nextURL := stringField(day, "next_open_hours")
	if nextURL == "" {
		return nil
	}

	data := s.pipeline.Get(ctx, nextURL, transport.ShapeRegular, nil)
	return s.pipeline.Filter(data, field)
}
