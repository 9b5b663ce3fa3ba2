package application

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"

	"github.com/bnema/robinhood-cli/internal/adapters/transport"
	"github.com/bnema/robinhood-cli/internal/api"
)

// Holding summarizes one open stock position.
type Holding struct {
	Symbol          string
	Name            string
	InstrumentID    string
	Type            string
	Price           float64
	Quantity        float64
	AverageBuyPrice float64
	Equity          float64
	EquityChange    float64
	PercentChange   float64
	Percentage      float64
	PERatio         string
	DividendRate    string
	TotalDividend   string
	DividendsPaid   string
}

// PhoenixAccount returns the unified account summary.
func (s *Service) PhoenixAccount(ctx context.Context, field string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, api.PhoenixAccounts(), transport.ShapeRegular, nil)
	return s.pipeline.Filter(data, field), nil
}

// AllPositions returns every position ever traded.
func (s *Service) AllPositions(ctx context.Context, field string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, api.Positions(), transport.ShapePagination, nil)
	return s.pipeline.Filter(data, field), nil
}

// OpenStockPositions returns the positions currently held.
func (s *Service) OpenStockPositions(ctx context.Context, field string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, api.Positions(), transport.ShapePagination, url.Values{"nonzero": {"true"}})
	return s.pipeline.Filter(data, field), nil
}

// Dividends returns all dividend transactions.
func (s *Service) Dividends(ctx context.Context, field string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	data := s.pipeline.Get(ctx, api.Dividends(), transport.ShapePagination, nil)
	return s.pipeline.Filter(data, field), nil
}

// TotalDividends sums the paid and reinvested dividend amounts.
func (s *Service) TotalDividends(ctx context.Context) (float64, error) {
	dividends, err := s.Dividends(ctx, "")
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, item := range listOf(dividends) {
		state := stringField(item, "state")
		if state == "paid" || state == "reinvested" {
			total += floatField(item, "amount")
		}
	}
	return total, nil
}

// DividendsByInstrument aggregates dividend history for one instrument
// URL out of an already-fetched dividend list.
func DividendsByInstrument(instrumentURL string, dividends []any) (rate string, total string, amountPaid string, ok bool) {
	matching := make([]any, 0)
	for _, item := range dividends {
		if stringField(item, "instrument") == instrumentURL {
			matching = append(matching, item)
		}
	}
	if len(matching) == 0 {
		return "", "", "", false
	}

	paid := 0.0
	for _, item := range matching {
		paid += floatField(item, "amount")
	}

	return fmt.Sprintf("%.2f", floatField(matching[0], "rate")),
		fmt.Sprintf("%.2f", floatField(matching[0], "amount")),
		fmt.Sprintf("%.2f", paid),
		true
}

// HistoricalPortfolio returns portfolio value history.
func (s *Service) HistoricalPortfolio(ctx context.Context, interval string, span string, bounds string, field string) (any, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	accountNumber, _ := s.AccountProfileField(ctx, "account_number")
	query := url.Values{"interval": {interval}, "span": {span}, "bounds": {bounds}}

	data := s.pipeline.Get(ctx, api.PortfolioHistoricals(accountNumber), transport.ShapeRegular, query)
	return s.pipeline.Filter(data, field), nil
}

// BuildHoldings assembles the per-symbol position summary the status
// view renders: price, cost basis, equity, and portfolio percentage per
// open position, optionally joined with dividend history. Per-position
// enrichment requests run concurrently; none of them mutate the session.
func (s *Service) BuildHoldings(ctx context.Context, withDividends bool) (map[string]Holding, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	positions, err := s.OpenStockPositions(ctx, "")
	if err != nil {
		return nil, err
	}
	portfolio, err := s.PortfolioProfile(ctx, "")
	if err != nil {
		return nil, err
	}
	account, err := s.AccountProfile(ctx, "")
	if err != nil {
		return nil, err
	}

	positionList := listOf(positions)
	portfolioData, _ := portfolio.(map[string]any)
	accountData, _ := account.(map[string]any)
	if len(positionList) == 0 || len(portfolioData) == 0 || len(accountData) == 0 {
		return map[string]Holding{}, nil
	}

	var dividendList []any
	if withDividends {
		dividends, err := s.Dividends(ctx, "")
		if err != nil {
			return nil, err
		}
		dividendList = listOf(dividends)
	}

	totalEquity := floatField(portfolioData, "equity")
	if extended := floatField(portfolioData, "extended_hours_equity"); extended > totalEquity {
		totalEquity = extended
	}
	cash := floatField(accountData, "cash") + floatField(accountData, "uncleared_deposits")
	investedEquity := totalEquity - cash

	holdings := make(map[string]Holding, len(positionList))
	var mu sync.Mutex
	var wg sync.WaitGroup
	slots := make(chan struct{}, instrumentWorkers)

	for _, item := range positionList {
		position, ok := item.(map[string]any)
		if !ok {
			continue
		}

		wg.Add(1)
		go func(position map[string]any) {
			defer wg.Done()
			slots <- struct{}{}
			defer func() { <-slots }()

			holding, ok := s.buildHolding(ctx, position, investedEquity, dividendList)
			if !ok {
				return
			}

			mu.Lock()
			holdings[holding.Symbol] = holding
			mu.Unlock()
		}(position)
	}
	wg.Wait()

	return holdings, nil
}

func (s *Service) buildHolding(ctx context.Context, position map[string]any, investedEquity float64, dividends []any) (Holding, bool) {
	instrumentURL, _ := position["instrument"].(string)
	instrument := s.pipeline.Get(ctx, instrumentURL, transport.ShapeRegular, nil)
	symbol := stringField(instrument, "symbol")
	if symbol == "" {
		return Holding{}, false
	}

	prices := s.LatestPrice(ctx, []string{symbol}, true)
	if len(prices) == 0 {
		return Holding{}, false
	}
	price := parseFloat(prices[0])

	fundamentals := listOf(s.Fundamentals(ctx, []string{symbol}, ""))
	peRatio := ""
	if len(fundamentals) > 0 {
		peRatio = stringField(fundamentals[0], "pe_ratio")
	}

	quantity := floatField(position, "quantity")
	averageBuyPrice := floatField(position, "average_buy_price")
	equity := quantity * price
	equityChange := equity - quantity*averageBuyPrice

	percentChange := 0.0
	if averageBuyPrice != 0 {
		percentChange = (price - averageBuyPrice) * 100 / averageBuyPrice
	}
	percentage := 0.0
	if investedEquity != 0 {
		percentage = equity * 100 / investedEquity
	}

	holding := Holding{
		Symbol:          symbol,
		Name:            s.NameBySymbol(ctx, symbol),
		InstrumentID:    stringField(instrument, "id"),
		Type:            stringField(instrument, "type"),
		Price:           price,
		Quantity:        quantity,
		AverageBuyPrice: averageBuyPrice,
		Equity:          equity,
		EquityChange:    equityChange,
		PercentChange:   percentChange,
		Percentage:      percentage,
		PERatio:         peRatio,
	}

	if dividends != nil {
		if rate, total, paid, ok := DividendsByInstrument(instrumentURL, dividends); ok {
			holding.DividendRate = rate
			holding.TotalDividend = total
			holding.DividendsPaid = paid
		}
	}

	return holding, true
}

// SortedHoldings flattens a holdings map into a deterministic
// symbol-ordered slice.
func SortedHoldings(holdings map[string]Holding) []Holding {
	sorted := make([]Holding, 0, len(holdings))
	for _, holding := range holdings {
		sorted = append(sorted, holding)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Symbol < sorted[j].Symbol
	})
	return sorted
}

// BuildUserProfile returns the cash/equity snapshot for the account.
func (s *Service) BuildUserProfile(ctx context.Context) (map[string]string, error) {
	if err := s.requireLogin(); err != nil {
		return nil, err
	}

	portfolio, err := s.PortfolioProfile(ctx, "")
	if err != nil {
		return nil, err
	}
	account, err := s.AccountProfile(ctx, "")
	if err != nil {
		return nil, err
	}

	user := make(map[string]string)
	if portfolioData, ok := portfolio.(map[string]any); ok {
		user["equity"] = stringField(portfolioData, "equity")
		user["extended_hours_equity"] = stringField(portfolioData, "extended_hours_equity")
	}
	if accountData, ok := account.(map[string]any); ok {
		cash := floatField(accountData, "cash") + floatField(accountData, "uncleared_deposits")
		user["cash"] = fmt.Sprintf("%.2f", cash)
		user["dividend_total"] = ""
	}
	if total, err := s.TotalDividends(ctx); err == nil {
		user["dividend_total"] = fmt.Sprintf("%.2f", total)
	}

	return user, nil
}
