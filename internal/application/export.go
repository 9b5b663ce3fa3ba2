package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/bnema/robinhood-cli/internal/adapters/transport"
)

// stockOrderRow is one executed stock or crypto order in a CSV export.
type stockOrderRow struct {
	Symbol       string `csv:"symbol"`
	Date         string `csv:"date"`
	OrderType    string `csv:"order_type"`
	Side         string `csv:"side"`
	Fees         string `csv:"fees"`
	Quantity     string `csv:"quantity"`
	AveragePrice string `csv:"average_price"`
}

// optionOrderRow is one filled option order leg in a CSV export.
type optionOrderRow struct {
	ChainSymbol       string `csv:"chain_symbol"`
	ExpirationDate    string `csv:"expiration_date"`
	StrikePrice       string `csv:"strike_price"`
	OptionType        string `csv:"option_type"`
	Side              string `csv:"side"`
	OrderCreatedAt    string `csv:"order_created_at"`
	Direction         string `csv:"direction"`
	OrderQuantity     string `csv:"order_quantity"`
	OrderType         string `csv:"order_type"`
	OpeningStrategy   string `csv:"opening_strategy"`
	ClosingStrategy   string `csv:"closing_strategy"`
	Price             string `csv:"price"`
	ProcessedQuantity string `csv:"processed_quantity"`
}

// csvPath resolves the export destination, defaulting the file name to
// <kind>_orders_<date>.csv and forcing a .csv extension.
func csvPath(dir string, fileName string, kind string) string {
	if fileName == "" {
		fileName = fmt.Sprintf("%s_orders_%s.csv", kind, time.Now().Format("2006-01-02"))
	}
	if !strings.HasSuffix(fileName, ".csv") {
		fileName = strings.TrimSuffix(fileName, filepath.Ext(fileName)) + ".csv"
	}
	return filepath.Join(dir, fileName)
}

func writeCSV(path string, rows any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// ExportCompletedStockOrders writes every executed stock order to a CSV
// file under dir. Cancelled orders contribute a row per partial
// execution; filled orders contribute a single row.
func (s *Service) ExportCompletedStockOrders(ctx context.Context, dir string, fileName string) (string, error) {
	orders, err := s.AllStockOrders(ctx, "")
	if err != nil {
		return "", err
	}

	rows := []stockOrderRow{}
	for _, item := range listOf(orders) {
		order, ok := item.(map[string]any)
		if !ok {
			continue
		}

		state := stringField(order, "state")
		switch {
		case state == "cancelled":
			executions, _ := order["executions"].([]any)
			for _, e := range executions {
				partial, ok := e.(map[string]any)
				if !ok {
					continue
				}
				rows = append(rows, stockOrderRow{
					Symbol:       s.SymbolByURL(ctx, stringField(order, "instrument")),
					Date:         stringField(partial, "timestamp"),
					OrderType:    stringField(order, "type"),
					Side:         stringField(order, "side"),
					Fees:         stringField(order, "fees"),
					Quantity:     stringField(partial, "quantity"),
					AveragePrice: stringField(partial, "price"),
				})
			}
		case state == "filled" && order["cancel"] == nil:
			rows = append(rows, stockOrderRow{
				Symbol:       s.SymbolByURL(ctx, stringField(order, "instrument")),
				Date:         stringField(order, "last_transaction_at"),
				OrderType:    stringField(order, "type"),
				Side:         stringField(order, "side"),
				Fees:         stringField(order, "fees"),
				Quantity:     stringField(order, "quantity"),
				AveragePrice: stringField(order, "average_price"),
			})
		}
	}

	path := csvPath(dir, fileName, "stock")
	if err := writeCSV(path, &rows); err != nil {
		return "", err
	}
	return path, nil
}

// ExportCompletedCryptoOrders writes every filled crypto order to a CSV
// file under dir. The traded symbol is resolved through the currency
// pair's quote endpoint.
func (s *Service) ExportCompletedCryptoOrders(ctx context.Context, dir string, fileName string) (string, error) {
	orders, err := s.AllCryptoOrders(ctx, "")
	if err != nil {
		return "", err
	}

	rows := []stockOrderRow{}
	for _, item := range listOf(orders) {
		order, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if stringField(order, "state") != "filled" || order["cancel_url"] != nil {
			continue
		}

		symbol, _ := s.CryptoQuoteFromID(ctx, stringField(order, "currency_pair_id"), "symbol").(string)
		rows = append(rows, stockOrderRow{
			Symbol:       symbol,
			Date:         stringField(order, "last_transaction_at"),
			OrderType:    stringField(order, "type"),
			Side:         stringField(order, "side"),
			Fees:         stringField(order, "fees"),
			Quantity:     stringField(order, "quantity"),
			AveragePrice: stringField(order, "average_price"),
		})
	}

	path := csvPath(dir, fileName, "crypto")
	if err := writeCSV(path, &rows); err != nil {
		return "", err
	}
	return path, nil
}

// ExportCompletedOptionOrders writes every filled option order to a CSV
// file under dir, one row per leg, with the leg's contract details
// fetched from its instrument URL.
func (s *Service) ExportCompletedOptionOrders(ctx context.Context, dir string, fileName string) (string, error) {
	orders, err := s.AllOptionOrders(ctx, "")
	if err != nil {
		return "", err
	}

	rows := []optionOrderRow{}
	for _, item := range listOf(orders) {
		order, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if stringField(order, "state") != "filled" {
			continue
		}

		legs, _ := order["legs"].([]any)
		for _, l := range legs {
			leg, ok := l.(map[string]any)
			if !ok {
				continue
			}
			contract := s.pipeline.Get(ctx, stringField(leg, "option"), transport.ShapeRegular, nil)
			rows = append(rows, optionOrderRow{
				ChainSymbol:       stringField(order, "chain_symbol"),
				ExpirationDate:    stringField(contract, "expiration_date"),
				StrikePrice:       stringField(contract, "strike_price"),
				OptionType:        stringField(contract, "type"),
				Side:              stringField(leg, "side"),
				OrderCreatedAt:    stringField(order, "created_at"),
				Direction:         stringField(order, "direction"),
				OrderQuantity:     stringField(order, "quantity"),
				OrderType:         stringField(order, "type"),
				OpeningStrategy:   stringField(order, "opening_strategy"),
				ClosingStrategy:   stringField(order, "closing_strategy"),
				Price:             stringField(order, "price"),
				ProcessedQuantity: stringField(order, "processed_quantity"),
			})
		}
	}

	path := csvPath(dir, fileName, "option")
	if err := writeCSV(path, &rows); err != nil {
		return "", err
	}
	return path, nil
}
