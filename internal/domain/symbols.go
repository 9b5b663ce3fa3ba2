package domain

import (
	"math"
	"strings"
)

// NormalizeSymbols upper-cases, trims, and de-duplicates ticker symbols
// while preserving first-seen order.
func NormalizeSymbols(symbols ...string) []string {
	seen := make(map[string]struct{}, len(symbols))
	result := make([]string, 0, len(symbols))

	for _, symbol := range symbols {
		normalized := strings.ToUpper(strings.TrimSpace(symbol))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}

		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}

	return result
}

// RoundPrice rounds a price to the decimal precision the order endpoints
// accept: six places under a cent, four under a dollar, two otherwise.
func RoundPrice(price float64) float64 {
	switch {
	case price <= 1e-2:
		return roundTo(price, 6)
	case price < 1e0:
		return roundTo(price, 4)
	default:
		return roundTo(price, 2)
	}
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
