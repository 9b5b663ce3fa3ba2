package holdings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/robinhood-cli/internal/application"
)

func TestRenderEmptyPortfolio(t *testing.T) {
	output, err := Render(nil, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "Portfolio Holdings")
	assert.Contains(t, output, "positions: 0")
	assert.Contains(t, output, "No open positions.")
}

func TestRenderSingleHolding(t *testing.T) {
	output, err := Render([]application.Holding{
		{
			Symbol:          "AAPL",
			Name:            "Apple",
			Price:           150.25,
			Quantity:        10,
			AverageBuyPrice: 120,
			Equity:          1502.50,
			EquityChange:    302.50,
			PercentChange:   25.21,
			Percentage:      42.5,
		},
	}, RenderOptions{
		Profile: map[string]string{"equity": "3535.00", "cash": "120.00"},
	})

	require.NoError(t, err)
	assert.Contains(t, output, "positions: 1")
	assert.Contains(t, output, "AAPL (Apple)")
	assert.Contains(t, output, "10 shares @ $150.25")
	assert.Contains(t, output, "equity $1502.50")
	assert.Contains(t, output, "+302.50 (+25.21%)")
	assert.Contains(t, output, "42.50%")
	assert.Contains(t, output, "$3535.00")
	assert.Contains(t, output, "$120.00")
	assert.Contains(t, output, "[")
	assert.Contains(t, output, "]")
}

func TestRenderLossUsesSignedChange(t *testing.T) {
	output, err := Render([]application.Holding{
		{
			Symbol:        "MSFT",
			Price:         280,
			Quantity:      2.5,
			Equity:        700,
			EquityChange:  -50,
			PercentChange: -6.67,
			Percentage:    10,
		},
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "MSFT")
	assert.Contains(t, output, "2.5 shares @ $280.00")
	assert.Contains(t, output, "-50.00 (-6.67%)")
}

func TestRenderDividendLineOnlyWhenRequested(t *testing.T) {
	holding := application.Holding{
		Symbol:        "KO",
		Price:         60,
		Quantity:      5,
		Equity:        300,
		DividendRate:  "0.46",
		DividendsPaid: "9.20",
	}

	withDividends, err := Render([]application.Holding{holding}, RenderOptions{WithDividends: true})
	require.NoError(t, err)
	assert.Contains(t, withDividends, "rate $0.46, paid $9.20")

	withoutDividends, err := Render([]application.Holding{holding}, RenderOptions{})
	require.NoError(t, err)
	assert.NotContains(t, withoutDividends, "rate $0.46")
}
