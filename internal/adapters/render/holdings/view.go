package holdings

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/robinhood-cli/internal/application"
)

// RenderOptions controls the portfolio view.
type RenderOptions struct {
	// Profile is the cash/equity snapshot shown above the positions.
	Profile map[string]string
	// WithDividends adds the dividend columns to each position line.
	WithDividends bool
}

func renderView(positions []application.Holding, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Portfolio Holdings"),
		s.header.Render(fmt.Sprintf("positions: %d", len(positions))),
	}

	if summary := profileLine(opts.Profile, s); summary != "" {
		lines = append(lines, summary)
	}

	if len(positions) == 0 {
		lines = append(lines, s.empty.Render("No open positions."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, holding := range positions {
		lines = append(lines, s.section.Render(renderHolding(holding, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func profileLine(profile map[string]string, s styles) string {
	if len(profile) == 0 {
		return ""
	}

	parts := make([]string, 0, 3)
	for _, key := range []string{"equity", "cash", "dividend_total"} {
		if value := profile[key]; value != "" {
			parts = append(parts, fmt.Sprintf("%s %s",
				s.metaKey.Render(key+":"), s.detail.Render("$"+value)))
		}
	}
	if len(parts) == 0 {
		return ""
	}

	return strings.Join(parts, "  ")
}

func renderHolding(holding application.Holding, opts RenderOptions, s styles) string {
	parts := []string{
		s.symbol.Render(holdingTitle(holding)),
		detailLine(holding, s),
		allocationLine(holding, s),
	}

	if opts.WithDividends && holding.DividendRate != "" {
		parts = append(parts, dividendLine(holding, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func holdingTitle(holding application.Holding) string {
	name := strings.TrimSpace(holding.Name)
	if name == "" {
		return holding.Symbol
	}
	return fmt.Sprintf("%s (%s)", holding.Symbol, name)
}

func detailLine(holding application.Holding, s styles) string {
	quantity := fmt.Sprintf("%s shares @ $%.2f", trimQuantity(holding.Quantity), holding.Price)
	equity := fmt.Sprintf("equity $%.2f", holding.Equity)
	change := changeLabel(holding, s)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.detail.Render(quantity),
		s.metaValue.Render("  "+equity+"  "),
		change,
	)
}

func changeLabel(holding application.Holding, s styles) string {
	style := s.gain
	if holding.EquityChange < 0 {
		style = s.loss
	}

	return style.Render(fmt.Sprintf("%+.2f (%+.2f%%)", holding.EquityChange, holding.PercentChange))
}

func allocationLine(holding application.Holding, s styles) string {
	bar := renderAllocationBar(holding.Percentage, 24, s)
	label := s.metaKey.Render("portfolio:")
	meta := s.metaValue.Render(fmt.Sprintf("%5.2f%%", clampPercent(holding.Percentage)))

	return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", bar, " ", meta)
}

func dividendLine(holding application.Holding, s styles) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.metaKey.Render("dividends:"),
		s.detail.Render(fmt.Sprintf(" rate $%s, paid $%s", holding.DividendRate, holding.DividendsPaid)),
	)
}

func renderAllocationBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	fraction := clampPercent(percent) / 100.0
	filled := int(math.Round(float64(width) * fraction))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	empty := width - filled
	fillSegment := s.barFill.Render(strings.Repeat("=", filled))
	emptySegment := s.barEmpty.Render(strings.Repeat("-", empty))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fillSegment,
		emptySegment,
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// trimQuantity drops trailing zeros so whole-share positions print
// without a fractional tail.
func trimQuantity(quantity float64) string {
	formatted := fmt.Sprintf("%.6f", quantity)
	formatted = strings.TrimRight(formatted, "0")
	return strings.TrimSuffix(formatted, ".")
}
