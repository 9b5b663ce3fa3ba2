package holdings

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	symbol     lipgloss.Style
	detail     lipgloss.Style
	gain       lipgloss.Style
	loss       lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	metaKey    lipgloss.Style
	metaValue  lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		symbol:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		gain:       lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		loss:       lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		metaKey:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		metaValue:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
