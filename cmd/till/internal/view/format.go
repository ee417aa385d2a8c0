package view

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	paddedStyle = lipgloss.NewStyle().Padding(2)
	faintStyle  = lipgloss.NewStyle().Faint(true)
	totalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
