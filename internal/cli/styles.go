// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7AA2F7")).
			MarginBottom(1)

	// IncomeStyle formats income amounts.
	IncomeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ECE6A"))

	// ExpenseStyle formats spending amounts.
	ExpenseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7768E"))

	// DebtStyle formats outstanding-debt amounts.
	DebtStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E0AF68"))

	// WarnStyle formats due-soon and overdue notices.
	WarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E0AF68"))

	// SubtleStyle formats secondary text such as ids and dates.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565F89"))

	// BoxStyle wraps summary blocks.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B4261")).
			Padding(0, 1)
)

// Amount renders a monetary value with two decimals.
func Amount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
