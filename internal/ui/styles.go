package ui

import "github.com/charmbracelet/lipgloss"

var (
	primary     = lipgloss.Color("#101F38")
	accent      = lipgloss.Color("#8BC34A")
	muted       = lipgloss.Color("#8a94a6")
	destructive = lipgloss.Color("#e53935")
	warning     = lipgloss.Color("#FFC107")
)

// Styles holds the dashboard styles.
type Styles struct {
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Label     lipgloss.Style
	Help      lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Notice    lipgloss.Style
	Dialog    lipgloss.Style
}

// DefaultStyles returns the default dashboard styles.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		Tab:       lipgloss.NewStyle().Padding(0, 1).Foreground(muted),
		ActiveTab: lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(primary),
		Label:     lipgloss.NewStyle().Width(12).Foreground(muted),
		Help:      lipgloss.NewStyle().Foreground(muted),
		Error:     lipgloss.NewStyle().Foreground(destructive),
		Success:   lipgloss.NewStyle().Foreground(accent),
		Notice:    lipgloss.NewStyle().Foreground(warning),
		Dialog:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
	}
}
