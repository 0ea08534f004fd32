package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles shared by prompts and command output
type Styles struct {
	Title   lipgloss.Style
	Active  lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles returns the application styles. With color false every style renders plain text.
func NewStyles(color bool) Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return Styles{
			Title:   plain,
			Active:  plain,
			Muted:   plain,
			Success: plain,
			Warning: plain,
			Error:   plain,
		}
	}

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("69")),
		Active: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}
