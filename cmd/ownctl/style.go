package main

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title lipgloss.Style
	label lipgloss.Style
	good  lipgloss.Style
	bad   lipgloss.Style
}

func newStyles() styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{title: plain, label: plain, good: plain, bad: plain}
	}
	return styles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		good:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		bad:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

// row renders "label value" pairs with the labels padded to width.
func (s styles) row(label string, width int, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		s.label.Width(width).Render(label),
		value,
	)
}
