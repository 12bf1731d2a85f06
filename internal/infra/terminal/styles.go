package terminal

import (
	"github.com/charmbracelet/lipgloss"

	"voice-assistant/internal/domain"
)

type theme struct {
	panel      lipgloss.Style
	header     lipgloss.Style
	label      lipgloss.Style
	text       lipgloss.Style
	status     lipgloss.Style
	errorText  lipgloss.Style
	help       lipgloss.Style
	indicators map[domain.State]lipgloss.Style
}

func newTheme() theme {
	amber := lipgloss.Color("#e99905")
	muted := lipgloss.Color("#6b7280")

	return theme{
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(amber).
			Padding(0, 1),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(amber).Bold(true).Padding(0, 1),
		label:     lipgloss.NewStyle().Foreground(amber),
		text:      lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")),
		status:    lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af")).Italic(true),
		errorText: lipgloss.NewStyle().Foreground(lipgloss.Color("#fca5a5")).Bold(true),
		help:      lipgloss.NewStyle().Foreground(muted),
		indicators: map[domain.State]lipgloss.Style{
			domain.StateIdle:       lipgloss.NewStyle().Foreground(muted),
			domain.StateListening:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true),
			domain.StateProcessing: lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")).Bold(true),
			domain.StateSpeaking:   lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")).Bold(true),
		},
	}
}
