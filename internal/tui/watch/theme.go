package watch

import "github.com/charmbracelet/lipgloss"

// Theme holds the lipgloss styles for the watch view.
type Theme struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Ok       lipgloss.Style
	Denied   lipgloss.Style
	Failed   lipgloss.Style
	Muted    lipgloss.Style
	ErrorBar lipgloss.Style
}

// NewDefaultTheme returns the default color scheme.
func NewDefaultTheme() Theme {
	return Theme{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245")),
		Ok:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Denied:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Failed:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		ErrorBar: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

// outcomeStyle maps a dispatch outcome to its display style.
func (t Theme) outcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case "dispatched":
		return t.Ok
	case "unauthorized", "not_found":
		return t.Denied
	default:
		return t.Failed
	}
}
