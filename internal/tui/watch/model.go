// Package watch implements the `catapult history watch` terminal UI: a
// live view of recent dispatch attempts read straight from the history
// store.
package watch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattjoyce/catapult/internal/history"
)

const (
	refreshInterval = 2 * time.Second
	maxRows         = 30
)

// HistorySource is the read side of the history store.
type HistorySource interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
	Counts(ctx context.Context) (map[string]int, error)
}

// Model is the BubbleTea model for the watch TUI.
type Model struct {
	source HistorySource

	width  int
	height int

	entries   []history.Entry
	counts    map[string]int
	lastError string

	spinner spinner.Model
	theme   Theme
}

type refreshMsg struct {
	entries []history.Entry
	counts  map[string]int
	err     error
}

type tickMsg time.Time

// New creates a watch model over a history source.
func New(source HistorySource) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &Model{
		source:  source,
		spinner: sp,
		theme:   NewDefaultTheme(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.refresh(),
		m.spinner.Tick,
		tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) }),
		tea.EnterAltScreen,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.refresh()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		return m, tea.Batch(
			m.refresh(),
			tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) }),
		)

	case refreshMsg:
		if msg.err != nil {
			m.lastError = msg.err.Error()
			return m, nil
		}
		m.entries = msg.entries
		m.counts = msg.counts
		m.lastError = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.Title.Render("catapult"))
	b.WriteString("  ")
	b.WriteString(m.spinner.View())
	b.WriteString("  ")
	b.WriteString(m.theme.Muted.Render("dispatch history"))
	b.WriteString("\n\n")

	b.WriteString(m.renderCounts())
	b.WriteString("\n\n")

	b.WriteString(m.theme.Header.Render(fmt.Sprintf("%-20s %-14s %-16s %s", "TIME", "HOOK", "OUTCOME", "DETAIL")))
	b.WriteString("\n")

	rows := m.entries
	if len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	for _, e := range rows {
		detail := ""
		if e.Command != nil {
			detail = *e.Command
		} else if e.Error != nil {
			detail = *e.Error
		}
		if m.width > 56 && len(detail) > m.width-56 {
			detail = detail[:m.width-56]
		}
		line := fmt.Sprintf("%-20s %-14s %-16s %s",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Hook,
			m.theme.outcomeStyle(e.Outcome).Render(e.Outcome),
			m.theme.Muted.Render(detail),
		)
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(rows) == 0 {
		b.WriteString(m.theme.Muted.Render("no dispatches recorded yet"))
		b.WriteString("\n")
	}

	if m.lastError != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.ErrorBar.Render("error: " + m.lastError))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Muted.Render("q quit · r refresh"))
	b.WriteString("\n")

	return b.String()
}

// renderCounts shows per-outcome totals in a stable order.
func (m Model) renderCounts() string {
	if len(m.counts) == 0 {
		return m.theme.Muted.Render("no activity")
	}

	outcomes := make([]string, 0, len(m.counts))
	for o := range m.counts {
		outcomes = append(outcomes, o)
	}
	sort.Strings(outcomes)

	parts := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		parts = append(parts, m.theme.outcomeStyle(o).Render(fmt.Sprintf("%s %d", o, m.counts[o])))
	}
	return strings.Join(parts, m.theme.Muted.Render(" · "))
}

// refresh loads the latest entries and counts off the UI loop.
func (m Model) refresh() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		entries, err := source.Recent(ctx, maxRows)
		if err != nil {
			return refreshMsg{err: err}
		}
		counts, err := source.Counts(ctx)
		if err != nil {
			return refreshMsg{err: err}
		}
		return refreshMsg{entries: entries, counts: counts}
	}
}

// Run starts the TUI and blocks until it exits.
func Run(source HistorySource) error {
	_, err := tea.NewProgram(New(source), tea.WithAltScreen()).Run()
	return err
}
