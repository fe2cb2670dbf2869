// Package ui renders a live view of a parallel prime search.
package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"bigrsa/internal/observ"
)

// Event reports search progress to the view. A zero Prime carries only
// updated counters.
type Event struct {
	Worker int
	Prime  string
	Stats  observ.StatsReport
}

type searchModel struct {
	title   string
	want    int
	events  <-chan Event
	spinner spinner.Model
	prog    progress.Model
	found   []foundItem
	stats   observ.StatsReport
	width   int
	done    bool
}

type foundItem struct {
	worker int
	prime  string
}

type eventMsg Event
type doneMsg struct{}

// NewSearchModel returns a Bubble Tea model that shows want slots filling
// up with primes as events arrive. The view quits when events is closed.
func NewSearchModel(title string, want int, events <-chan Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	if want < 1 {
		want = 1
	}
	return &searchModel{
		title:   title,
		want:    want,
		events:  events,
		spinner: sp,
		prog:    prog,
		width:   80,
	}
}

func (m *searchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *searchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *searchModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%d/%d)", m.title, len(m.found), m.want)
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := m.width - statusWidth - 4
	if nameWidth < 20 {
		nameWidth = 20
	}
	for i := 0; i < m.want; i++ {
		status, value := "searching", ""
		if i < len(m.found) {
			status = fmt.Sprintf("worker %d", m.found[i].worker)
			value = m.found[i].prime
		}
		styled := styleStatus(i < len(m.found)).Render(fmt.Sprintf("%12s", status))
		b.WriteString(fmt.Sprintf("  %s %s\n", styled, truncate(value, nameWidth)))
	}

	b.WriteString("\n  ")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(
		strings.TrimSpace(m.stats.Summary())))
	b.WriteString("\n\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *searchModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *searchModel) applyEvent(ev Event) tea.Cmd {
	m.stats = ev.Stats
	if ev.Prime == "" {
		return nil
	}
	m.found = append(m.found, foundItem{worker: ev.Worker, prime: ev.Prime})
	pct := float64(len(m.found)) / float64(m.want)
	if pct > 1 {
		pct = 1
	}
	return m.prog.SetPercent(pct)
}

func styleStatus(found bool) lipgloss.Style {
	if found {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

// RunSearch drives the view until events is closed or ctx ends.
func RunSearch(ctx context.Context, out io.Writer, title string, want int, events <-chan Event) error {
	p := tea.NewProgram(
		NewSearchModel(title, want, events),
		tea.WithContext(ctx),
		tea.WithOutput(out),
		tea.WithInput(nil),
	)
	_, err := p.Run()
	return err
}
