// Package tui provides a Bubble Tea front-end for the focus timer.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ezlockin/internal/core/cycle"
	"ezlockin/internal/ui/display"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	headlineStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("178"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	confirmStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

// Controller is the command surface the TUI drives.
type Controller interface {
	Start() error
	Pause() error
	Resume() error
	ResetCurrentCycle() error
	ResetAllStatistics(confirmed bool) error
	Status() cycle.Status
}

type keyMap struct {
	Start      key.Binding
	Pause      key.Binding
	Reset      key.Binding
	ClearStats key.Binding
	Quit       key.Binding
}

func (keys keyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Start, keys.Pause, keys.Reset, keys.ClearStats, keys.Quit}
}

func (keys keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{keys.ShortHelp()}
}

var defaultKeys = keyMap{
	Start:      key.NewBinding(key.WithKeys("s", "enter"), key.WithHelp("s", "start/resume")),
	Pause:      key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pause")),
	Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset cycle")),
	ClearStats: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear stats")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type eventMsg cycle.Event

type eventsClosedMsg struct{}

// ConfigChangedMsg tells the model the config document was edited.
type ConfigChangedMsg struct{}

// Model is the root Bubble Tea model.
type Model struct {
	controller Controller
	events     <-chan cycle.Event
	status     cycle.Status
	keys       keyMap
	help       help.Model
	bar        progress.Model
	confirming bool
	notice     string
	warning    string
}

// New creates a model driving controller and rendering events.
func New(controller Controller, events <-chan cycle.Event) Model {
	return Model{
		controller: controller,
		events:     events,
		status:     controller.Status(),
		keys:       defaultKeys,
		help:       help.New(),
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithoutPercentage()),
	}
}

func waitForEvent(events <-chan cycle.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return waitForEvent(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 4
		if width > 60 {
			width = 60
		}
		if width > 10 {
			m.bar.Width = width
		}
		m.help.Width = msg.Width
		return m, nil

	case eventMsg:
		event := cycle.Event(msg)
		m.status = event.Status
		switch event.Type {
		case cycle.EventPersistenceError, cycle.EventIdleError:
			m.warning = event.Message
		case cycle.EventIdlePause:
			m.notice = "Paused: " + event.Message
		case cycle.EventSessionLogged:
			m.notice = fmt.Sprintf("Logged %s of focus", display.Countdown(event.Record.Duration))
		case cycle.EventStatsReset:
			m.notice = "Statistics cleared"
		}
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		return m, tea.Quit

	case ConfigChangedMsg:
		m.notice = "Config changed on disk, restart to apply"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirming {
		m.confirming = false
		if msg.String() == "y" || msg.String() == "Y" {
			m.run(func() error { return m.controller.ResetAllStatistics(true) })
		} else {
			m.notice = "Statistics kept"
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Start):
		m.run(m.controller.Start)
	case key.Matches(msg, m.keys.Pause):
		if m.status.Phase == cycle.PhasePaused {
			m.run(m.controller.Resume)
		} else {
			m.run(m.controller.Pause)
		}
	case key.Matches(msg, m.keys.Reset):
		m.run(m.controller.ResetCurrentCycle)
	case key.Matches(msg, m.keys.ClearStats):
		m.confirming = true
	}
	return m, nil
}

func (m *Model) run(command func() error) {
	m.notice = ""
	if err := command(); err != nil {
		var commandErr *cycle.CommandError
		if errors.As(err, &commandErr) {
			m.notice = commandErr.Error()
		} else {
			m.warning = err.Error()
		}
	}
	m.status = m.controller.Status()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("EZLockIn"))
	b.WriteString("\n\n")
	b.WriteString(headlineStyle.Render(display.Headline(m.status)))
	b.WriteString("\n")
	if m.status.Phase != cycle.PhaseIdle {
		b.WriteString(clockStyle.Render(display.Clock(m.status.Remaining)))
		b.WriteString("  ")
		b.WriteString(dimStyle.Render(display.StatusLine(m.status)))
		b.WriteString("\n")
		b.WriteString(m.bar.ViewAs(m.status.Progress()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(display.TotalFocus(m.status.Lifetime))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(display.LongBreakEstimate(m.status)))
	b.WriteString("\n\n")

	if m.confirming {
		b.WriteString(confirmStyle.Render("Clear all statistics? (y/N)"))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(dimStyle.Render(m.notice))
		b.WriteString("\n")
	}
	if m.warning != "" {
		b.WriteString(warnStyle.Render(m.warning))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}
