// Package dashboard shows a running event stream in a Bubble Tea program:
// connection state, counters, an animated send rate and a log of events and
// server errors.
package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/n10s/simctl/internal/stream"
	"github.com/n10s/simctl/internal/theme"
)

// UpdateMsg carries a session update into the program.
type UpdateMsg stream.Update

type frameMsg time.Time

// Model is the root Bubble Tea model.
type Model struct {
	keys   KeyMap
	width  int
	height int

	target   string
	interval time.Duration
	cancel   func()

	state     stream.State
	stats     stream.Stats
	lastEvent string
	stopping  bool
	done      bool
	err       error

	spinner  spinner.Model
	gauge    Gauge
	log      EventLog
	animates bool
}

// New creates the model. cancel stops the session; the program quits once
// the session reports it is done.
func New(target string, interval time.Duration, cancel func()) Model {
	return Model{
		keys:     DefaultKeyMap(),
		target:   target,
		interval: interval,
		cancel:   cancel,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		gauge:    NewGauge(interval),
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state != stream.StateConnecting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case frameMsg:
		m.gauge.Step()
		if m.gauge.Settled() {
			m.animates = false
			return m, nil
		}
		return m, frame()

	case UpdateMsg:
		return m.handleUpdate(stream.Update(msg))
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.done {
			return m, tea.Quit
		}
		if !m.stopping {
			m.stopping = true
			m.log.Add(KindConn, "stopping stream")
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.log.ScrollUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.log.ScrollDown(1)
		return m, nil
	}
	return m, nil
}

func (m Model) handleUpdate(u stream.Update) (tea.Model, tea.Cmd) {
	m.stats = u.Stats
	m.state = u.State

	switch u.Kind {
	case stream.UpdateState:
		m.log.Add(KindConn, u.State.String())
	case stream.UpdateSent:
		m.lastEvent = u.Event
		m.log.Add(KindSent, u.Event)
	case stream.UpdateServerError:
		m.log.Add(KindError, "Server error: "+u.ServerError.String())
	case stream.UpdateDone:
		m.done = true
		m.err = u.Err
		return m, tea.Quit
	}

	m.gauge.SetTarget(liveRate(u.Stats))
	if m.animates {
		return m, nil
	}
	m.animates = true
	return m, frame()
}

// Stats returns the counters last reported by the session.
func (m Model) Stats() stream.Stats { return m.stats }

func (m Model) Done() bool { return m.done }

func (m Model) View() string {
	width := m.width
	if width < 40 {
		width = 40
	}

	sections := []string{
		m.statusView(width),
		m.countersView(),
		"  " + m.gauge.View(width-2),
		m.log.View(width, m.logLines()),
		theme.StyleDimmed.Render("  j/k:scroll log  q:stop"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) statusView(width int) string {
	name := m.state.String()
	var stateStr string
	if m.state == stream.StateConnecting {
		stateStr = m.spinner.View() + " " + name
	} else {
		stateStr = lipgloss.NewStyle().Foreground(theme.StateColor(name)).Render(theme.StateGlyph(name) + " " + name)
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := stateStr + sep + m.target + sep + fmt.Sprintf("every %dms", m.interval.Milliseconds())

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}

func (m Model) countersView() string {
	errStyle := theme.StyleDimmed
	if m.stats.Errors > 0 {
		errStyle = lipgloss.NewStyle().Foreground(theme.ColorDanger)
	}
	line := fmt.Sprintf("  sent %s  errors %s  elapsed %.1fs",
		theme.StyleHeader.Render(fmt.Sprint(m.stats.Sent)),
		errStyle.Render(fmt.Sprint(m.stats.Errors)),
		m.stats.Elapsed.Seconds())
	if m.lastEvent != "" {
		line += "\n  " + theme.StyleDimmed.Render("last: "+m.lastEvent)
	}
	return line
}

func (m Model) logLines() int {
	if m.height == 0 {
		return 10
	}
	return m.height - 12
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/gaugeFPS, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func liveRate(s stream.Stats) float64 {
	secs := s.Elapsed.Seconds()
	if s.Sent == 0 || secs <= 0 {
		return 0
	}
	return float64(s.Sent) / secs
}
