package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/n10s/simctl/internal/theme"
)

const maxEntries = 200

// Log entry kinds.
const (
	KindSent  = "sent"
	KindError = "err"
	KindConn  = "conn"
)

// Entry is a single event log line.
type Entry struct {
	Time    time.Time
	Kind    string
	Message string
}

// EventLog is a capped, scrollable log of stream activity.
type EventLog struct {
	Entries []Entry
	Offset  int // scroll offset (from bottom)
}

// Add appends a log entry and caps the buffer.
func (l *EventLog) Add(kind, message string) {
	l.Entries = append(l.Entries, Entry{
		Time:    time.Now(),
		Kind:    kind,
		Message: message,
	})
	if len(l.Entries) > maxEntries {
		l.Entries = l.Entries[len(l.Entries)-maxEntries:]
	}
	l.Offset = 0
}

func (l *EventLog) ScrollUp(n int) {
	l.Offset += n
	max := len(l.Entries) - 1
	if max < 0 {
		max = 0
	}
	if l.Offset > max {
		l.Offset = max
	}
}

func (l *EventLog) ScrollDown(n int) {
	l.Offset -= n
	if l.Offset < 0 {
		l.Offset = 0
	}
}

// View renders the visible window of the log, newest at the bottom.
func (l EventLog) View(width, lines int) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}
	if lines < 3 {
		lines = 3
	}

	title := theme.StyleHeader.Render(" EVENT LOG ")
	panel := lipgloss.NewStyle().
		Width(innerW).
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorder)

	if len(l.Entries) == 0 {
		body := theme.StyleDimmed.Render("  Nothing sent yet.")
		return panel.Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
	}

	end := len(l.Entries) - l.Offset
	start := end - lines
	if start < 0 {
		start = 0
	}

	var rows []string
	for i := start; i < end; i++ {
		e := l.Entries[i]
		ts := theme.StyleDimmed.Render(e.Time.Format("15:04:05.000"))
		kind := lipgloss.NewStyle().Foreground(kindColor(e.Kind)).Width(4).Render(e.Kind)
		msg := e.Message
		if innerW > 25 {
			msg = ansi.Truncate(msg, innerW-22, "...")
		}
		rows = append(rows, fmt.Sprintf("%s %s %s", ts, kind, msg))
	}

	more := ""
	if l.Offset > 0 {
		more = theme.StyleDimmed.Render(fmt.Sprintf(" ↓ %d more", l.Offset))
	}
	return panel.Render(lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n"), more))
}

func kindColor(kind string) lipgloss.Color {
	switch kind {
	case KindSent:
		return theme.ColorOpen
	case KindError:
		return theme.ColorDanger
	case KindConn:
		return theme.ColorConnecting
	default:
		return theme.ColorDimmed
	}
}
