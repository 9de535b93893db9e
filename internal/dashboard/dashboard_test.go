package dashboard

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/n10s/simctl/internal/client"
	"github.com/n10s/simctl/internal/stream"
	"github.com/n10s/simctl/internal/testutil/fakebackend"
)

func TestAddEntry(t *testing.T) {
	var l EventLog
	l.Add(KindSent, "Rain falls.")
	if len(l.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(l.Entries))
	}
	if l.Entries[0].Kind != KindSent {
		t.Errorf("expected kind %q, got %q", KindSent, l.Entries[0].Kind)
	}
}

func TestMaxEntries(t *testing.T) {
	var l EventLog
	for i := 0; i < maxEntries+50; i++ {
		l.Add(KindSent, "msg")
	}
	if len(l.Entries) != maxEntries {
		t.Errorf("expected %d entries, got %d", maxEntries, len(l.Entries))
	}
}

func TestScrollUpDown(t *testing.T) {
	var l EventLog
	for i := 0; i < 20; i++ {
		l.Add(KindSent, "msg")
	}
	l.ScrollUp(5)
	if l.Offset != 5 {
		t.Errorf("expected offset 5, got %d", l.Offset)
	}
	l.ScrollDown(3)
	if l.Offset != 2 {
		t.Errorf("expected offset 2, got %d", l.Offset)
	}
	l.ScrollDown(10)
	if l.Offset != 0 {
		t.Errorf("expected offset 0, got %d", l.Offset)
	}
	l.ScrollUp(100)
	if l.Offset != 19 {
		t.Errorf("expected offset capped at 19, got %d", l.Offset)
	}
	l.Add(KindSent, "new")
	if l.Offset != 0 {
		t.Error("adding entry should reset scroll to 0")
	}
}

func TestEventLogView(t *testing.T) {
	var l EventLog
	if v := l.View(80, 10); !strings.Contains(v, "Nothing sent yet") {
		t.Error("empty view should say nothing was sent")
	}
	l.Add(KindSent, "The gate opens.")
	l.Add(KindError, "Server error: rate limited 429")
	v := l.View(80, 10)
	for _, want := range []string{"The gate opens.", "rate limited 429"} {
		if !strings.Contains(v, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestEventLogTruncatesByWidth(t *testing.T) {
	var l EventLog
	l.Add(KindSent, strings.Repeat("é", 40))
	l.Add(KindError, strings.Repeat("世", 40))
	v := l.View(40, 5)
	if !utf8.ValidString(v) {
		t.Fatal("view should stay valid UTF-8 after truncation")
	}
	if !strings.Contains(v, strings.Repeat("é", 11)+"...") {
		t.Errorf("long entry should be cut to the panel width, got:\n%s", v)
	}
	if strings.Contains(v, strings.Repeat("é", 12)) {
		t.Error("truncated entry is wider than the panel allows")
	}
}

func TestGaugeSettlesOnTarget(t *testing.T) {
	g := NewGauge(500 * time.Millisecond)
	g.SetTarget(2)
	for i := 0; i < gaugeFPS*10 && !g.Settled(); i++ {
		g.Step()
	}
	if !g.Settled() {
		t.Fatalf("gauge did not settle; at %.3f", g.Value())
	}
	if v := g.View(40); !strings.Contains(v, "2.00/s") {
		t.Errorf("view = %q, want rate 2.00/s", v)
	}
}

func TestGaugeScaleGrows(t *testing.T) {
	g := NewGauge(3 * time.Second)
	if g.scale != 1 {
		t.Fatalf("scale = %v, want 1", g.scale)
	}
	g.SetTarget(5)
	if g.scale != 5 {
		t.Errorf("scale = %v, want 5", g.scale)
	}
}

func TestModelTracksUpdates(t *testing.T) {
	m := New("ws://x/stream/event/ws/s/p", time.Second, nil)

	next, cmd := m.Update(UpdateMsg(stream.Update{Kind: stream.UpdateState, State: stream.StateOpen}))
	m = next.(Model)
	if cmd == nil {
		t.Error("first update should start the gauge animation")
	}

	next, _ = m.Update(UpdateMsg(stream.Update{
		Kind:  stream.UpdateSent,
		State: stream.StateOpen,
		Event: "Smoke rises.",
		Stats: stream.Stats{Sent: 1, Elapsed: time.Second},
	}))
	m = next.(Model)
	next, _ = m.Update(UpdateMsg(stream.Update{
		Kind:        stream.UpdateServerError,
		State:       stream.StateOpen,
		ServerError: stream.ServerError{Err: "slow down", StatusCode: "429"},
		Stats:       stream.Stats{Sent: 1, Errors: 1, Elapsed: time.Second},
	}))
	m = next.(Model)

	if m.Stats().Sent != 1 || m.Stats().Errors != 1 {
		t.Errorf("stats = %+v", m.Stats())
	}
	m.width, m.height = 100, 30
	v := m.View()
	for _, want := range []string{"open", "Smoke rises.", "Server error: slow down 429", "every 1000ms"} {
		if !strings.Contains(v, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestModelQuitCancelsThenWaitsForDone(t *testing.T) {
	cancelled := 0
	m := New("ws://x", time.Second, func() { cancelled++ })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = next.(Model)
	if cancelled != 1 {
		t.Fatalf("cancel called %d times, want 1", cancelled)
	}
	if cmd != nil {
		t.Error("quit key should wait for the session instead of quitting")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cancelled != 1 {
		t.Errorf("second quit should not cancel again")
	}

	doneErr := errors.New("boom")
	next, cmd = m.Update(UpdateMsg(stream.Update{Kind: stream.UpdateDone, State: stream.StateClosed, Err: doneErr}))
	m = next.(Model)
	if !m.Done() || m.err != doneErr {
		t.Error("done update should be recorded")
	}
	if cmd == nil {
		t.Fatal("done update should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("done update should return tea.Quit")
	}
}

func TestRunAgainstBackend(t *testing.T) {
	b := fakebackend.Start(t)
	ctx, cancel := context.WithTimeout(context.Background(), 450*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	stats, err := Run(ctx, stream.Config{
		URL:      client.StreamURL(b.URL(), "sim-1", "p-1"),
		Token:    fakebackend.DistrKey,
		Interval: 100 * time.Millisecond,
		Events:   []string{"A bell rings."},
		Rand:     rand.New(rand.NewSource(3)),
	}, tea.WithInput(nil), tea.WithOutput(&out), tea.WithoutSignalHandler())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Sent < 2 {
		t.Errorf("sent = %d, want at least 2", stats.Sent)
	}
	if !b.CloseRequested() {
		t.Error("close command was not sent")
	}
}
