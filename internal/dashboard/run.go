package dashboard

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/n10s/simctl/internal/stream"
)

type sessionResult struct {
	stats stream.Stats
	err   error
}

// Run streams with cfg behind the dashboard until the session ends. The
// session's console output and logs are silenced; the dashboard shows them.
// The final stats are returned for the caller to print.
func Run(ctx context.Context, cfg stream.Config, opts ...tea.ProgramOption) (stream.Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(cfg.URL, cfg.Interval, cancel)
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)

	nop := zerolog.Nop()
	cfg.Out = io.Discard
	cfg.ErrOut = io.Discard
	cfg.Logger = &nop
	cfg.Observer = func(u stream.Update) { p.Send(UpdateMsg(u)) }

	session, err := stream.New(cfg)
	if err != nil {
		return stream.Stats{}, err
	}

	results := make(chan sessionResult, 1)
	go func() {
		stats, err := session.Run(ctx)
		results <- sessionResult{stats, err}
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		res := <-results
		return res.stats, eris.Wrap(err, "run dashboard")
	}

	// A quit without a finished session (program killed) still stops it.
	cancel()
	res := <-results
	return res.stats, res.err
}
