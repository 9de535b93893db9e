// Package stream runs the event stream client: one WebSocket connection that
// sends a random state event every interval until the context is cancelled
// or the connection ends.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/n10s/simctl/internal/client"
)

const (
	DefaultInterval     = 3 * time.Second
	DefaultCloseTimeout = 2 * time.Second

	// WarnInterval is the advisory lower bound on the send interval.
	WarnInterval = 2 * time.Second

	maxReportedErrors = 5
)

// ErrTransport is the cause of every TransportError.
var ErrTransport = errors.New("stream transport failure")

// TransportError ends a session: the dial, a write or the connection itself
// failed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// Conn is the part of *websocket.Conn a session uses.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

type Dialer func(ctx context.Context) (Conn, error)

type Config struct {
	URL   string
	Token string

	Interval     time.Duration
	CloseTimeout time.Duration

	// Events is the corpus each tick picks from.
	Events []string
	Rand   *rand.Rand

	// Dial defaults to client.DialStream against URL with Token.
	Dial Dialer

	// Out receives the console lines and the final stats. Defaults to stdout.
	Out io.Writer
	// ErrOut receives the first few server error reports whatever the log
	// level. Defaults to stderr.
	ErrOut io.Writer
	Logger *zerolog.Logger

	// Observer, when set, is called synchronously from the session loop.
	Observer func(Update)
}

type transportEvent struct {
	data []byte
	err  error
}

// Session owns the counters of one stream. Only the goroutine in Run
// mutates them; the reader goroutine forwards frames over a channel.
type Session struct {
	cfg    Config
	rng    *rand.Rand
	log    *zerolog.Logger
	out    io.Writer
	errOut io.Writer

	state   State
	open    atomic.Bool
	sent    int
	errors  int
	started time.Time
	ran     bool

	events chan transportEvent
	done   chan struct{}
}

func New(cfg Config) (*Session, error) {
	if cfg.Interval <= 0 {
		return nil, eris.Errorf("interval must be positive, got %s", cfg.Interval)
	}
	if len(cfg.Events) == 0 {
		return nil, eris.New("event corpus is empty")
	}
	if cfg.Dial == nil {
		if cfg.URL == "" {
			return nil, eris.New("stream url is required")
		}
		url, token := cfg.URL, cfg.Token
		cfg.Dial = func(ctx context.Context) (Conn, error) {
			conn, err := client.DialStream(ctx, url, token)
			if err != nil {
				return nil, err
			}
			return conn, nil
		}
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = DefaultCloseTimeout
	}

	s := &Session{
		cfg:    cfg,
		rng:    cfg.Rand,
		log:    cfg.Logger,
		out:    cfg.Out,
		errOut: cfg.ErrOut,
		state:  StateConnecting,
		events: make(chan transportEvent),
		done:   make(chan struct{}),
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.log == nil {
		s.log = &log.Logger
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.errOut == nil {
		s.errOut = os.Stderr
	}
	return s, nil
}

// State returns the current lifecycle state. It is only meaningful from the
// Observer or after Run returns.
func (s *Session) State() State { return s.state }

// Stats returns the counters so far.
func (s *Session) Stats() Stats {
	st := Stats{Sent: s.sent, Errors: s.errors}
	if !s.started.IsZero() {
		st.Elapsed = time.Since(s.started)
	}
	return st
}

// Run connects and streams until ctx is cancelled or the connection ends.
// Cancellation is a graceful stop and returns a nil error, as does a normal
// close from the server. Anything else returns a *TransportError.
func (s *Session) Run(ctx context.Context) (Stats, error) {
	if s.ran {
		return s.Stats(), eris.New("session already ran")
	}
	s.ran = true

	if s.cfg.Interval < WarnInterval {
		s.log.Warn().
			Int64("interval_ms", s.cfg.Interval.Milliseconds()).
			Msg("send interval is below 2000ms; the server may reject events at this rate")
	}
	fmt.Fprintf(s.out, "Connecting to %s\n", s.cfg.URL)
	fmt.Fprintf(s.out, "Loaded %d game events\n", len(s.cfg.Events))
	fmt.Fprintf(s.out, "Sending every %dms (Ctrl+C to stop)\n\n", s.cfg.Interval.Milliseconds())

	s.started = time.Now()
	conn, err := s.cfg.Dial(ctx)
	if err != nil {
		if ctx.Err() != nil {
			s.setState(StateClosed)
			return s.finish(nil), nil
		}
		s.log.Error().Err(err).Msg("WebSocket error")
		s.setState(StateClosed)
		terr := &TransportError{Op: "dial", Err: err}
		return s.finish(terr), terr
	}
	defer conn.Close()
	defer close(s.done)

	s.open.Store(true)
	s.setState(StateOpen)
	fmt.Fprintln(s.out, "Connected, starting event stream")
	go s.readLoop(conn)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	tick := ticker.C

	for {
		select {
		case <-ctx.Done():
			ticker.Stop()
			return s.shutdown(conn), nil

		case <-tick:
			if !s.open.Load() {
				ticker.Stop()
				tick = nil
				continue
			}
			if err := s.send(conn); err != nil {
				s.open.Store(false)
				ticker.Stop()
				s.log.Error().Err(err).Msg("WebSocket error")
				s.setState(StateClosed)
				terr := &TransportError{Op: "write", Err: err}
				return s.finish(terr), terr
			}

		case ev := <-s.events:
			if ev.err != nil {
				ticker.Stop()
				return s.closedByPeer(ev.err)
			}
			s.handleMessage(ev.data)
		}
	}
}

// readLoop forwards frames until the connection fails. It never touches the
// counters.
func (s *Session) readLoop(conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.open.Store(false)
			select {
			case s.events <- transportEvent{err: err}:
			case <-s.done:
			}
			return
		}
		select {
		case s.events <- transportEvent{data: data}:
		case <-s.done:
			return
		}
	}
}

func (s *Session) send(conn Conn) error {
	event := s.cfg.Events[s.rng.Intn(len(s.cfg.Events))]
	data, err := json.Marshal(client.StreamMessage{EventKind: client.EventKindState, Event: event})
	if err != nil {
		return eris.Wrap(err, "encode event")
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	s.sent++
	s.emit(Update{Kind: UpdateSent, Event: event})
	return nil
}

func (s *Session) handleMessage(data []byte) {
	se, ok := parseServerError(data)
	if !ok {
		return
	}
	s.errors++
	if s.errors <= maxReportedErrors {
		fmt.Fprintf(s.errOut, "Server error: %s\n", se)
	}
	s.log.Debug().Str("err", se.Err).Str("status_code", se.StatusCode).Int("errors", s.errors).Msg("server error")
	s.emit(Update{Kind: UpdateServerError, ServerError: se})
}

func (s *Session) closedByPeer(err error) (Stats, error) {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		s.log.Info().Msg("stream closed by server")
		s.setState(StateClosed)
		return s.finish(nil), nil
	}
	s.log.Error().Err(err).Msg("WebSocket error")
	s.setState(StateClosed)
	terr := &TransportError{Op: "read", Err: err}
	return s.finish(terr), terr
}

// shutdown is the cancellation path: report, ask the server to close, then
// run one close handshake bounded by CloseTimeout. Write failures here are
// logged and ignored.
func (s *Session) shutdown(conn Conn) Stats {
	s.setState(StateClosing)
	wasOpen := s.open.Swap(false)
	stats := s.report()

	if wasOpen {
		if data, err := json.Marshal(client.NewCloseCommand()); err == nil {
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.log.Debug().Err(err).Msg("send close command")
			}
		}
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.cfg.CloseTimeout)); err != nil {
			s.log.Debug().Err(err).Msg("send close frame")
		} else {
			s.awaitClose()
		}
	}

	s.setState(StateClosed)
	s.emit(Update{Kind: UpdateDone, Stats: stats})
	return stats
}

// awaitClose drains frames until the reader reports the peer's close or the
// timeout passes.
func (s *Session) awaitClose() {
	timer := time.NewTimer(s.cfg.CloseTimeout)
	defer timer.Stop()
	for {
		select {
		case ev := <-s.events:
			if ev.err != nil {
				return
			}
		case <-timer.C:
			s.log.Debug().Dur("timeout", s.cfg.CloseTimeout).Msg("no close reply from server")
			return
		}
	}
}

func (s *Session) finish(err error) Stats {
	stats := s.report()
	s.emit(Update{Kind: UpdateDone, Stats: stats, Err: err})
	return stats
}

func (s *Session) report() Stats {
	stats := s.Stats()
	fmt.Fprintf(s.out, "\n%s\n", stats)
	return stats
}

func (s *Session) setState(next State) {
	if next <= s.state {
		return
	}
	s.state = next
	s.emit(Update{Kind: UpdateState})
}

func (s *Session) emit(u Update) {
	if s.cfg.Observer == nil {
		return
	}
	u.State = s.state
	if u.Kind != UpdateDone {
		u.Stats = s.Stats()
	}
	s.cfg.Observer(u)
}
