package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n10s/simctl/internal/client"
	"github.com/n10s/simctl/internal/testutil/fakebackend"
)

var corpus = []string{"The gate opens.", "Rain falls.", "A bell rings.", "Smoke rises."}

// fakeConn answers a close frame with a normal close, like a polite peer.
type fakeConn struct {
	mu       sync.Mutex
	writes   [][]byte
	controls int
	closed   chan struct{}
	once     sync.Once
}

func newFakeConn() *fakeConn { return &fakeConn{closed: make(chan struct{})} }

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
}

func (c *fakeConn) WriteControl(int, []byte, time.Time) error {
	c.mu.Lock()
	c.controls++
	c.mu.Unlock()
	c.Close()
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) Controls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controls
}

func (c *fakeConn) Writes() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.writes...)
}

func testConfig(t *testing.T, interval time.Duration) (Config, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, logs bytes.Buffer
	logger := zerolog.New(&logs)
	return Config{
		URL:          "ws://test/stream/event/ws/sim-1/p-1",
		Interval:     interval,
		CloseTimeout: time.Second,
		Events:       corpus,
		Rand:         rand.New(rand.NewSource(1)),
		Out:          &out,
		ErrOut:       io.Discard,
		Logger:       &logger,
	}, &out, &logs
}

func dialFake(conn *fakeConn) Dialer {
	return func(context.Context) (Conn, error) { return conn, nil }
}

func backendConfig(t *testing.T, b *fakebackend.Backend, interval time.Duration) (Config, *bytes.Buffer, *bytes.Buffer) {
	cfg, out, logs := testConfig(t, interval)
	cfg.URL = client.StreamURL(b.URL(), "sim-1", "p-1")
	cfg.Token = fakebackend.DistrKey
	return cfg, out, logs
}

type runResult struct {
	stats Stats
	err   error
}

func runAsync(ctx context.Context, s *Session) <-chan runResult {
	ch := make(chan runResult, 1)
	go func() {
		stats, err := s.Run(ctx)
		ch <- runResult{stats, err}
	}()
	return ch
}

func wait(t *testing.T, ch <-chan runResult) runResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish")
		return runResult{}
	}
}

func TestNewValidates(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero interval", Config{URL: "ws://x", Events: corpus}},
		{"negative interval", Config{URL: "ws://x", Events: corpus, Interval: -time.Second}},
		{"empty corpus", Config{URL: "ws://x", Interval: time.Second}},
		{"no url or dialer", Config{Events: corpus, Interval: time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestSendsAtIntervalAgainstBackend(t *testing.T) {
	b := fakebackend.Start(t)
	interval := 100 * time.Millisecond
	cfg, out, _ := backendConfig(t, b, interval)
	s, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	start := time.Now()
	done := runAsync(ctx, s)

	frames := b.WaitFrames(t, 3, 3*time.Second)
	cancel()
	res := wait(t, done)
	require.NoError(t, res.err)

	for k, f := range frames[:3] {
		assert.GreaterOrEqual(t, f.At.Sub(start), time.Duration(k+1)*interval, "frame %d too early", k)
		msg := f.JSON()
		assert.Equal(t, "state", msg["event_kind"])
		assert.Contains(t, corpus, msg["event"])
	}

	assert.True(t, b.CloseRequested())
	assert.Equal(t, StateClosed, s.State())
	assert.Contains(t, out.String(), "Connecting to "+cfg.URL)
	assert.Contains(t, out.String(), "Loaded 4 game events")
	assert.Contains(t, out.String(), "Connected, starting event stream")
}

func TestCancelAfterTwoSends(t *testing.T) {
	b := fakebackend.Start(t)
	cfg, out, _ := backendConfig(t, b, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var updates []Update
	cfg.Observer = func(u Update) {
		updates = append(updates, u)
		if u.Kind == UpdateSent && u.Stats.Sent == 2 {
			cancel()
		}
	}
	s, err := New(cfg)
	require.NoError(t, err)

	res := wait(t, runAsync(ctx, s))
	require.NoError(t, res.err)
	assert.Equal(t, 2, res.stats.Sent)
	assert.Equal(t, 0, res.stats.Errors)
	assert.Contains(t, out.String(), "Stats: sent=2 errors=0")

	frames := b.Frames()
	require.Len(t, frames, 3)
	assert.Equal(t, map[string]interface{}{"cmd": "close"}, frames[2].JSON())

	last := updates[len(updates)-1]
	assert.Equal(t, UpdateDone, last.Kind)
	assert.Equal(t, 2, last.Stats.Sent)
	assert.NoError(t, last.Err)

	var states []State
	for _, u := range updates {
		if u.Kind == UpdateState {
			states = append(states, u.State)
		}
	}
	assert.Equal(t, []State{StateOpen, StateClosing, StateClosed}, states)
}

func TestServerErrorsCountedAndCapped(t *testing.T) {
	b := fakebackend.Start(t)
	b.StreamHandler = func(conn *websocket.Conn, _ *http.Request) {
		for i := 0; i < 7; i++ {
			conn.WriteJSON(map[string]interface{}{"err": "rate limited", "status_code": 429})
		}
		conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		conn.WriteJSON(map[string]interface{}{"err": ""})
		conn.WriteJSON(map[string]interface{}{"err": false})
		conn.WriteJSON(map[string]interface{}{"ok": true})
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
	cfg, out, logs := backendConfig(t, b, time.Hour)
	var errOut bytes.Buffer
	cfg.ErrOut = &errOut
	// Reports must not depend on the log level.
	silent := zerolog.New(logs).Level(zerolog.Disabled)
	cfg.Logger = &silent
	s, err := New(cfg)
	require.NoError(t, err)

	res := wait(t, runAsync(context.Background(), s))
	require.NoError(t, res.err)
	assert.Equal(t, 7, res.stats.Errors)
	assert.Equal(t, 0, res.stats.Sent)
	assert.Equal(t, 5, strings.Count(errOut.String(), "Server error: rate limited 429\n"))
	assert.Empty(t, logs.String())
	assert.Contains(t, out.String(), "Stats: sent=0 errors=7")
	assert.False(t, b.CloseRequested())
}

func TestAbnormalCloseIsTransportError(t *testing.T) {
	b := fakebackend.Start(t)
	b.StreamHandler = func(conn *websocket.Conn, _ *http.Request) {
		conn.UnderlyingConn().Close()
	}
	cfg, out, logs := backendConfig(t, b, time.Hour)
	s, err := New(cfg)
	require.NoError(t, err)

	res := wait(t, runAsync(context.Background(), s))
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, ErrTransport))
	var terr *TransportError
	require.ErrorAs(t, res.err, &terr)
	assert.Equal(t, "read", terr.Op)
	assert.Contains(t, logs.String(), "WebSocket error")
	assert.Contains(t, out.String(), "Stats: sent=0 errors=0")
}

func TestDialFailure(t *testing.T) {
	cfg, out, _ := testConfig(t, time.Second)
	cfg.Dial = func(context.Context) (Conn, error) { return nil, errors.New("connection refused") }
	s, err := New(cfg)
	require.NoError(t, err)

	stats, err := s.Run(context.Background())
	require.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 0, stats.Sent)
	assert.Contains(t, out.String(), "Stats: sent=0")
	assert.Equal(t, StateClosed, s.State())
}

func TestDialCancelledIsGraceful(t *testing.T) {
	cfg, _, _ := testConfig(t, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cfg.Dial = func(ctx context.Context) (Conn, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	s, err := New(cfg)
	require.NoError(t, err)

	_, err = s.Run(ctx)
	assert.NoError(t, err)
}

func TestNotOpenAtTickStopsSending(t *testing.T) {
	conn := newFakeConn()
	cfg, _, _ := testConfig(t, 20*time.Millisecond)
	cfg.Dial = dialFake(conn)

	var s *Session
	cfg.Observer = func(u Update) {
		if u.Kind == UpdateState && u.State == StateOpen {
			s.open.Store(false)
		}
	}
	s, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	stats, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Sent)
	assert.Empty(t, conn.Writes())
	assert.Equal(t, 0, conn.Controls())
}

func TestIntervalScenario(t *testing.T) {
	// Scaled down from 3000ms over 10s.
	conn := newFakeConn()
	cfg, _, _ := testConfig(t, 200*time.Millisecond)
	cfg.Dial = dialFake(conn)
	s, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 700*time.Millisecond)
	defer cancel()
	stats, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Sent)
	// Three events then the close command.
	assert.Len(t, conn.Writes(), 4)
	assert.Equal(t, 1, conn.Controls())
}

func TestIntervalWarning(t *testing.T) {
	tests := []struct {
		interval time.Duration
		warn     bool
	}{
		{50 * time.Millisecond, true},
		{1999 * time.Millisecond, true},
		{2 * time.Second, false},
		{3 * time.Second, false},
	}
	for _, tt := range tests {
		t.Run(tt.interval.String(), func(t *testing.T) {
			cfg, _, logs := testConfig(t, tt.interval)
			cfg.Dial = dialFake(newFakeConn())
			s, err := New(cfg)
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err = s.Run(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.warn, strings.Contains(logs.String(), "below 2000ms"))
		})
	}
}

func TestSameSeedSamePicks(t *testing.T) {
	picks := func(seed int64) []string {
		cfg, _, _ := testConfig(t, 5*time.Millisecond)
		cfg.Rand = rand.New(rand.NewSource(seed))
		cfg.Dial = dialFake(newFakeConn())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		var got []string
		cfg.Observer = func(u Update) {
			if u.Kind == UpdateSent {
				got = append(got, u.Event)
				if len(got) == 6 {
					cancel()
				}
			}
		}
		s, err := New(cfg)
		require.NoError(t, err)
		_, err = s.Run(ctx)
		require.NoError(t, err)
		return got
	}

	assert.Equal(t, picks(42), picks(42))
	assert.Len(t, picks(7), 6)
}

func TestRunTwice(t *testing.T) {
	cfg, _, _ := testConfig(t, time.Second)
	cfg.Dial = dialFake(newFakeConn())
	s, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Run(ctx)
	require.NoError(t, err)
	_, err = s.Run(ctx)
	assert.Error(t, err)
}
