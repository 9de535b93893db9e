package fakebackend

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// Frame is one text message received on the event stream.
type Frame struct {
	At   time.Time
	Data []byte
}

// JSON decodes the frame into a generic map.
func (f Frame) JSON() map[string]interface{} {
	var m map[string]interface{}
	json.Unmarshal(f.Data, &m)
	return m
}

type streamRecorder struct {
	mu      sync.Mutex
	frames  []Frame
	header  http.Header
	path    string
	closed  bool
	connect time.Time
}

func (b *Backend) handleStreamWS(w http.ResponseWriter, r *http.Request) {
	if !authorize(r, DistrKey) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	b.stream.mu.Lock()
	b.stream.header = r.Header.Clone()
	b.stream.path = r.URL.Path
	b.stream.connect = time.Now()
	b.stream.mu.Unlock()

	if b.StreamHandler != nil {
		b.StreamHandler(conn, r)
		return
	}
	b.echoStream(conn)
}

// echoStream records frames until the client sends {"cmd":"close"} or the
// connection drops, acknowledging each state event.
func (b *Backend) echoStream(conn *websocket.Conn) {
	for {
		_, data, err := b.ReadFrame(conn)
		if err != nil {
			return
		}
		var msg map[string]interface{}
		if json.Unmarshal(data, &msg) != nil {
			continue
		}
		if msg["cmd"] == "close" {
			b.stream.mu.Lock()
			b.stream.closed = true
			b.stream.mu.Unlock()
			// Keep reading so the client's close frame gets its reply.
			continue
		}
		if ev, _ := msg["event"].(string); ev == "" {
			conn.WriteJSON(map[string]interface{}{"err": "event is required", "status_code": 400})
			continue
		}
		conn.WriteJSON(map[string]interface{}{"ok": true})
	}
}

// ReadFrame reads one message from conn and records it. Custom stream
// handlers use it so Frames sees their traffic too.
func (b *Backend) ReadFrame(conn *websocket.Conn) (int, []byte, error) {
	mt, data, err := conn.ReadMessage()
	if err != nil {
		return mt, data, err
	}
	b.stream.mu.Lock()
	b.stream.frames = append(b.stream.frames, Frame{At: time.Now(), Data: data})
	b.stream.mu.Unlock()
	return mt, data, nil
}

// Frames returns the stream messages received so far.
func (b *Backend) Frames() []Frame {
	b.stream.mu.Lock()
	defer b.stream.mu.Unlock()
	out := make([]Frame, len(b.stream.frames))
	copy(out, b.stream.frames)
	return out
}

// StreamHeader returns the handshake headers of the last stream connection.
func (b *Backend) StreamHeader() http.Header {
	b.stream.mu.Lock()
	defer b.stream.mu.Unlock()
	return b.stream.header
}

// StreamPath returns the request path of the last stream connection.
func (b *Backend) StreamPath() string {
	b.stream.mu.Lock()
	defer b.stream.mu.Unlock()
	return b.stream.path
}

// CloseRequested reports whether a {"cmd":"close"} message arrived.
func (b *Backend) CloseRequested() bool {
	b.stream.mu.Lock()
	defer b.stream.mu.Unlock()
	return b.stream.closed
}

// WaitFrames polls until at least n frames have arrived.
func (b *Backend) WaitFrames(t *testing.T, n int, timeout time.Duration) []Frame {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if frames := b.Frames(); len(frames) >= n {
			return frames
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d stream frames; got %d", n, len(b.Frames()))
	return nil
}
