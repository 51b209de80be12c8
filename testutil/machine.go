package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeticulousHome/meticulous-go/config"
)

// Frame is one envelope the machine read from a connected client.
type Frame struct {
	Event     string          `json:"event"`
	ID        string          `json:"id,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// MockMachine simulates a machine on the local network. REST endpoints are
// registered per test via Handle; the stream endpoint is always live.
type MockMachine struct {
	URL string

	server   *httptest.Server
	mux      *http.ServeMux
	upgrader websocket.Upgrader

	mu           sync.Mutex
	conns        []*websocket.Conn
	frames       []Frame
	upgradeFails int
	dials        int
}

// MachineOption configures the mock machine
type MachineOption func(*MockMachine)

// WithFailedUpgrades makes the machine reject the first n stream upgrade
// attempts with a 503, for exercising retry paths.
func WithFailedUpgrades(n int) MachineOption {
	return func(m *MockMachine) {
		m.upgradeFails = n
	}
}

// NewMockMachine starts a machine double and registers its cleanup.
func NewMockMachine(t testing.TB, opts ...MachineOption) *MockMachine {
	t.Helper()

	m := &MockMachine{
		mux: http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(m)
	}

	m.mux.HandleFunc("/api/v1/stream", m.handleStream)
	m.server = httptest.NewServer(m.mux)
	m.URL = m.server.URL

	t.Cleanup(m.Close)
	return m
}

// Config returns a configuration pointing at the mock machine.
func (m *MockMachine) Config() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Host = m.URL
	return cfg
}

// Handle registers a REST endpoint.
func (m *MockMachine) Handle(pattern string, handler http.HandlerFunc) {
	m.mux.HandleFunc(pattern, handler)
}

// HandleJSON registers a REST endpoint answering every request with v.
func (m *MockMachine) HandleJSON(pattern string, v any) {
	m.Handle(pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	})
}

func (m *MockMachine) handleStream(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.dials++
	if m.upgradeFails > 0 {
		m.upgradeFails--
		m.mu.Unlock()
		http.Error(w, "machine busy", http.StatusServiceUnavailable)
		return
	}
	m.mu.Unlock()

	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	m.mu.Lock()
	m.conns = append(m.conns, conn)
	m.mu.Unlock()

	go m.readFrames(conn)
}

func (m *MockMachine) readFrames(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		m.mu.Lock()
		m.frames = append(m.frames, frame)
		m.mu.Unlock()
	}
}

// Emit pushes one event frame to every connected client.
func (m *MockMachine) Emit(t testing.TB, event string, payload any) {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to encode payload: %v", err)
	}
	frame, err := json.Marshal(Frame{Event: event, Payload: data})
	if err != nil {
		t.Fatalf("Failed to encode frame: %v", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, conn := range m.conns {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			t.Logf("Emit to client failed: %v", err)
		}
	}
}

// EmitRaw pushes raw bytes to every connected client, for malformed-frame
// tests.
func (m *MockMachine) EmitRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, conn := range m.conns {
		_ = conn.WriteMessage(websocket.TextMessage, data)
	}
}

// Frames returns a copy of the envelopes received from clients so far.
func (m *MockMachine) Frames() []Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Frame(nil), m.frames...)
}

// WaitForFrames blocks until the machine has received at least n frames.
func (m *MockMachine) WaitForFrames(t testing.TB, n int) []Frame {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		frames := m.Frames()
		if len(frames) >= n {
			return frames
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timeout waiting for %d frames, got %d", n, len(m.Frames()))
	return nil
}

// WaitForConnection blocks until a stream client is attached. Connect
// returning on the client side does not guarantee the server handler has
// registered the connection yet.
func (m *MockMachine) WaitForConnection(t testing.TB) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.ConnectionCount() > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Timeout waiting for stream connection")
}

// DialCount reports how many stream upgrade attempts the machine has seen.
func (m *MockMachine) DialCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dials
}

// ConnectionCount reports how many stream connections are live.
func (m *MockMachine) ConnectionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conns)
}

// CloseConnections drops every live stream connection, simulating the
// machine going away mid-session.
func (m *MockMachine) CloseConnections() {
	m.mu.Lock()
	conns := m.conns
	m.conns = nil
	m.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}

// Close shuts the machine down.
func (m *MockMachine) Close() {
	m.CloseConnections()
	m.server.Close()
}
