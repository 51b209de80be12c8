package stream

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/MeticulousHome/meticulous-go/config"
	"github.com/MeticulousHome/meticulous-go/errors"
	"github.com/MeticulousHome/meticulous-go/metric"
	"github.com/MeticulousHome/meticulous-go/pkg/retry"
	"github.com/MeticulousHome/meticulous-go/pkg/throttle"
	"github.com/MeticulousHome/meticulous-go/types"
)

const defaultHandshakeTimeout = 45 * time.Second

// Status describes the connection lifecycle. The numeric values feed the
// connection state gauge directly.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusClosing
)

// String returns a human-readable status
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Client maintains one WebSocket session against the machine's real-time
// channel and routes inbound frames through its subscription table. A
// client is reusable: after Disconnect it can connect again.
type Client struct {
	url          string
	dialer       *websocket.Dialer
	pingInterval time.Duration
	retryCfg     retry.Config
	throttleSpec throttle.Spec

	subs   *subscriptions
	logger *slog.Logger

	coreMetrics    *metric.Metrics
	sessionMetrics *streamMetrics

	onConnect    func()
	onDisconnect func(error)

	status        atomic.Value // Status
	everConnected atomic.Bool

	connectMu sync.Mutex // serializes Connect calls
	mu        sync.Mutex // guards session
	session   *session
}

// session is one live connection with its pumps. The write mutex
// serializes frame writes; gorilla/websocket supports only one writer.
type session struct {
	conn     *websocket.Conn
	writeMu  sync.Mutex
	cancel   context.CancelFunc
	group    *errgroup.Group
	done     chan struct{}
	lastPing atomic.Value // time.Time of the last ping sent
}

func (s *session) write(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(messageType, data)
}

// NewClient builds a stream client for the machine described by cfg. The
// callback set and throttle spec are resolved once here; frames for events
// without a callback are discarded without decoding.
func NewClient(cfg *config.Config, cb Callbacks, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapFatal(err, "stream", "NewClient", "validate configuration")
	}

	c := &Client{
		url:          cfg.WebSocketURL(),
		dialer:       &websocket.Dialer{HandshakeTimeout: defaultHandshakeTimeout},
		pingInterval: cfg.Stream.PingInterval.Std(),
		retryCfg: retry.Config{
			MaxAttempts:  cfg.Stream.ConnectRetries + 1,
			InitialDelay: cfg.Stream.InitialBackoff.Std(),
			MaxDelay:     cfg.Stream.MaxBackoff.Std(),
			Multiplier:   2.0,
		},
		throttleSpec: specFromConfig(cfg.Stream.Throttle),
	}
	c.status.Store(StatusDisconnected)

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.WrapFatal(err, "stream", "NewClient", "apply option")
		}
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "stream")

	c.subs = newSubscriptions(cb, c.throttleSpec, time.Now)
	return c, nil
}

// specFromConfig lifts the configured per-kind intervals into a spec.
func specFromConfig(intervals map[string]config.Duration) throttle.Spec {
	if len(intervals) == 0 {
		return throttle.None()
	}
	m := make(map[string]time.Duration, len(intervals))
	for kind, d := range intervals {
		m[kind] = d.Std()
	}
	return throttle.PerKind(m)
}

// URL returns the WebSocket endpoint the client dials.
func (c *Client) URL() string {
	return c.url
}

// Status reports the current connection lifecycle state.
func (c *Client) Status() Status {
	if s, ok := c.status.Load().(Status); ok {
		return s
	}
	return StatusDisconnected
}

// IsConnected reports whether a session is live.
func (c *Client) IsConnected() bool {
	return c.Status() == StatusConnected
}

func (c *Client) setStatus(status Status) {
	c.status.Store(status)
	if c.coreMetrics != nil {
		c.coreMetrics.RecordConnectionState(int(status))
	}
}

// Connect establishes the session using the configured retry policy:
// one attempt plus Stream.ConnectRetries more, sleeping a capped
// exponential backoff between attempts.
func (c *Client) Connect(ctx context.Context) error {
	return c.connect(ctx, c.retryCfg)
}

// ConnectWithRetry establishes the session under an explicit per-call
// policy. retries is the number of attempts after the first, so zero
// means a single attempt with no sleeps. The backoff starts at initial
// and doubles up to max.
func (c *Client) ConnectWithRetry(ctx context.Context, retries int, initial, max time.Duration) error {
	return c.connect(ctx, retry.Config{
		MaxAttempts:  retries + 1,
		InitialDelay: initial,
		MaxDelay:     max,
		Multiplier:   2.0,
	})
}

func (c *Client) connect(ctx context.Context, policy retry.Config) error {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	c.mu.Lock()
	if c.session != nil {
		c.mu.Unlock()
		return errors.WrapInvalid(errors.ErrAlreadyConnected, "stream", "Connect", "check connection")
	}
	c.mu.Unlock()

	c.setStatus(StatusConnecting)
	c.logger.Info("Connecting to machine", "url", c.url)

	var conn *websocket.Conn
	err := retry.Do(ctx, policy, func() error {
		c.sessionMetrics.recordConnectAttempt()
		dialed, _, dialErr := c.dialer.DialContext(ctx, c.url, nil)
		if dialErr != nil {
			c.sessionMetrics.recordConnectFailure()
			c.logger.Debug("Connection attempt failed", "url", c.url, "error", dialErr)
			return dialErr
		}
		conn = dialed
		return nil
	})
	if err != nil {
		c.setStatus(StatusDisconnected)
		c.recordError("connect")
		cause := fmt.Errorf("%w: %w", errors.ErrConnectionFailed, err)
		if !stderrors.Is(err, context.Canceled) && !stderrors.Is(err, context.DeadlineExceeded) {
			cause = fmt.Errorf("%w: %w", errors.ErrMaxRetriesExceeded, cause)
		}
		return errors.WrapTransient(cause, "stream", "Connect", "establish connection")
	}

	c.startSession(conn)
	return nil
}

// startSession installs the connection and launches its pumps. The session
// becomes visible only with the read pump running, so there is no window
// where emits can race an unpumped connection.
func (c *Client) startSession(conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)

	s := &session{
		conn:   conn,
		cancel: cancel,
		group:  group,
		done:   make(chan struct{}),
	}

	group.Go(func() error {
		return c.readPump(gctx, s)
	})
	if c.pingInterval > 0 {
		group.Go(func() error {
			return c.pingLoop(gctx, s)
		})
	}

	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	c.setStatus(StatusConnected)

	if c.everConnected.Swap(true) {
		if c.coreMetrics != nil {
			c.coreMetrics.RecordReconnect()
		}
	}

	c.logger.Info("Connected to machine", "url", c.url, "events", len(c.subs.kinds()))
	if c.onConnect != nil {
		c.onConnect()
	}

	go c.reap(s)
}

// reap waits for the session's pumps to stop and resets client state. The
// pumps dying on their own is the connection-loss path; Disconnect arrives
// here too after cancelling.
func (c *Client) reap(s *session) {
	err := s.group.Wait()
	_ = s.conn.Close()

	c.mu.Lock()
	current := c.session == s
	if current {
		c.session = nil
	}
	c.mu.Unlock()

	if !current {
		close(s.done)
		return
	}

	deliberate := c.Status() == StatusClosing || err == nil || stderrors.Is(err, context.Canceled)
	c.setStatus(StatusDisconnected)
	close(s.done)

	if deliberate {
		c.logger.Info("Disconnected from machine")
		if c.onDisconnect != nil {
			c.onDisconnect(nil)
		}
		return
	}

	c.recordError("connection_lost")
	c.logger.Warn("Connection lost", "error", err)
	if c.onDisconnect != nil {
		c.onDisconnect(err)
	}
}

// Disconnect closes the session and waits for its goroutines to stop.
// Calling it while disconnected is a no-op.
func (c *Client) Disconnect() {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s == nil {
		return
	}

	c.setStatus(StatusClosing)

	// Best-effort close handshake; the machine may already be gone.
	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, deadline)

	s.cancel()
	_ = s.conn.Close()
	<-s.done
}

// readPump reads frames until the connection dies. Frames are delivered
// sequentially in arrival order on this goroutine, so gate state needs no
// locking.
func (c *Client) readPump(ctx context.Context, s *session) error {
	if c.pingInterval > 0 {
		wait := c.pingInterval * 2
		_ = s.conn.SetReadDeadline(time.Now().Add(wait))
		s.conn.SetPongHandler(func(string) error {
			_ = s.conn.SetReadDeadline(time.Now().Add(wait))
			if at, ok := s.lastPing.Load().(time.Time); ok {
				c.sessionMetrics.recordRTT(time.Since(at))
			}
			return nil
		})
	}

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %w", errors.ErrConnectionLost, err)
		}
		if c.pingInterval > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(c.pingInterval * 2))
		}

		c.sessionMetrics.recordFrame("in", len(data))
		c.dispatchFrame(data)
	}
}

// pingLoop keeps the connection alive and feeds the RTT histogram through
// the pong handler.
func (c *Client) pingLoop(ctx context.Context, s *session) error {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.lastPing.Store(time.Now())
			if err := s.write(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("%w: ping failed: %w", errors.ErrConnectionLost, err)
			}
		}
	}
}

// dispatchFrame parses one inbound frame and routes it through the
// subscription table. Malformed frames and unknown events are dropped and
// the channel keeps running.
func (c *Client) dispatchFrame(data []byte) {
	env, err := parseEnvelope(data)
	if err != nil {
		c.recordError("parse")
		c.logger.Debug("Dropping malformed frame", "error", err)
		return
	}

	kind := types.EventKind(env.Event)
	if !kind.Valid() {
		c.logger.Debug("Dropping unknown event", "event", env.Event)
		return
	}

	if c.coreMetrics != nil {
		c.coreMetrics.RecordEventReceived(kind.String())
	}

	delivered, reason, decodeErr := c.subs.dispatch(kind, env.Payload)
	if delivered {
		if c.coreMetrics != nil {
			c.coreMetrics.RecordEventDelivered(kind.String())
		}
		return
	}

	if c.coreMetrics != nil {
		c.coreMetrics.RecordEventDiscarded(kind.String(), reason)
	}
	if decodeErr != nil {
		c.recordError("decode")
		c.logger.Debug("Dropping undecodable payload", "event", kind.String(), "error", decodeErr)
	}
}

// recordError is nil-safe so metrics stay optional.
func (c *Client) recordError(errorType string) {
	if c.coreMetrics == nil {
		return
	}
	c.coreMetrics.RecordError("stream", errorType)
}
