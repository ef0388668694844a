package finnhub

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// State is the connection state of a WSClient.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// WSClient owns one streaming connection to the feed. It does not reconnect
// on its own; callers decide when to Connect again.
type WSClient struct {
	url    string
	dialer *websocket.Dialer
	logger *zap.Logger
	events listeners

	mu    sync.Mutex
	conn  *websocket.Conn
	state State
	gen   uint64 // bumped on every Connect and Close
}

// NewWSClient creates a client for url. A zero handshakeTimeout uses the
// gorilla default dialer timeout.
func NewWSClient(url string, handshakeTimeout time.Duration, logger *zap.Logger) *WSClient {
	dialer := *websocket.DefaultDialer
	if handshakeTimeout > 0 {
		dialer.HandshakeTimeout = handshakeTimeout
	}

	return &WSClient{
		url:    url,
		dialer: &dialer,
		logger: logger,
	}
}

// On registers fn for every event of kind. The returned func removes it.
func (c *WSClient) On(kind EventKind, fn Listener) func() {
	return c.events.add(kind, fn, false)
}

// Once registers fn for the next event of kind only.
func (c *WSClient) Once(kind EventKind, fn Listener) func() {
	return c.events.add(kind, fn, true)
}

// State reports the current connection state.
func (c *WSClient) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect starts dialing the feed in the background. It is a no-op while a
// connection is open or being opened.
func (c *WSClient) Connect() {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	go c.run(gen)
}

func (c *WSClient) run(gen uint64) {
	conn, _, err := c.dialer.Dial(c.url, nil)
	if err != nil {
		c.logger.Error("Failed to connect to WebSocket", zap.Error(err))
		c.mu.Lock()
		current := c.gen == gen
		if current {
			c.state = StateDisconnected
		}
		c.mu.Unlock()
		if current {
			c.events.emit(Event{Kind: EventError, Err: err})
			c.events.emit(Event{Kind: EventClose})
		}
		return
	}

	c.mu.Lock()
	if c.gen != gen {
		// Close was called while dialing
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.state = StateConnected
	c.mu.Unlock()

	c.logger.Info("WebSocket connected")
	c.events.emit(Event{Kind: EventOpen})

	c.listen(gen, conn)
}

func (c *WSClient) listen(gen uint64, conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			current := c.gen == gen
			if current {
				c.conn = nil
				c.state = StateDisconnected
			}
			c.mu.Unlock()

			_ = conn.Close()
			if !current {
				// closed locally, listeners were told by Close
				return
			}

			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
				c.logger.Info("WebSocket disconnected")
			} else {
				c.logger.Error("WebSocket read error", zap.Error(err))
				c.events.emit(Event{Kind: EventError, Err: err})
			}
			c.events.emit(Event{Kind: EventClose})
			return
		}

		c.events.emit(Event{Kind: EventMessage, Data: msg})
	}
}

// Send writes cmd to the feed. It is dropped when no connection is open.
func (c *WSClient) Send(cmd Command) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateConnected || c.conn == nil {
		c.logger.Debug("dropping command, not connected",
			zap.String("type", string(cmd.Type)), zap.String("symbol", cmd.Symbol))
		return
	}

	if err := c.conn.WriteJSON(cmd); err != nil {
		c.logger.Warn("Failed to send command",
			zap.String("type", string(cmd.Type)), zap.String("symbol", cmd.Symbol), zap.Error(err))
	}
}

// Close tears the connection down. Safe to call repeatedly.
func (c *WSClient) Close() {
	c.mu.Lock()
	wasOpen := c.state != StateDisconnected
	conn := c.conn
	c.conn = nil
	c.state = StateDisconnected
	c.gen++
	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
	}
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	if wasOpen {
		c.events.emit(Event{Kind: EventClose})
	}
}
