package bridge

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sprealms/bridge/internal/protocol"
	"github.com/sprealms/bridge/internal/ratelimit"
)

// Application-level close codes.
const (
	CloseUnauthorized = 4401
	CloseUnknownPath  = 4404
	CloseRateLimited  = 4412
)

const writeTimeout = 5 * time.Second

type role int

const (
	roleUnresolved role = iota
	rolePlugin
	roleAdmin
)

func (r role) String() string {
	switch r {
	case rolePlugin:
		return "plugin"
	case roleAdmin:
		return "admin"
	}
	return "unresolved"
}

// conn wraps one accepted socket. Role and realm are resolved once
// during classification and are immutable afterwards: a socket that
// changes its declared realm mid-session keeps its original one.
type conn struct {
	id         string
	ws         *websocket.Conn
	logger     *slog.Logger
	limiter    *ratelimit.Limiter
	remoteAddr string

	role  role
	realm string

	// Write serialization
	writeMu sync.Mutex

	// Read loop output
	messages chan []byte
	errs     chan error
	done     chan struct{}
}

// ID returns the connection's opaque identifier.
func (c *conn) ID() string { return c.id }

// Send writes one text frame. Safe for concurrent use; a failed send
// marks the peer dead for the Broker's pruning.
func (c *conn) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *conn) sendFrame(f protocol.Frame) {
	if err := c.Send(f.Marshal()); err != nil {
		c.logger.Debug("reply send failed", "type", f.Type(), "error", err)
	}
}

// closeWith sends a close frame with an application close code, then
// tears the socket down.
func (c *conn) closeWith(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.ws.Close()
}

// readLoop reads frames from the socket into the messages channel until
// the connection fails or the handler is done.
func (c *conn) readLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case c.errs <- err:
			case <-c.done:
			}
			return
		}

		select {
		case c.messages <- data:
		case <-c.done:
			return
		}
	}
}
