package bridge

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/sprealms/bridge/internal/auth"
	"github.com/sprealms/bridge/internal/metrics"
	"github.com/sprealms/bridge/internal/protocol"
	"github.com/sprealms/bridge/internal/ratelimit"
	"github.com/sprealms/bridge/internal/registry"
)

// Config holds the relay's protocol settings.
type Config struct {
	// Path is the single WebSocket endpoint.
	Path string

	// Token is the shared bearer secret; empty means open mode.
	Token string

	// DefaultRealm is assigned to plugins that announce no realm.
	DefaultRealm string

	RateCount  int
	RateWindow time.Duration

	MaxTextLen   int
	MaxFrameSize int64

	PingInterval time.Duration
	PingTimeout  time.Duration

	// ClassifyTimeout bounds the first-frame read racing role detection.
	ClassifyTimeout time.Duration
}

// Server accepts WebSocket connections and relays frames between
// plugin and admin peers via the Broker.
type Server struct {
	cfg      Config
	auth     *auth.Authenticator
	broker   *registry.Broker
	mets     *metrics.Metrics
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a relay server.
func NewServer(cfg Config, broker *registry.Broker, mets *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:    cfg,
		auth:   auth.New(cfg.Token),
		broker: broker,
		mets:   mets,
		logger: logger,
		upgrader: websocket.Upgrader{
			// Peers are plugins and server-side panel clients, not
			// browsers; origin checks do not apply.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler serving the WebSocket endpoint.
// Upgrade requests to any other path are accepted and immediately
// closed with code 4404.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(s.cfg.Path, s.handleWS)
	r.NotFoundHandler = http.HandlerFunc(s.handleUnknownPath)
	return r
}

func (s *Server) handleUnknownPath(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		http.NotFound(w, r)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.logger.Warn("websocket connection to unknown path", "path", r.URL.Path, "remote_addr", r.RemoteAddr)

	msg := websocket.FormatCloseMessage(CloseUnknownPath, "not_found")
	ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	ws.Close()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	c := &conn{
		id:         uuid.NewString(),
		ws:         ws,
		limiter:    ratelimit.New(s.cfg.RateCount, s.cfg.RateWindow),
		remoteAddr: r.RemoteAddr,
		messages:   make(chan []byte, 16),
		errs:       make(chan error, 1),
		done:       make(chan struct{}),
	}
	c.logger = s.logger.With("conn_id", c.id, "remote_addr", c.remoteAddr)

	// Authentication happens exactly once, before any frame is read.
	if !s.auth.Authorize(r.Header, r.URL.Query()) {
		s.mets.AuthFailures.Inc()
		c.logger.Warn("unauthorized connection")
		c.closeWith(CloseUnauthorized, "unauthorized")
		return
	}

	c.logger.Debug("connection authenticated")
	s.serve(c, r)
}

// serve owns the connection from classification to close. Whatever path
// leads out, the deferred deregistration runs exactly once.
func (s *Server) serve(c *conn, r *http.Request) {
	defer close(c.done)
	defer c.ws.Close()

	c.ws.SetReadLimit(s.cfg.MaxFrameSize)

	readDeadline := s.cfg.PingInterval + s.cfg.PingTimeout
	c.ws.SetReadDeadline(time.Now().Add(readDeadline))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(readDeadline))
	})

	go c.readLoop()
	go s.pingLoop(c)

	first, ok := s.classify(c, r)
	if !ok {
		return
	}

	roleLabel := c.role.String()
	s.mets.ConnectionsActive.WithLabelValues(roleLabel).Inc()
	defer s.mets.ConnectionsActive.WithLabelValues(roleLabel).Dec()

	switch c.role {
	case rolePlugin:
		s.broker.RegisterPlugin(c.realm, c)
		c.logger.Info("plugin registered")
		s.broker.BroadcastAdmins(protocol.PluginPresence(c.realm, true).Marshal())
		defer func() {
			s.broker.DeregisterPlugin(c.realm, c)
			c.logger.Info("plugin disconnected")
			s.broker.BroadcastAdmins(protocol.PluginPresence(c.realm, false).Marshal())
		}()
	case roleAdmin:
		s.broker.AddAdmin(c)
		c.logger.Info("admin connected")
		defer func() {
			s.broker.RemoveAdmin(c)
			c.logger.Info("admin disconnected")
		}()
	}

	// A well-formed classifying frame joins the normal pipeline, so a
	// first-frame hello is not silently dropped.
	if first != nil {
		if !s.processFrame(c, first) {
			return
		}
	}

	for {
		select {
		case data := <-c.messages:
			if !s.processFrame(c, data) {
				return
			}
		case err := <-c.errs:
			c.logger.Debug("connection closed", "error", err)
			return
		}
	}
}

// classify resolves the connection's role by racing a single frame read
// against the classification deadline. A frame whose type is in the
// admin-first-message set classifies the socket as admin; anything else
// (including silence and unparseable JSON) classifies it as plugin.
// Role resolution is one-shot: a misannounced peer keeps the role for
// the life of the socket.
func (s *Server) classify(c *conn, r *http.Request) ([]byte, bool) {
	timer := time.NewTimer(s.cfg.ClassifyTimeout)
	defer timer.Stop()

	var first protocol.Frame
	var raw []byte

	select {
	case data := <-c.messages:
		raw = data
		f, err := protocol.Parse(data)
		if err != nil {
			c.logger.Debug("unparseable classifying frame", "error", err)
		} else {
			first = f
		}
	case <-timer.C:
		c.logger.Debug("no classifying frame before deadline")
	case err := <-c.errs:
		c.logger.Debug("connection ended during classification", "error", err)
		return nil, false
	}

	if first != nil && protocol.IsAdminFirstMessage(first.Type()) {
		c.role = roleAdmin
		c.logger = c.logger.With("role", "admin")
		return raw, true
	}

	c.role = rolePlugin
	c.realm = s.resolveRealm(r, first)
	c.logger = c.logger.With("role", "plugin", "realm", c.realm)
	return raw, true
}

// resolveRealm picks the plugin's realm: X-Realm header, realm query
// parameter, realm field of the classifying frame, then the configured
// default.
func (s *Server) resolveRealm(r *http.Request, first protocol.Frame) string {
	if realm := r.Header.Get("X-Realm"); realm != "" {
		return realm
	}
	if realm := r.URL.Query().Get("realm"); realm != "" {
		return realm
	}
	if first != nil {
		if realm := first.Realm(); realm != "" {
			return realm
		}
	}
	return s.cfg.DefaultRealm
}

// processFrame runs one inbound frame through the steady-state
// pipeline. Returns false when the connection must close.
func (s *Server) processFrame(c *conn, data []byte) bool {
	s.mets.FramesTotal.WithLabelValues(c.role.String()).Inc()

	// All inbound frames count against the window, whatever their type.
	if !c.limiter.Allow() {
		s.mets.RateLimited.Inc()
		c.logger.Warn("rate limit exceeded", "window_frames", c.limiter.Len())
		c.sendFrame(protocol.Error("rate_limited", "message rate limit exceeded"))
		c.closeWith(CloseRateLimited, "rate_limited")
		return false
	}

	// Soft limit: the frame is rejected but the connection stays open.
	if len(data) > s.cfg.MaxTextLen {
		s.mets.OversizedFrames.Inc()
		c.logger.Warn("oversized text frame", "bytes", len(data))
		c.sendFrame(protocol.Error("text_too_long", fmt.Sprintf("text frame exceeds %d bytes", s.cfg.MaxTextLen)))
		return true
	}

	f, err := protocol.Parse(data)
	if err != nil {
		s.mets.ParseErrors.Inc()
		c.logger.Warn("bad json frame", "error", err)
		c.sendFrame(protocol.RawAck(string(data)))
		return true
	}

	switch c.role {
	case rolePlugin:
		s.handlePluginFrame(c, f)
	case roleAdmin:
		s.handleAdminFrame(c, f)
	}
	return true
}

// pingLoop keeps the transport alive; a peer that stops answering pings
// trips the read deadline and fails the read loop.
func (s *Server) pingLoop(c *conn) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := c.ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.logger.Debug("keepalive ping failed", "error", err)
				return
			}
		}
	}
}
