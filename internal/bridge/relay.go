package bridge

import (
	"time"

	"github.com/sprealms/bridge/internal/protocol"
)

// handlePluginFrame relays a plugin frame to every admin, tagged with
// the plugin's realm. Keepalive pings are answered locally and never
// forwarded.
func (s *Server) handlePluginFrame(c *conn, f protocol.Frame) {
	switch f.Type() {
	case "ping", "hello":
		c.sendFrame(protocol.Pong(c.realm))
		return
	}

	n := s.broker.BroadcastAdmins(f.WithRealm(c.realm).Marshal())
	if n > 0 {
		s.mets.BroadcastFrames.Inc()
	}
	c.logger.Debug("plugin frame broadcast", "type", f.Type(), "admins", n)
}

// handleAdminFrame normalizes an admin request, answers bridge.* types
// locally, and routes the canonical frame to the target realm. Every
// admin frame is acknowledged, delivered or not.
func (s *Server) handleAdminFrame(c *conn, f protocol.Frame) {
	cmd := protocol.Normalize(f)

	if cmd.Local {
		s.answerLocal(c, cmd)
		c.sendFrame(protocol.Ack(f.Type(), f.ID(), ""))
		return
	}

	if !cmd.Known {
		c.logger.Debug("unknown admin request type", "type", f.Type())
		c.sendFrame(protocol.Ack(f.Type(), f.ID(), "unknown"))
		return
	}

	s.routeToRealm(c, cmd)
	c.sendFrame(protocol.Ack(f.Type(), f.ID(), ""))
}

func (s *Server) answerLocal(c *conn, cmd protocol.Command) {
	switch cmd.Type {
	case protocol.TypeBridgePing:
		c.sendFrame(protocol.BridgePong(time.Now()))
	case protocol.TypeBridgeList:
		c.sendFrame(protocol.ListResult(s.broker.Listing()))
	case protocol.TypeBridgeInfo:
		c.sendFrame(protocol.InfoResult(s.broker.Listing(), s.broker.AdminCount(), time.Now()))
	}
}

// routeToRealm resolves the target realm and fans the canonical frame
// out to its plugins. Failures never close the admin connection: the
// requester gets a bridge.error when the realm is known but offline,
// and every admin gets a bridge.warn whenever nothing was delivered.
func (s *Server) routeToRealm(c *conn, cmd protocol.Command) {
	realm := cmd.Realm
	if realm == "" {
		realm = s.broker.OnlyOnlineRealm()
	}

	if realm == "" {
		s.mets.RoutingFailures.Inc()
		c.logger.Warn("no target realm for admin request", "type", cmd.Type)
		s.broker.BroadcastAdmins(protocol.Warn("No plugin online; request dropped", cmd.Frame).Marshal())
		return
	}

	if !s.broker.IsOnline(realm) {
		s.mets.RoutingFailures.Inc()
		c.logger.Warn("target realm offline", "type", cmd.Type, "realm", realm)
		c.sendFrame(protocol.Error("no_plugin_for_realm:"+realm, "no plugin connected for realm "+realm))
		s.broker.BroadcastAdmins(protocol.Warn("No plugin online for realm "+realm+"; request dropped", cmd.Frame).Marshal())
		return
	}

	n := s.broker.SendToRealm(realm, cmd.Frame.WithRealm(realm).Marshal())
	if n == 0 {
		s.mets.RoutingFailures.Inc()
		c.logger.Warn("delivery failed for realm", "type", cmd.Type, "realm", realm)
		s.broker.BroadcastAdmins(protocol.Warn("No plugin online for realm "+realm+"; request dropped", cmd.Frame).Marshal())
		return
	}

	s.mets.RoutedFrames.Inc()
	c.logger.Debug("admin request routed", "type", cmd.Type, "realm", realm, "plugins", n)
}
