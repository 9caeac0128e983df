package protocol

import (
	"time"

	"github.com/sprealms/bridge/internal/version"
)

// Ack acknowledges receipt of an admin request. Callers never hang
// waiting for a reply: even unknown types are acked, with a note.
func Ack(seenType, id, note string) Frame {
	payload := map[string]any{"seenType": seenType}
	if note != "" {
		payload["note"] = note
	}
	f := Frame{"type": TypeAck, "payload": payload}
	if id != "" {
		f["id"] = id
	}
	return f
}

// RawAck acknowledges a text frame that did not parse as a JSON object.
// The connection survives; the raw text is echoed back for debugging.
func RawAck(raw string) Frame {
	return Frame{"type": TypeAck, "payload": map[string]any{
		"note": "unparsed",
		"raw":  raw,
	}}
}

// Error builds a bridge.error frame with a machine-readable reason and
// a human-readable message.
func Error(reason, message string) Frame {
	return Frame{"type": TypeError, "payload": map[string]any{
		"reason":  reason,
		"message": message,
	}}
}

// Warn builds a bridge.warn frame describing a dropped request.
func Warn(message string, request Frame) Frame {
	payload := map[string]any{"message": message}
	if request != nil {
		payload["request"] = map[string]any(request)
	}
	return Frame{"type": TypeWarn, "payload": payload}
}

// Pong is the direct reply to a plugin's ping or hello frame. It is
// sent to that plugin only, never broadcast.
func Pong(realm string) Frame {
	return Frame{"type": "pong", "realm": realm}
}

// BridgePong answers bridge.ping with the server time.
func BridgePong(now time.Time) Frame {
	return Frame{"type": TypePong, "payload": map[string]any{
		"time": now.UTC().Format(time.RFC3339),
	}}
}

// ListResult answers bridge.list with a realm → live-plugin-count
// snapshot.
func ListResult(listing map[string]int) Frame {
	payload := make(map[string]any, len(listing))
	for realm, count := range listing {
		payload[realm] = count
	}
	return Frame{"type": TypeListResult, "payload": payload}
}

// InfoResult answers bridge.info with the registry snapshot plus admin
// count and server identity.
func InfoResult(listing map[string]int, admins int, now time.Time) Frame {
	realms := make(map[string]any, len(listing))
	for realm, count := range listing {
		realms[realm] = count
	}
	return Frame{"type": TypeInfoResult, "payload": map[string]any{
		"realms":  realms,
		"admins":  admins,
		"time":    now.UTC().Format(time.RFC3339),
		"version": version.Version,
	}}
}

// PluginPresence is broadcast to admins when a plugin registers or
// deregisters under a realm.
func PluginPresence(realm string, online bool) Frame {
	state := "offline"
	if online {
		state = "online"
	}
	return Frame{"type": TypeBridgeInfo, "realm": realm, "payload": map[string]any{
		"message": "Plugin " + state + " realm='" + realm + "'",
		"realm":   realm,
		"online":  online,
	}}
}
