package protocol

import (
	"fmt"
	"strings"
)

// Canonical message types produced by normalization.
const (
	TypeConsoleExec      = "console.exec"
	TypeConsoleExecLines = "console.execLines"
	TypeServerStats      = "server.stats"
	TypeBroadcast        = "broadcast"
	TypePlayerIsOnline   = "player.is_online"

	TypeBridgePing = "bridge.ping"
	TypeBridgeInfo = "bridge.info"
	TypeBridgeList = "bridge.list"

	TypeAck        = "bridge.ack"
	TypeError      = "bridge.error"
	TypeWarn       = "bridge.warn"
	TypePong       = "bridge.pong"
	TypeListResult = "bridge.list.result"
	TypeInfoResult = "bridge.info.result"
)

// Command is the canonical internal form of an admin request, produced
// before any routing decision is made.
type Command struct {
	// Type is the canonical message type.
	Type string

	// Realm is the target realm the envelope carried, or "" when the
	// router must infer one.
	Realm string

	// Local marks health/introspection requests answered by the bridge
	// itself; they never reach a realm.
	Local bool

	// Known is false for unrecognized types, which are acknowledged
	// generically and not forwarded.
	Known bool

	// Frame is the canonical outbound envelope for forwarded commands.
	Frame Frame
}

// adminFirstTypes is the fixed admin-first-message type set: a socket
// whose first frame carries one of these types is classified admin.
// Everything else, including silence, classifies as plugin — plugin
// connections are long-lived and quiet at connect time, admin clients
// announce intent.
var adminFirstTypes = map[string]struct{}{
	TypeConsoleExec:         {},
	"cmd.exec":              {},
	TypeConsoleExecLines:    {},
	"cmd.execLines":         {},
	"stats.query":           {},
	TypeServerStats:         {},
	"maintenance.set":       {},
	"maintenance.whitelist": {},
	TypeBroadcast:           {},
	TypePlayerIsOnline:      {},
	"ops.set":               {},
	"cmdwl.set":             {},
	"cmdwl.commands":        {},
	TypeBridgePing:          {},
	TypeBridgeInfo:          {},
	TypeBridgeList:          {},
}

// IsAdminFirstMessage reports whether a first-frame type classifies the
// connection as admin.
func IsAdminFirstMessage(typ string) bool {
	if _, ok := adminFirstTypes[typ]; ok {
		return true
	}
	return strings.HasPrefix(typ, "lp.") || strings.HasPrefix(typ, "jp.balance.")
}

// Normalize maps the heterogeneous envelope shapes admin call sites
// produce into a canonical Command. Field aliases (command/cmd,
// op/action, top-level vs payload nesting) are collapsed here so
// routing and the plugin side see one shape per type.
func Normalize(f Frame) Command {
	typ := f.Type()
	realm := f.Realm()

	switch typ {
	case TypeConsoleExec, "cmd.exec":
		cmd := f.FieldStr("command", "cmd")
		return execCommand(f, realm, cmd)

	case TypeConsoleExecLines, "cmd.execLines":
		return Command{
			Type:  TypeConsoleExecLines,
			Realm: realm,
			Known: true,
			Frame: envelope(TypeConsoleExecLines, f.ID(), map[string]any{
				"realm": realm,
				"lines": stringList(f.Field("lines")),
			}),
		}

	case "stats.query", TypeServerStats:
		return Command{
			Type:  TypeServerStats,
			Realm: realm,
			Known: true,
			Frame: envelope(TypeServerStats, f.ID(), map[string]any{"realm": realm}),
		}

	case "maintenance.set":
		enabled, _ := f.Field("enabled").(bool)
		state := "off"
		if enabled {
			state = "on"
		}
		cmd := fmt.Sprintf("realm maintenance %s", state)
		if msg := f.FieldStr("kickMessage", "message"); enabled && msg != "" {
			cmd += " kick " + msg
		}
		return execCommand(f, realm, cmd)

	case "maintenance.whitelist":
		op := f.FieldStr("op", "action")
		if op == "" {
			op = "list"
		}
		cmd := "realm maintwl " + op
		if player := f.FieldStr("player", "user", "name"); player != "" {
			cmd += " " + player
		}
		return execCommand(f, realm, cmd)

	case TypeBroadcast, TypePlayerIsOnline, "ops.set", "cmdwl.set", "cmdwl.commands":
		return passthrough(f, realm)

	case TypeBridgePing, TypeBridgeInfo, TypeBridgeList:
		return Command{Type: typ, Realm: realm, Local: true, Known: true}
	}

	if strings.HasPrefix(typ, "lp.") || strings.HasPrefix(typ, "jp.balance.") {
		return passthrough(f, realm)
	}

	// Unrecognized: passthrough shape, but flagged so the caller acks
	// generically instead of forwarding.
	cmd := passthrough(f, realm)
	cmd.Known = false
	return cmd
}

func execCommand(f Frame, realm, cmd string) Command {
	return Command{
		Type:  TypeConsoleExec,
		Realm: realm,
		Known: true,
		Frame: envelope(TypeConsoleExec, f.ID(), map[string]any{
			"realm":   realm,
			"command": cmd,
			// legacy plugins read "cmd"
			"cmd": cmd,
		}),
	}
}

func passthrough(f Frame, realm string) Command {
	return Command{
		Type:  f.Type(),
		Realm: realm,
		Known: true,
		Frame: f,
	}
}

func envelope(typ, id string, payload map[string]any) Frame {
	f := Frame{"type": typ, "payload": payload}
	if realm, _ := payload["realm"].(string); realm != "" {
		f["realm"] = realm
	} else {
		delete(payload, "realm")
	}
	if id != "" {
		f["id"] = id
	}
	return f
}

func stringList(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
