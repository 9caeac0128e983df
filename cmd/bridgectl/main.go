// Command bridgectl is an interactive admin client for the bridge. It
// connects as an admin peer, prints every inbound frame, and turns
// short console commands into admin request frames.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sprealms/bridge/internal/protocol"
)

const usage = `commands:
  list                              realm -> plugin count
  info                              bridge status
  ping                              bridge round trip
  exec <realm> <command...>         run a console command
  stats <realm>                     request server stats
  maint <realm> on|off [message]    toggle maintenance mode
  broadcast <realm> <message...>    broadcast to players
  raw <json>                        send a frame verbatim
  quit`

func main() {
	url := flag.String("url", "ws://127.0.0.1:8765/ws", "bridge websocket url")
	token := flag.String("token", os.Getenv("SP_TOKEN"), "bearer token (default: SP_TOKEN)")
	flag.Parse()

	header := http.Header{}
	if *token != "" {
		header.Set("Authorization", "Bearer "+*token)
	}

	ws, _, err := websocket.DefaultDialer.Dial(*url, header)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", *url, err)
		os.Exit(1)
	}
	defer ws.Close()

	// First frame classifies this connection as admin.
	send(ws, protocol.Frame{"type": protocol.TypeBridgeInfo})

	go func() {
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				fmt.Fprintf(os.Stderr, "\nconnection closed: %v\n", err)
				os.Exit(1)
			}
			printFrame(data)
		}
	}()

	fmt.Println(usage)
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			if f, quit := buildFrame(line); quit {
				return
			} else if f != nil {
				send(ws, f)
			}
		}
		fmt.Print("> ")
	}
}

func buildFrame(line string) (protocol.Frame, bool) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit":
		return nil, true

	case "list":
		return protocol.Frame{"type": protocol.TypeBridgeList}, false

	case "info":
		return protocol.Frame{"type": protocol.TypeBridgeInfo}, false

	case "ping":
		return protocol.Frame{"type": protocol.TypeBridgePing, "id": uuid.NewString()}, false

	case "exec":
		if len(args) < 2 {
			fmt.Println("usage: exec <realm> <command...>")
			return nil, false
		}
		return protocol.Frame{
			"type":    protocol.TypeConsoleExec,
			"id":      uuid.NewString(),
			"realm":   args[0],
			"command": strings.Join(args[1:], " "),
		}, false

	case "stats":
		if len(args) != 1 {
			fmt.Println("usage: stats <realm>")
			return nil, false
		}
		return protocol.Frame{
			"type":  protocol.TypeServerStats,
			"id":    uuid.NewString(),
			"realm": args[0],
		}, false

	case "maint":
		if len(args) < 2 || (args[1] != "on" && args[1] != "off") {
			fmt.Println("usage: maint <realm> on|off [message]")
			return nil, false
		}
		f := protocol.Frame{
			"type":    "maintenance.set",
			"id":      uuid.NewString(),
			"realm":   args[0],
			"enabled": args[1] == "on",
		}
		if len(args) > 2 {
			f["kickMessage"] = strings.Join(args[2:], " ")
		}
		return f, false

	case "broadcast":
		if len(args) < 2 {
			fmt.Println("usage: broadcast <realm> <message...>")
			return nil, false
		}
		return protocol.Frame{
			"type":    protocol.TypeBroadcast,
			"id":      uuid.NewString(),
			"realm":   args[0],
			"message": strings.Join(args[1:], " "),
		}, false

	case "raw":
		raw := strings.TrimSpace(strings.TrimPrefix(line, "raw"))
		f, err := protocol.Parse([]byte(raw))
		if err != nil {
			fmt.Printf("bad json: %v\n", err)
			return nil, false
		}
		return f, false
	}

	fmt.Println(usage)
	return nil, false
}

func send(ws *websocket.Conn, f protocol.Frame) {
	if err := ws.WriteMessage(websocket.TextMessage, f.Marshal()); err != nil {
		fmt.Fprintf(os.Stderr, "send: %v\n", err)
	}
}

func printFrame(data []byte) {
	var buf map[string]any
	if err := json.Unmarshal(data, &buf); err != nil {
		fmt.Printf("\n<- %s\n> ", data)
		return
	}
	pretty, _ := json.MarshalIndent(buf, "", "  ")
	fmt.Printf("\n<- %s\n> ", pretty)
}
