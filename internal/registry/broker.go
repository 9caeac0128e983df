package registry

import (
	"log/slog"
	"sync"
)

// Peer is one live connection the Broker can deliver to. Send must be
// safe to call concurrently with other sends to the same peer.
type Peer interface {
	ID() string
	Send(data []byte) error
}

// Broker maintains the realm → plugin-set mapping and the admin set.
// All mutations and fan-out reads are synchronized on one mutex;
// fan-out snapshots the target set first so a send failure never
// corrupts the set being iterated.
type Broker struct {
	mu sync.RWMutex

	// plugins entries are created lazily on first registration and
	// never removed: an empty set means the realm is offline and may
	// come back without special-casing re-creation.
	plugins map[string]map[Peer]struct{}
	admins  map[Peer]struct{}

	logger *slog.Logger
}

// NewBroker creates an empty Broker.
func NewBroker(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		plugins: make(map[string]map[Peer]struct{}),
		admins:  make(map[Peer]struct{}),
		logger:  logger,
	}
}

// RegisterPlugin inserts a plugin connection into the realm's set.
// Idempotent.
func (b *Broker) RegisterPlugin(realm string, p Peer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.plugins[realm]
	if !ok {
		set = make(map[Peer]struct{})
		b.plugins[realm] = set
	}
	set[p] = struct{}{}
}

// DeregisterPlugin removes a plugin connection from the realm's set.
// No-op if absent.
func (b *Broker) DeregisterPlugin(realm string, p Peer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if set, ok := b.plugins[realm]; ok {
		delete(set, p)
	}
}

// AddAdmin inserts an admin connection. Idempotent.
func (b *Broker) AddAdmin(p Peer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.admins[p] = struct{}{}
}

// RemoveAdmin removes an admin connection. No-op if absent.
func (b *Broker) RemoveAdmin(p Peer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.admins, p)
}

// IsOnline reports whether the realm has at least one live plugin.
func (b *Broker) IsOnline(realm string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.plugins[realm]) > 0
}

// OnlyOnlineRealm returns the single realm with a non-empty plugin set
// iff exactly one such realm exists; otherwise "".
func (b *Broker) OnlyOnlineRealm() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	found := ""
	for realm, set := range b.plugins {
		if len(set) == 0 {
			continue
		}
		if found != "" {
			return ""
		}
		found = realm
	}
	return found
}

// Listing returns a snapshot of realm → live-connection-count for every
// realm the Broker has ever seen, including realms currently at zero.
func (b *Broker) Listing() map[string]int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]int, len(b.plugins))
	for realm, set := range b.plugins {
		out[realm] = len(set)
	}
	return out
}

// AdminCount returns the number of live admin connections.
func (b *Broker) AdminCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.admins)
}

// SendToRealm fans data out to every plugin in the realm. Peers whose
// send fails are removed from the set as part of the same operation.
// Returns the number of successful deliveries.
func (b *Broker) SendToRealm(realm string, data []byte) int {
	b.mu.RLock()
	targets := make([]Peer, 0, len(b.plugins[realm]))
	for p := range b.plugins[realm] {
		targets = append(targets, p)
	}
	b.mu.RUnlock()

	delivered, dead := sendAll(targets, data)
	if len(dead) > 0 {
		b.mu.Lock()
		for _, p := range dead {
			if set, ok := b.plugins[realm]; ok {
				delete(set, p)
			}
		}
		b.mu.Unlock()

		for _, p := range dead {
			b.logger.Warn("pruned dead plugin connection", "realm", realm, "conn_id", p.ID())
		}
	}
	return delivered
}

// BroadcastAdmins fans data out to every admin connection, pruning dead
// ones. Returns the number of successful deliveries.
func (b *Broker) BroadcastAdmins(data []byte) int {
	b.mu.RLock()
	targets := make([]Peer, 0, len(b.admins))
	for p := range b.admins {
		targets = append(targets, p)
	}
	b.mu.RUnlock()

	delivered, dead := sendAll(targets, data)
	if len(dead) > 0 {
		b.mu.Lock()
		for _, p := range dead {
			delete(b.admins, p)
		}
		b.mu.Unlock()

		for _, p := range dead {
			b.logger.Warn("pruned dead admin connection", "conn_id", p.ID())
		}
	}
	return delivered
}

func sendAll(targets []Peer, data []byte) (delivered int, dead []Peer) {
	for _, p := range targets {
		if err := p.Send(data); err != nil {
			dead = append(dead, p)
			continue
		}
		delivered++
	}
	return delivered, dead
}
