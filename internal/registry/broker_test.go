package registry

import (
	"errors"
	"sync"
	"testing"
)

// fakePeer records sends and can be flipped to fail.
type fakePeer struct {
	id   string
	mu   sync.Mutex
	sent [][]byte
	fail bool
}

func (p *fakePeer) ID() string { return p.id }

func (p *fakePeer) Send(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("connection reset")
	}
	p.sent = append(p.sent, data)
	return nil
}

func (p *fakePeer) sentCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

func TestRegisterDeregister(t *testing.T) {
	b := NewBroker(nil)
	p := &fakePeer{id: "p1"}

	b.RegisterPlugin("r1", p)
	b.RegisterPlugin("r1", p) // idempotent

	if !b.IsOnline("r1") {
		t.Error("IsOnline(r1) = false after registration")
	}
	if got := b.Listing()["r1"]; got != 1 {
		t.Errorf("Listing()[r1] = %d, want 1", got)
	}

	b.DeregisterPlugin("r1", p)
	b.DeregisterPlugin("r1", p) // no-op

	if b.IsOnline("r1") {
		t.Error("IsOnline(r1) = true after deregistration")
	}

	// The realm key survives at zero; it may be repopulated later.
	if got, ok := b.Listing()["r1"]; !ok || got != 0 {
		t.Errorf("Listing()[r1] = %d,%v, want 0,true", got, ok)
	}
}

func TestDeregisterUnknownRealm(t *testing.T) {
	b := NewBroker(nil)
	b.DeregisterPlugin("ghost", &fakePeer{id: "p"})
	if b.IsOnline("ghost") {
		t.Error("IsOnline(ghost) = true")
	}
}

func TestOnlyOnlineRealm(t *testing.T) {
	b := NewBroker(nil)

	if got := b.OnlyOnlineRealm(); got != "" {
		t.Errorf("OnlyOnlineRealm() = %q with no realms, want empty", got)
	}

	p1 := &fakePeer{id: "p1"}
	b.RegisterPlugin("r1", p1)
	if got := b.OnlyOnlineRealm(); got != "r1" {
		t.Errorf("OnlyOnlineRealm() = %q, want r1", got)
	}

	// Second plugin on the same realm still yields a single realm.
	b.RegisterPlugin("r1", &fakePeer{id: "p2"})
	if got := b.OnlyOnlineRealm(); got != "r1" {
		t.Errorf("OnlyOnlineRealm() = %q with two plugins on r1, want r1", got)
	}

	b.RegisterPlugin("r2", &fakePeer{id: "p3"})
	if got := b.OnlyOnlineRealm(); got != "" {
		t.Errorf("OnlyOnlineRealm() = %q with two realms, want empty", got)
	}

	// An offline realm key does not count.
	b.DeregisterPlugin("r1", p1)
	b.DeregisterPlugin("r1", b.snapshotPlugin(t, "r1"))
	if got := b.OnlyOnlineRealm(); got != "r2" {
		t.Errorf("OnlyOnlineRealm() = %q after r1 emptied, want r2", got)
	}
}

// snapshotPlugin pulls the remaining peer out of a realm set for test
// cleanup.
func (b *Broker) snapshotPlugin(t *testing.T, realm string) Peer {
	t.Helper()
	b.mu.RLock()
	defer b.mu.RUnlock()
	for p := range b.plugins[realm] {
		return p
	}
	t.Fatalf("no plugin in realm %q", realm)
	return nil
}

func TestSendToRealmFanOut(t *testing.T) {
	b := NewBroker(nil)
	p1 := &fakePeer{id: "p1"}
	p2 := &fakePeer{id: "p2"}
	b.RegisterPlugin("r1", p1)
	b.RegisterPlugin("r1", p2)
	b.RegisterPlugin("r2", &fakePeer{id: "other"})

	n := b.SendToRealm("r1", []byte(`{"type":"console.exec"}`))
	if n != 2 {
		t.Errorf("SendToRealm delivered %d, want 2", n)
	}
	if p1.sentCount() != 1 || p2.sentCount() != 1 {
		t.Errorf("sends = %d,%d, want 1,1", p1.sentCount(), p2.sentCount())
	}
}

func TestSendToRealmPrunesDead(t *testing.T) {
	b := NewBroker(nil)
	alive := &fakePeer{id: "alive"}
	dead := &fakePeer{id: "dead", fail: true}
	b.RegisterPlugin("r1", alive)
	b.RegisterPlugin("r1", dead)

	n := b.SendToRealm("r1", []byte("x"))
	if n != 1 {
		t.Errorf("delivered = %d, want 1", n)
	}
	if got := b.Listing()["r1"]; got != 1 {
		t.Errorf("Listing()[r1] = %d after prune, want 1", got)
	}

	// The dead peer stays gone on the next fan-out.
	b.SendToRealm("r1", []byte("y"))
	if alive.sentCount() != 2 {
		t.Errorf("alive sends = %d, want 2", alive.sentCount())
	}
}

func TestSendToOfflineRealm(t *testing.T) {
	b := NewBroker(nil)
	if n := b.SendToRealm("nowhere", []byte("x")); n != 0 {
		t.Errorf("delivered = %d to offline realm, want 0", n)
	}
}

func TestBroadcastAdminsPrunesDead(t *testing.T) {
	b := NewBroker(nil)
	a1 := &fakePeer{id: "a1"}
	a2 := &fakePeer{id: "a2", fail: true}
	b.AddAdmin(a1)
	b.AddAdmin(a2)

	n := b.BroadcastAdmins([]byte(`{"type":"server.stats"}`))
	if n != 1 {
		t.Errorf("delivered = %d, want 1", n)
	}
	if b.AdminCount() != 1 {
		t.Errorf("AdminCount() = %d after prune, want 1", b.AdminCount())
	}
	if a1.sentCount() != 1 {
		t.Errorf("alive admin sends = %d, want 1", a1.sentCount())
	}
}

func TestConcurrentFanOutAndChurn(t *testing.T) {
	b := NewBroker(nil)
	for i := 0; i < 8; i++ {
		b.AddAdmin(&fakePeer{id: "a"})
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.BroadcastAdmins([]byte("x"))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p := &fakePeer{id: "churn"}
				b.AddAdmin(p)
				b.RemoveAdmin(p)
				q := &fakePeer{id: "plugin"}
				b.RegisterPlugin("r1", q)
				b.DeregisterPlugin("r1", q)
			}
		}()
	}
	wg.Wait()

	if b.AdminCount() != 8 {
		t.Errorf("AdminCount() = %d after churn, want 8", b.AdminCount())
	}
}
