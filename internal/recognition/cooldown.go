package recognition

import (
	"sync"
	"time"
)

// CooldownGate rate-limits attendance events per identity name. The
// check-and-update in TryAccept runs under one mutex so that two
// near-simultaneous accepts for the same name can never both succeed.
// Entries are never removed, only moved forward in time.
type CooldownGate struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
}

// NewCooldownGate creates a gate with the given cooldown window, applied
// uniformly across identities.
func NewCooldownGate(window time.Duration) *CooldownGate {
	return &CooldownGate{
		window: window,
		last:   make(map[string]time.Time),
	}
}

// TryAccept atomically checks whether the name is eligible at the given
// time and records the acceptance if so. A name never seen before is
// always eligible. Returns false and leaves state untouched when the
// cooldown window has not yet elapsed.
func (g *CooldownGate) TryAccept(name string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.last[name]; ok && now.Sub(last) < g.window {
		return false
	}
	g.last[name] = now
	return true
}

// LastAccepted returns the last accepted timestamp for a name, if any.
func (g *CooldownGate) LastAccepted(name string) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.last[name]
	return t, ok
}

// Window returns the configured cooldown window.
func (g *CooldownGate) Window() time.Duration {
	return g.window
}
