// Package gate decides whether a periodic action is due to fire.
package gate

import (
	"log"
	"sync"
	"time"
)

// Gate tracks when a periodic action last fired and whether a one-shot
// force has been requested. Safe for concurrent use.
type Gate struct {
	enabled  bool
	hasCreds bool
	interval time.Duration

	mu       sync.Mutex
	lastFire time.Time // zero means never fired in this process
	forced   bool
}

// New creates a gate. With enabled false or hasCreds false the gate never
// fires regardless of elapsed time or force requests.
func New(enabled, hasCreds bool, interval time.Duration) *Gate {
	return &Gate{enabled: enabled, hasCreds: hasCreds, interval: interval}
}

// ShouldFire reports whether the action is due at the given time. A pending
// force wins over the interval check but does not clear itself; the caller
// confirms the fire with ClearForce and MarkFired once the action succeeds.
func (g *Gate) ShouldFire(now time.Time) bool {
	if !g.enabled {
		return false
	}
	if !g.hasCreds {
		log.Printf("[WARN] periodic action enabled but credentials missing, skipping")
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.forced {
		return true
	}
	if g.lastFire.IsZero() {
		return true // never fired, fire now rather than wait a full interval
	}
	return now.Sub(g.lastFire) >= g.interval
}

// Force requests a single out-of-schedule fire
func (g *Gate) Force() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.forced = true
}

// ClearForce drops a pending force request
func (g *Gate) ClearForce() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.forced = false
}

// MarkFired records a successful fire at the given time
func (g *Gate) MarkFired(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastFire = now
}

// RestoreLastFire seeds the last fire time from persisted state so a process
// restart does not trigger an immediate fire.
func (g *Gate) RestoreLastFire(t time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastFire = t
}
