package engine

import (
	"sync"
	"time"

	"github.com/storeupwealth-sys/SportsEdge/internal/models"
)

type classKey struct {
	key   string
	class string
}

// CooldownGate prevents re-alerting the same (key, class) pair within a
// configured interval. Each alert class cools down independently.
type CooldownGate struct {
	mu       sync.Mutex
	lastFire map[classKey]int64
}

// NewCooldownGate creates an empty gate.
func NewCooldownGate() *CooldownGate {
	return &CooldownGate{lastFire: make(map[classKey]int64)}
}

// TryAcquire atomically checks whether the cooldown for (key, class) has
// elapsed and, if so, records now as the new last fire time. The check and
// the update happen under one lock so two signal evaluations of the same key
// in one tick cannot both fire.
func (g *CooldownGate) TryAcquire(key, class string, now int64, cooldown time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	ck := classKey{key: key, class: class}
	if last, ok := g.lastFire[ck]; ok && now-last < int64(cooldown/time.Second) {
		return false
	}
	g.lastFire[ck] = now
	return true
}

// Prune drops records whose last fire time is before cutoff. Stale records are
// harmless; pruning only bounds memory on very long-running processes.
func (g *CooldownGate) Prune(cutoff int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for ck, last := range g.lastFire {
		if last < cutoff {
			delete(g.lastFire, ck)
		}
	}
}

// Snapshot returns all records for persistence.
func (g *CooldownGate) Snapshot() []models.CooldownRecord {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]models.CooldownRecord, 0, len(g.lastFire))
	for ck, last := range g.lastFire {
		out = append(out, models.CooldownRecord{Key: ck.key, Class: ck.class, LastFire: last})
	}
	return out
}

// Restore replaces all records from a persisted snapshot.
func (g *CooldownGate) Restore(records []models.CooldownRecord) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lastFire = make(map[classKey]int64, len(records))
	for _, rec := range records {
		g.lastFire[classKey{key: rec.Key, class: rec.Class}] = rec.LastFire
	}
}
