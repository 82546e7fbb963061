package branch

import (
	"sync"
	"time"
)

// DefaultCooldown is the minimum gap between two branch operations
const DefaultCooldown = 100 * time.Millisecond

// Guard is a non-blocking mutual exclusion with a cooldown after release
type Guard struct {
	mu         sync.Mutex
	busy       bool
	releasedAt time.Time
	cooldown   time.Duration
	clock      func() time.Time
}

// NewGuard creates a guard. A nil clock uses time.Now.
func NewGuard(cooldown time.Duration, clock func() time.Time) *Guard {
	if clock == nil {
		clock = time.Now
	}
	return &Guard{cooldown: cooldown, clock: clock}
}

// TryAcquire takes the guard unless it is held or still cooling down
func (g *Guard) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.busy {
		return false
	}
	if !g.releasedAt.IsZero() && g.clock().Sub(g.releasedAt) < g.cooldown {
		return false
	}
	g.busy = true
	return true
}

// Release frees the guard and starts the cooldown
func (g *Guard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.busy = false
	g.releasedAt = g.clock()
}
