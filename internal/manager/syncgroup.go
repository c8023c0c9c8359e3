package manager

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aluiziotomazelli/wifi-manager/internal/fsm"
)

// syncGroup is the event-group-equivalent sync-bits primitive: a one-shot
// bitmask the worker releases on an observable transition and blocking API
// callers wait on with a timeout. Bits are cleared by the caller
// immediately before posting the command they pertain to.
type syncGroup struct {
	mu    sync.Mutex
	cond  *sync.Cond
	bits  fsm.SyncBits
	clock clockwork.Clock
}

func newSyncGroup(clock clockwork.Clock) *syncGroup {
	g := &syncGroup{clock: clock}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Clear zeroes the given bits, readying them to detect the next release.
func (g *syncGroup) Clear(bits fsm.SyncBits) {
	g.mu.Lock()
	g.bits &^= bits
	g.mu.Unlock()
}

// Release sets bits and wakes every waiter. A zero mask is a no-op.
func (g *syncGroup) Release(bits fsm.SyncBits) {
	if bits == 0 {
		return
	}
	g.mu.Lock()
	g.bits |= bits
	g.mu.Unlock()
	g.cond.Broadcast()
}

// Wait blocks until any bit in wanted is set or timeout elapses, returning
// the bits observed (masked to wanted) and whether the wait succeeded
// (false means timeout).
func (g *syncGroup) Wait(wanted fsm.SyncBits, timeout time.Duration) (fsm.SyncBits, bool) {
	deadline := g.clock.Now().Add(timeout)

	// sync.Cond has no native timeout support; a watcher goroutine
	// translates the clock-driven deadline into a broadcast so the
	// waiter below can use the same Cond-based wait loop regardless of
	// whether it is woken by a release or by its own timeout.
	timedOut := make(chan struct{})
	done := make(chan struct{})
	timer := g.clock.NewTimer(timeout)
	go func() {
		select {
		case <-timer.Chan():
			close(timedOut)
			g.cond.Broadcast()
		case <-done:
			timer.Stop()
		}
	}()
	defer close(done)

	g.mu.Lock()
	defer g.mu.Unlock()
	for {
		if got := g.bits & wanted; got != 0 {
			return got, true
		}
		select {
		case <-timedOut:
			return 0, false
		default:
		}
		if g.clock.Now().After(deadline) {
			return 0, false
		}
		g.cond.Wait()
	}
}
