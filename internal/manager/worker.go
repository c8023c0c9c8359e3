package manager

import (
	"time"

	"github.com/aluiziotomazelli/wifi-manager/internal/fsm"
)

// run is the Manager Core's single long-lived worker goroutine: it drains
// the command/event queue, applies the fsm tables, drives the driver and
// releases sync bits. Exactly one instance runs per Init/Deinit lifecycle.
func (m *Manager) run() {
	defer close(m.workerDone)
	for {
		wait, hasDeadline := m.retryWait()

		var msg fsm.Message
		var timedOut bool
		if hasDeadline {
			timer := m.clock.NewTimer(wait)
			select {
			case msg = <-m.queue:
				timer.Stop()
			case <-timer.Chan():
				timedOut = true
			}
		} else {
			msg = <-m.queue
		}

		if timedOut {
			m.onReconnectDeadline()
			continue
		}

		if msg.Kind == fsm.MessageCommand && msg.Command == fsm.CommandExit {
			return
		}

		m.mu.Lock()
		m.process(msg)
		m.mu.Unlock()
	}
}

// retryWait computes how long the worker should block on the queue:
// INFINITE (ok=false) unless the current state is WAITING_RECONNECT, in
// which case it is the time remaining until the backoff deadline.
func (m *Manager) retryWait() (d time.Duration, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.retry.WaitDuration(m.state, m.clock.Now())
}
