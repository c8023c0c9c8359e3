package manager

import (
	"context"

	wifidriver "github.com/aluiziotomazelli/wifi-manager/internal/driver"
	"github.com/aluiziotomazelli/wifi-manager/internal/fsm"
)

// process dispatches a dequeued message. Called with m.mu held for the
// message's entire processing: the worker holds the state mutex for the
// duration of each message.
func (m *Manager) process(msg fsm.Message) {
	if msg.Kind == fsm.MessageCommand {
		m.processCommand(msg.Command)
		return
	}
	m.processEvent(msg.Event, msg.Reason, msg.RSSI)
}

// release sets bits on the sync group and publishes a telemetry event.
// Must be called with m.mu held; telemetry is published synchronously
// under that lock, so a slow publisher delays the worker.
func (m *Manager) release(bits fsm.SyncBits) {
	m.sync.Release(bits)
	m.publishLocked(bits, fsm.ReasonUnspecified, 0)
}

func (m *Manager) publishLocked(bits fsm.SyncBits, reason fsm.DisconnectReason, rssi int8) {
	if m.telemetry == nil {
		return
	}
	evt := TransitionEvent{
		Time:      m.clock.Now(),
		State:     m.state,
		Bits:      bits,
		Reason:    reason,
		RSSI:      rssi,
		RetryN:    m.retry.RetryCount,
		NextRetry: m.retry.NextReconnectAt,
	}
	m.telemetry.Publish(evt)
}

func (m *Manager) commandTimeout(cmd fsm.Command) (context.Context, context.CancelFunc) {
	var d = m.cfg.SyncWaitDefault
	switch cmd {
	case fsm.CommandStart:
		d = m.cfg.CommandTimeoutStart
	case fsm.CommandStop:
		d = m.cfg.CommandTimeoutStop
	case fsm.CommandConnect:
		d = m.cfg.CommandTimeoutConnect
	case fsm.CommandDisconnect:
		d = m.cfg.CommandTimeoutDisconnect
	}
	return context.WithTimeout(context.Background(), d)
}

// processCommand validates cmd against the current state and, if it
// executes, dispatches it to the driver.
func (m *Manager) processCommand(cmd fsm.Command) {
	if cmd != fsm.CommandExit {
		m.retry.Reset()
	}

	switch fsm.Validate(m.state, cmd) {
	case fsm.ActionError:
		m.logger.Warn().Str("command", cmd.String()).Str("state", m.state.String()).Msg("invalid command for state")
		m.release(fsm.BitInvalidState)
	case fsm.ActionSkip:
		if bit, ok := fsm.SkipBit(m.state, cmd); ok {
			m.release(bit)
		}
	case fsm.ActionExecute:
		m.handleExecute(cmd)
	}
}

// handleExecute drives the driver for a command validate labeled EXECUTE,
// including the disconnect special case that skips DISCONNECTING
// entirely when cancelling an in-flight connect or a pending
// reconnect.
func (m *Manager) handleExecute(cmd fsm.Command) {
	prior := m.state
	m.logger.Info().Str("command", cmd.String()).Str("from", prior.String()).Msg("executing command")

	if cmd == fsm.CommandDisconnect && (prior == fsm.StateConnecting || prior == fsm.StateWaitingReconnect) {
		m.state = fsm.StateStarted
		ctx, cancel := m.commandTimeout(cmd)
		if err := m.driver.Disconnect(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("defensive disconnect during cancellation failed")
		}
		cancel()
		m.release(fsm.BitDisconnected)
		return
	}

	switch cmd {
	case fsm.CommandStart:
		m.state = fsm.StateStarting
		ctx, cancel := m.commandTimeout(cmd)
		err := m.driver.Start(ctx)
		cancel()
		if err != nil {
			m.logger.Error().Err(err).Msg("driver start failed")
			m.state = prior
			m.release(fsm.BitStartFailed)
		}
	case fsm.CommandStop:
		m.state = fsm.StateStopping
		ctx, cancel := m.commandTimeout(cmd)
		err := m.driver.Stop(ctx)
		cancel()
		if err != nil {
			m.logger.Error().Err(err).Msg("driver stop failed")
			m.state = prior
			m.release(fsm.BitStopFailed)
		}
	case fsm.CommandConnect:
		m.state = fsm.StateConnecting
		creds, err := m.store.LoadCredentials(context.Background())
		if err != nil {
			m.logger.Error().Err(err).Msg("load credentials for connect failed")
			m.state = prior
			m.release(fsm.BitConnectFailed)
			return
		}
		ctx, cancel := m.commandTimeout(cmd)
		err = m.driver.Connect(ctx, creds.SSID, creds.Password)
		cancel()
		if err != nil {
			m.logger.Error().Err(err).Msg("driver connect failed")
			m.state = prior
			m.release(fsm.BitConnectFailed)
		}
	case fsm.CommandDisconnect:
		// Normal path: from CONNECTED_* (or ERROR_CREDENTIALS) go through
		// DISCONNECTING and wait for the driver's STA_DISCONNECTED event
		// to release the bit; there is no dedicated DISCONNECT_FAILED bit,
		// so a driver error here leaves the caller to observe TIMEOUT
		// rather than a bit-carried FAIL.
		m.state = fsm.StateDisconnecting
		ctx, cancel := m.commandTimeout(cmd)
		err := m.driver.Disconnect(ctx)
		cancel()
		if err != nil {
			m.logger.Error().Err(err).Msg("driver disconnect failed")
			m.state = prior
		}
	}
}

// processEvent resolves evt against the current state and applies the
// resulting transition, with handleDisconnect overriding the default
// resolution for disconnect reason classification.
func (m *Manager) processEvent(evt fsm.Event, reason fsm.DisconnectReason, rssi int8) {
	if evt == fsm.EventStaDisconnected {
		m.handleDisconnect(reason, rssi)
		return
	}

	res := fsm.Resolve(m.state, evt)
	if res.NextState != m.state {
		m.logger.Info().Str("event", evt.String()).Str("from", m.state.String()).Str("to", res.NextState.String()).Msg("state transition")
	}
	m.state = res.NextState
	if res.Bits != 0 {
		m.sync.Release(res.Bits)
	}
	m.publishLocked(res.Bits, fsm.ReasonUnspecified, 0)

	if evt == fsm.EventGotIP {
		m.retry.Reset()
		if valid, err := m.store.IsValid(); err == nil && !valid {
			if err := m.store.SaveValidFlag(true); err != nil {
				m.logger.Warn().Err(err).Msg("persisting valid flag after GOT_IP failed")
			}
		}
	}
}

// handleDisconnect classifies the disconnect reason and decides between
// retrying with backoff, invalidating credentials, or settling back to
// STARTED, overriding the fsm resolve table's placeholder cells for
// STA_DISCONNECTED in the connecting/connected states.
func (m *Manager) handleDisconnect(reason fsm.DisconnectReason, rssi int8) {
	prior := m.state

	switch prior {
	case fsm.StateConnecting, fsm.StateConnectedNoIP, fsm.StateConnectedGotIP:
		// The only states where a disconnect needs classifying; fall
		// through to the reason buckets below.
	case fsm.StateDisconnecting, fsm.StateStopping:
		// Expected teardown completion.
		m.state = fsm.Resolve(prior, fsm.EventStaDisconnected).NextState
		m.release(fsm.BitDisconnected | fsm.BitConnectFailed)
		return
	case fsm.StateStarting:
		// The driver failed to come up; the resolve table reverts to
		// INITIALIZED and signals the blocked start.
		res := fsm.Resolve(prior, fsm.EventStaDisconnected)
		m.logger.Warn().Str("reason", reason.String()).Msg("driver start aborted")
		m.state = res.NextState
		m.release(res.Bits)
		return
	default:
		if !prior.IsActive() {
			// Stray event with the radio off; wake anyone waiting on a
			// teardown but leave the state alone.
			m.release(fsm.BitDisconnected | fsm.BitConnectFailed)
			return
		}
		// STARTED, WAITING_RECONNECT, ERROR_CREDENTIALS: no association
		// to lose, so the event is a no-op. A defensive driver
		// disconnect issued from these states may echo one back; counting
		// it as a failure would double-book the retry counters.
		return
	}

	bucket := wifidriver.Classify(reason)

	if bucket == wifidriver.BucketPeerInitiated {
		m.state = fsm.StateStarted
		m.release(fsm.BitDisconnected | fsm.BitConnectFailed)
		return
	}

	if bucket == wifidriver.BucketSuspect {
		m.logger.Warn().Str("reason", reason.String()).Int8("rssi", rssi).Msg("suspect disconnect")
		if m.retry.HandleSuspectFailure(rssi) {
			if err := m.store.SaveValidFlag(false); err != nil {
				m.logger.Warn().Err(err).Msg("persisting invalid flag failed")
			}
			m.state = fsm.StateErrorCredentials
			m.logger.Error().Msg("credentials invalidated after repeated suspect disconnects")
		} else {
			delay := m.retry.NextBackoff(m.clock.Now())
			m.state = fsm.StateWaitingReconnect
			m.logger.Info().Dur("delay", delay).Msg("scheduling reconnect after suspect disconnect")
		}
		m.publishLocked(fsm.BitConnectFailed, reason, rssi)
		m.sync.Release(fsm.BitConnectFailed)
		return
	}

	// Recoverable.
	if valid, err := m.store.IsValid(); err == nil && valid {
		delay := m.retry.NextBackoff(m.clock.Now())
		m.state = fsm.StateWaitingReconnect
		m.logger.Info().Dur("delay", delay).Str("reason", reason.String()).Msg("scheduling reconnect after recoverable disconnect")
	} else {
		m.state = fsm.StateStarted
	}
	m.publishLocked(fsm.BitConnectFailed, reason, rssi)
	m.sync.Release(fsm.BitConnectFailed)
}

// onReconnectDeadline fires when the dequeue timed out while
// WAITING_RECONNECT: the backoff deadline has passed and the next
// reconnect attempt is due.
func (m *Manager) onReconnectDeadline() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != fsm.StateWaitingReconnect {
		return
	}

	valid, err := m.store.IsValid()
	if err != nil {
		m.logger.Warn().Err(err).Msg("reading valid flag at reconnect deadline failed")
	}
	if !valid {
		m.state = fsm.StateStarted
		return
	}

	m.state = fsm.StateConnecting
	creds, err := m.store.LoadCredentials(context.Background())
	if err != nil {
		m.logger.Error().Err(err).Msg("load credentials for scheduled reconnect failed")
		delay := m.retry.NextBackoff(m.clock.Now())
		m.state = fsm.StateWaitingReconnect
		m.logger.Info().Dur("delay", delay).Msg("rescheduling reconnect after credential load failure")
		return
	}

	ctx, cancel := m.commandTimeout(fsm.CommandConnect)
	err = m.driver.Connect(ctx, creds.SSID, creds.Password)
	cancel()
	if err != nil {
		m.logger.Warn().Err(err).Msg("scheduled reconnect attempt failed to start")
		delay := m.retry.NextBackoff(m.clock.Now())
		m.state = fsm.StateWaitingReconnect
		m.logger.Info().Dur("delay", delay).Msg("rescheduling reconnect after driver error")
	}
}
