package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/aluiziotomazelli/wifi-manager/internal/config"
	wifidriver "github.com/aluiziotomazelli/wifi-manager/internal/driver"
	"github.com/aluiziotomazelli/wifi-manager/internal/fsm"
	"github.com/aluiziotomazelli/wifi-manager/internal/store"
)

// TelemetryPublisher receives a best-effort copy of every observable
// transition the worker makes. Implementations must never block; the
// manager's telemetry package satisfies this with a bounded hub.
type TelemetryPublisher interface {
	Publish(evt TransitionEvent)
}

// AuditLogger receives one record per public API invocation.
type AuditLogger interface {
	LogAction(ctx context.Context, action string, err error, latency time.Duration)
}

// TransitionEvent describes one worker-observed transition, for
// observability consumers (internal/telemetry, logs).
type TransitionEvent struct {
	Time      time.Time
	State     fsm.State
	Bits      fsm.SyncBits
	Reason    fsm.DisconnectReason
	RSSI      int8
	RetryN    uint32
	NextRetry time.Time
}

// Manager is the process-wide connection-lifecycle singleton: the state
// machine's single writer, the command/event queue owner, and the public
// sync/async API surface.
type Manager struct {
	cfg    config.ManagerConfig
	driver wifidriver.Driver
	store  *store.Store
	logger zerolog.Logger
	clock  clockwork.Clock

	telemetry TelemetryPublisher
	audit     AuditLogger

	translator *wifidriver.Translator
	queue      chan fsm.Message
	sync       *syncGroup

	mu    sync.Mutex
	state fsm.State
	retry fsm.RetryState

	workerDone chan struct{}
}

// Option configures optional collaborators at construction time.
type Option func(*Manager)

// WithClock overrides the manager's clock, for deterministic tests.
func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithTelemetry wires a best-effort telemetry sink.
func WithTelemetry(t TelemetryPublisher) Option {
	return func(m *Manager) { m.telemetry = t }
}

// WithAudit stores an audit logger on the Manager. The Manager's own API
// methods do not write audit records; internal/api logs each HTTP call.
func WithAudit(a AuditLogger) Option {
	return func(m *Manager) { m.audit = a }
}

// New builds a Manager in state UNINITIALIZED. drv and st are owned by the
// caller for the manager's lifetime; Init/Deinit drive them but do not
// construct or close them (the driver's identity and the store's backend
// are wiring decisions made by cmd/wifimanagerd, not by the manager).
func New(cfg config.ManagerConfig, drv wifidriver.Driver, st *store.Store, logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		cfg:    cfg,
		driver: drv,
		store:  st,
		logger: logger.With().Str("component", "manager").Logger(),
		clock:  clockwork.NewRealClock(),
		state:  fsm.StateUninitialized,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.sync = newSyncGroup(m.clock)
	return m
}

// GetState reads the current lifecycle state under the state mutex,
// linearizing with respect to every worker-driven transition.
func (m *Manager) GetState() fsm.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsCredentialsValid mirrors the store's valid flag.
func (m *Manager) IsCredentialsValid() (bool, error) {
	return m.store.IsValid()
}

// Init brings the manager up: initializes the driver, seeds credential
// fallback, and starts the worker goroutine. Init is not idempotent; call
// it exactly once per Manager lifetime (a fresh Manager per reboot cycle
// in a long-running daemon).
func (m *Manager) Init(ctx context.Context) error {
	m.mu.Lock()
	if m.state != fsm.StateUninitialized {
		m.mu.Unlock()
		return ErrAlreadyInitialized
	}
	m.state = fsm.StateInitializing
	m.mu.Unlock()

	if err := m.driver.Init(ctx); err != nil {
		m.mu.Lock()
		m.state = fsm.StateUninitialized
		m.mu.Unlock()
		return fmt.Errorf("%w: driver init: %v", ErrNoMem, err)
	}

	m.queue = make(chan fsm.Message, m.cfg.QueueCapacity)
	m.translator = wifidriver.NewTranslator(m.queue, m.logger)
	m.driver.RegisterTranslator(m.translator)

	if err := m.store.EnsureConfigFallback(ctx, m.cfg.DefaultSSID, m.cfg.DefaultPassword); err != nil {
		m.logger.Warn().Err(err).Msg("credential fallback seeding failed")
	}

	m.mu.Lock()
	m.state = fsm.StateInitialized
	m.mu.Unlock()

	m.workerDone = make(chan struct{})
	go m.run()

	m.logger.Info().Msg("manager initialized")
	return nil
}

// Deinit posts EXIT, waits up to cfg.DeinitDrainTimeout for the worker to
// settle, then tears down the driver regardless. If the connection is
// active it first quiesces with a bounded synchronous stop. Go goroutines
// cannot be force-terminated; a worker that does not drain in time is
// abandoned rather than killed.
func (m *Manager) Deinit(ctx context.Context) error {
	if m.GetState() == fsm.StateUninitialized {
		return ErrNotInitialized
	}

	if m.GetState().IsActive() {
		_ = m.StopSync(2 * time.Second)
	}

	select {
	case m.queue <- fsm.CommandMessage(fsm.CommandExit):
	case <-time.After(m.cfg.DeinitDrainTimeout):
		m.logger.Warn().Msg("deinit: queue full posting EXIT, deadline exceeded")
	}

	select {
	case <-m.workerDone:
	case <-time.After(m.cfg.DeinitDrainTimeout):
		m.logger.Warn().Msg("deinit: worker did not drain within deadline, abandoning it")
	}

	if err := m.driver.Deinit(ctx); err != nil {
		m.logger.Error().Err(err).Msg("driver deinit failed")
	}

	m.mu.Lock()
	m.state = fsm.StateUninitialized
	m.mu.Unlock()
	return nil
}

// postAsync enqueues msg without waiting; ErrQueueFull preserves the
// real-time contract of async producers (never block indefinitely).
func (m *Manager) postAsync(msg fsm.Message) error {
	select {
	case m.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// postBlocking enqueues msg, waiting indefinitely for a free slot; the
// sync API variants use this rather than risk dropping the command that
// the caller is about to block waiting on.
func (m *Manager) postBlocking(msg fsm.Message) {
	m.queue <- msg
}

func (m *Manager) syncTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return m.cfg.SyncWaitDefault
	}
	return timeout
}

// --- Public API: Start ---

// StartAsync posts START without waiting for the outcome.
func (m *Manager) StartAsync() error {
	switch fsm.Validate(m.GetState(), fsm.CommandStart) {
	case fsm.ActionError:
		return ErrInvalidState
	case fsm.ActionSkip:
		return nil
	}
	return m.postAsync(fsm.CommandMessage(fsm.CommandStart))
}

// StartSync posts START and blocks until the worker reports the outcome
// or timeout elapses. On timeout it issues an async STOP to roll back a
// stuck driver.
func (m *Manager) StartSync(timeout time.Duration) error {
	return m.runSync(fsm.CommandStart, timeout,
		fsm.BitStarted, fsm.BitStartFailed,
		fsm.CommandStop)
}

// --- Public API: Stop ---

func (m *Manager) StopAsync() error {
	switch fsm.Validate(m.GetState(), fsm.CommandStop) {
	case fsm.ActionError:
		return ErrInvalidState
	case fsm.ActionSkip:
		return nil
	}
	return m.postAsync(fsm.CommandMessage(fsm.CommandStop))
}

// StopSync posts STOP and blocks until the worker reports the outcome or
// timeout elapses. No rollback is attempted on a STOP timeout.
func (m *Manager) StopSync(timeout time.Duration) error {
	return m.runSync(fsm.CommandStop, timeout,
		fsm.BitStopped, fsm.BitStopFailed,
		-1)
}

// --- Public API: Connect ---

func (m *Manager) ConnectAsync() error {
	switch fsm.Validate(m.GetState(), fsm.CommandConnect) {
	case fsm.ActionError:
		return ErrInvalidState
	case fsm.ActionSkip:
		return nil
	}
	return m.postAsync(fsm.CommandMessage(fsm.CommandConnect))
}

// ConnectSync posts CONNECT and blocks until the worker reports the
// outcome or timeout elapses. On timeout it issues an async DISCONNECT to
// roll back a stuck driver.
func (m *Manager) ConnectSync(timeout time.Duration) error {
	return m.runSync(fsm.CommandConnect, timeout,
		fsm.BitConnected, fsm.BitConnectFailed,
		fsm.CommandDisconnect)
}

// --- Public API: Disconnect ---

func (m *Manager) DisconnectAsync() error {
	switch fsm.Validate(m.GetState(), fsm.CommandDisconnect) {
	case fsm.ActionError:
		return ErrInvalidState
	case fsm.ActionSkip:
		return nil
	}
	return m.postAsync(fsm.CommandMessage(fsm.CommandDisconnect))
}

// DisconnectSync posts DISCONNECT and blocks until the worker reports the
// outcome or timeout elapses. No rollback is attempted on a DISCONNECT
// timeout.
func (m *Manager) DisconnectSync(timeout time.Duration) error {
	return m.runSync(fsm.CommandDisconnect, timeout,
		fsm.BitDisconnected, 0,
		-1)
}

// runSync implements the shared sync-variant prologue/wait/rollback shape
// all four commands share. failBit of 0 means the command has no
// dedicated failure bit (the disconnect special case); a rollbackCmd of -1
// means no rollback is attempted on timeout.
func (m *Manager) runSync(cmd fsm.Command, timeout time.Duration, okBit, failBit fsm.SyncBits, rollbackCmd fsm.Command) error {
	switch fsm.Validate(m.GetState(), cmd) {
	case fsm.ActionError:
		return ErrInvalidState
	case fsm.ActionSkip:
		return nil
	}

	wanted := okBit | failBit | fsm.BitInvalidState
	m.sync.Clear(wanted)
	m.postBlocking(fsm.CommandMessage(cmd))

	got, ok := m.sync.Wait(wanted, m.syncTimeout(timeout))
	if !ok {
		if rollbackCmd >= 0 {
			_ = m.postAsync(fsm.CommandMessage(rollbackCmd))
		}
		return ErrTimeout
	}
	switch {
	case got.Has(okBit):
		return nil
	case failBit != 0 && got.Has(failBit):
		return ErrFail
	case got.Has(fsm.BitInvalidState):
		return ErrInvalidState
	}
	return ErrTimeout
}

// --- Public API: credentials ---

// SetCredentials clamps lengths, persists ssid/password via the store,
// resets the retry/backoff counters and, if the connection is currently
// active, issues a defensive driver Disconnect so the next Connect uses
// the new credentials. It never reconnects automatically; the caller must
// call Connect. This is the one public API that touches the driver from
// the caller's own goroutine instead of through the worker queue.
func (m *Manager) SetCredentials(ctx context.Context, ssid, password string) error {
	// Clamp to the 32-byte SSID and 64-byte password limits.
	if len(ssid) > 32 {
		ssid = ssid[:32]
	}
	if len(password) > 64 {
		password = password[:64]
	}
	if err := store.ValidateCredentials(ssid, password); err != nil {
		return err
	}
	if err := m.store.SaveCredentials(ctx, ssid, password); err != nil {
		return err
	}
	m.mu.Lock()
	m.retry.Reset()
	active := m.state.IsActive()
	m.mu.Unlock()
	if active {
		if err := m.driver.Disconnect(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("defensive disconnect after credential change failed")
		}
	}
	return nil
}

// ClearCredentials wipes ssid/password and marks credentials invalid.
func (m *Manager) ClearCredentials(ctx context.Context) error {
	return m.store.ClearCredentials(ctx)
}

// FactoryReset wipes driver-persisted configuration and forces state to
// INITIALIZED. This bypasses the worker (there is no driver event that
// naturally produces this transition); the state mutex still serializes it
// against the worker's own writes.
func (m *Manager) FactoryReset(ctx context.Context) error {
	if err := m.store.FactoryReset(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	m.state = fsm.StateInitialized
	m.mu.Unlock()
	return nil
}
