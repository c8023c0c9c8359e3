// Package driver defines the contract a physical (or simulated) WiFi
// station driver must satisfy, plus the disconnect-reason classification
// table and the event translator that turns driver callbacks into fsm
// messages. No physical driver ships with this module; the only
// implementation here is the simulated one in internal/driver/simdriver.
package driver

import "context"

// Driver is the contract internal/manager drives. Every method may block
// only up to the caller's context deadline. The manager's worker calls
// Start/Stop/Connect/Disconnect with a per-command timeout derived from
// internal/config; other calls pass along the context they were given.
type Driver interface {
	// Init prepares the driver for use (radio power-up, NVS access, etc).
	Init(ctx context.Context) error
	// Deinit releases everything Init acquired.
	Deinit(ctx context.Context) error

	// Start brings the STA network interface up.
	Start(ctx context.Context) error
	// Stop brings the STA network interface down.
	Stop(ctx context.Context) error

	// Connect associates to ssid using password and starts DHCP.
	Connect(ctx context.Context, ssid, password string) error
	// Disconnect tears down any active association.
	Disconnect(ctx context.Context) error

	// SetConfig persists ssid/password at the driver/NVS layer, independent
	// of the manager's own credential store.
	SetConfig(ctx context.Context, ssid, password string) error
	// GetConfig reads back the driver-persisted ssid/password.
	GetConfig(ctx context.Context) (ssid, password string, err error)
	// Restore wipes any driver-persisted configuration (factory reset).
	Restore(ctx context.Context) error

	// RegisterTranslator wires the driver's own notification source (an
	// interrupt handler, an event loop callback, a mock's timer) to t. A
	// real driver calls t.OnSTAStart / t.OnGotIP / etc. from whatever
	// context its notifications naturally arrive in; simdriver calls them
	// directly from its own goroutines.
	RegisterTranslator(t *Translator)
}
