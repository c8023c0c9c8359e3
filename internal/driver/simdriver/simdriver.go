// Package simdriver provides a synchronous, in-memory simulated WiFi
// driver: no real radio, no real DHCP client, just enough behavior to
// exercise internal/manager end to end in tests and the demo daemon.
package simdriver

import (
	"context"
	"errors"
	"sync"

	"github.com/aluiziotomazelli/wifi-manager/internal/driver"
	"github.com/aluiziotomazelli/wifi-manager/internal/fsm"
)

// FailureMode lets a test script the driver into failing a specific call.
type FailureMode int

const (
	FailNone FailureMode = iota
	FailStart
	FailStop
	FailConnect
	FailDisconnect
)

// Driver is a simulated station driver. Every control method runs
// synchronously and, on success, calls the registered Translator itself;
// a test decides whether to let that happen automatically (AutoNotify) or
// drive notifications manually via the exported On* passthroughs for
// precise event-ordering tests.
type Driver struct {
	mu sync.Mutex

	translator *driver.Translator
	autoNotify bool

	initialized  bool
	started      bool
	connected    bool
	gotIP        bool
	ssid, pass   string
	cfgSSID      string
	cfgPass      string
	failure      FailureMode
	nextReason   fsm.DisconnectReason
	nextRSSI     int8
	initErr      error
	deinitErr    error
	restoreErr   error
	getConfigErr error
}

// New builds a simulated driver. autoNotify, when true, makes Start/Stop/
// Connect/Disconnect immediately fire the matching translator callback on
// success, which is convenient for scenario tests that don't care about
// the exact interleaving of the command's return and its completion
// event; set it false to drive notifications manually and test the
// transient-state window.
func New(autoNotify bool) *Driver {
	return &Driver{autoNotify: autoNotify}
}

func (d *Driver) RegisterTranslator(t *driver.Translator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.translator = t
}

// SetFailure arms the driver to fail the next call matching mode. Call
// with FailNone to disarm.
func (d *Driver) SetFailure(mode FailureMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failure = mode
}

// SetNextDisconnectReason arms the reason/RSSI the disconnect notification
// emitted by Disconnect() carries. NotifyDisconnected uses its own
// arguments instead.
func (d *Driver) SetNextDisconnectReason(reason fsm.DisconnectReason, rssi int8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextReason = reason
	d.nextRSSI = rssi
}

func (d *Driver) Init(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initErr != nil {
		return d.initErr
	}
	d.initialized = true
	return nil
}

func (d *Driver) Deinit(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deinitErr != nil {
		return d.deinitErr
	}
	d.initialized = false
	d.started = false
	return nil
}

func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.failure == FailStart {
		d.failure = FailNone
		d.mu.Unlock()
		return errors.New("simdriver: simulated start failure")
	}
	d.started = true
	notify := d.autoNotify
	tr := d.translator
	d.mu.Unlock()
	if notify && tr != nil {
		tr.OnSTAStart()
	}
	return nil
}

func (d *Driver) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.failure == FailStop {
		d.failure = FailNone
		d.mu.Unlock()
		return errors.New("simdriver: simulated stop failure")
	}
	d.started = false
	d.connected = false
	d.gotIP = false
	notify := d.autoNotify
	tr := d.translator
	d.mu.Unlock()
	if notify && tr != nil {
		tr.OnSTAStop()
	}
	return nil
}

func (d *Driver) Connect(ctx context.Context, ssid, password string) error {
	d.mu.Lock()
	if d.failure == FailConnect {
		d.failure = FailNone
		d.mu.Unlock()
		return errors.New("simdriver: simulated connect failure")
	}
	d.ssid, d.pass = ssid, password
	d.connected = true
	notify := d.autoNotify
	tr := d.translator
	d.mu.Unlock()
	if notify && tr != nil {
		tr.OnSTAConnected()
	}
	return nil
}

func (d *Driver) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	if d.failure == FailDisconnect {
		d.failure = FailNone
		d.mu.Unlock()
		return errors.New("simdriver: simulated disconnect failure")
	}
	d.connected = false
	d.gotIP = false
	reason, rssi := d.nextReason, d.nextRSSI
	notify := d.autoNotify
	tr := d.translator
	d.mu.Unlock()
	if notify && tr != nil {
		tr.OnSTADisconnected(reason, rssi)
	}
	return nil
}

func (d *Driver) SetConfig(ctx context.Context, ssid, password string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfgSSID, d.cfgPass = ssid, password
	return nil
}

func (d *Driver) GetConfig(ctx context.Context) (string, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.getConfigErr != nil {
		return "", "", d.getConfigErr
	}
	return d.cfgSSID, d.cfgPass, nil
}

func (d *Driver) Restore(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.restoreErr != nil {
		return d.restoreErr
	}
	d.cfgSSID, d.cfgPass = "", ""
	return nil
}

// NotifyStarted fires the translator's STA_START callback directly, for
// manual-notify tests driving start completion themselves.
func (d *Driver) NotifyStarted() {
	d.mu.Lock()
	d.started = true
	tr := d.translator
	d.mu.Unlock()
	if tr != nil {
		tr.OnSTAStart()
	}
}

// NotifyStopped fires the translator's STA_STOP callback directly.
func (d *Driver) NotifyStopped() {
	d.mu.Lock()
	d.started = false
	tr := d.translator
	d.mu.Unlock()
	if tr != nil {
		tr.OnSTAStop()
	}
}

// NotifyGotIP fires the translator's GOT_IP callback directly, for tests
// driving DHCP completion independent of Connect.
func (d *Driver) NotifyGotIP() {
	d.mu.Lock()
	d.gotIP = true
	tr := d.translator
	d.mu.Unlock()
	if tr != nil {
		tr.OnGotIP()
	}
}

// NotifyLostIP fires the translator's LOST_IP callback directly.
func (d *Driver) NotifyLostIP() {
	d.mu.Lock()
	d.gotIP = false
	tr := d.translator
	d.mu.Unlock()
	if tr != nil {
		tr.OnLostIP()
	}
}

// NotifyDisconnected fires the translator's disconnect callback directly
// with the given reason/RSSI, bypassing Disconnect() entirely, for
// simulating a driver-initiated (unsolicited) disconnect.
func (d *Driver) NotifyDisconnected(reason fsm.DisconnectReason, rssi int8) {
	d.mu.Lock()
	d.connected = false
	d.gotIP = false
	tr := d.translator
	d.mu.Unlock()
	if tr != nil {
		tr.OnSTADisconnected(reason, rssi)
	}
}

// State exposes the driver's simulated internal state for assertions.
func (d *Driver) State() (initialized, started, connected, gotIP bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized, d.started, d.connected, d.gotIP
}
