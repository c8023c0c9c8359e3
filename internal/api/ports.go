package api

import (
	"context"
	"net/http"
	"time"

	"github.com/aluiziotomazelli/wifi-manager/internal/fsm"
	"github.com/aluiziotomazelli/wifi-manager/internal/manager"
)

// ManagerPort is the minimal interface the API needs from the Manager
// Core's public surface.
type ManagerPort interface {
	GetState() fsm.State
	IsCredentialsValid() (bool, error)

	StartAsync() error
	StartSync(timeout time.Duration) error
	StopAsync() error
	StopSync(timeout time.Duration) error
	ConnectAsync() error
	ConnectSync(timeout time.Duration) error
	DisconnectAsync() error
	DisconnectSync(timeout time.Duration) error

	SetCredentials(ctx context.Context, ssid, password string) error
	ClearCredentials(ctx context.Context) error
	FactoryReset(ctx context.Context) error
}

// TelemetryPort defines the minimal interface the API needs from the
// telemetry hub.
type TelemetryPort interface {
	Subscribe(w http.ResponseWriter, r *http.Request) error
}

// Compile-time assertions for port conformance.
var _ ManagerPort = (*manager.Manager)(nil)
