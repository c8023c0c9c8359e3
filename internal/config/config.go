package config

import "time"

// ManagerConfig holds every tunable the manager core, store, audit,
// telemetry and API layers need at startup.
type ManagerConfig struct {
	// QueueCapacity bounds the worker's command/event queue.
	QueueCapacity int `yaml:"queue_capacity"`

	// Per-command driver-call timeouts.
	CommandTimeoutStart      time.Duration `yaml:"command_timeout_start"`
	CommandTimeoutStop       time.Duration `yaml:"command_timeout_stop"`
	CommandTimeoutConnect    time.Duration `yaml:"command_timeout_connect"`
	CommandTimeoutDisconnect time.Duration `yaml:"command_timeout_disconnect"`

	// DeinitDrainTimeout bounds how long Deinit waits for the worker to
	// settle before it force-stops.
	DeinitDrainTimeout time.Duration `yaml:"deinit_drain_timeout"`

	// SyncWaitDefault bounds how long a sync API call waits for its sync
	// bit before returning TIMEOUT, when the caller supplies no override.
	SyncWaitDefault time.Duration `yaml:"sync_wait_default"`

	// DefaultSSID/DefaultPassword seed EnsureConfigFallback on a device
	// with no configured credentials yet. Empty DefaultSSID disables
	// fallback seeding.
	DefaultSSID     string `yaml:"default_ssid"`
	DefaultPassword string `yaml:"default_password"`

	// StorePath is the bbolt database path for the valid-flag backend.
	StorePath string `yaml:"store_path"`

	// AuditLogDir is the directory audit.jsonl (and its rotations) live in.
	AuditLogDir     string `yaml:"audit_log_dir"`
	AuditMaxSizeMB  int    `yaml:"audit_max_size_mb"`
	AuditMaxBackups int    `yaml:"audit_max_backups"`
	AuditMaxAgeDays int    `yaml:"audit_max_age_days"`

	// EventBufferSize/Retention size the telemetry hub's shared replay
	// buffer (event count and age).
	EventBufferSize int           `yaml:"event_buffer_size"`
	EventRetention  time.Duration `yaml:"event_retention"`
	HeartbeatPeriod time.Duration `yaml:"heartbeat_period"`

	// HTTPAddr is the local control-API listen address.
	HTTPAddr string `yaml:"http_addr"`

	// Auth settings, passed straight through to auth.VerifierConfig.
	AuthAlgorithm    string `yaml:"auth_algorithm"` // "RS256" or "HS256"
	AuthPublicKeyPEM string `yaml:"auth_public_key_pem"`
	AuthSecretKey    string `yaml:"auth_secret_key"`
	AuthJWKSURL      string `yaml:"auth_jwks_url"`
}

// Baseline returns the manager's default configuration, tuned for an
// embedded STA device: short per-command timeouts, a small bounded queue,
// conservative reconnect pacing handled entirely by fsm.RetryState.
func Baseline() ManagerConfig {
	return ManagerConfig{
		QueueCapacity:            10,
		CommandTimeoutStart:      5 * time.Second,
		CommandTimeoutStop:       5 * time.Second,
		CommandTimeoutConnect:    15 * time.Second,
		CommandTimeoutDisconnect: 5 * time.Second,
		DeinitDrainTimeout:       2 * time.Second,
		SyncWaitDefault:          20 * time.Second,
		DefaultSSID:              "",
		DefaultPassword:          "",
		StorePath:                "wifi_manager.db",
		AuditLogDir:              "logs",
		AuditMaxSizeMB:           10,
		AuditMaxBackups:          5,
		AuditMaxAgeDays:          30,
		EventBufferSize:          64,
		EventRetention:           10 * time.Minute,
		HeartbeatPeriod:          15 * time.Second,
		HTTPAddr:                 ":8080",
		AuthAlgorithm:            "HS256",
		AuthSecretKey:            "dev-only-change-me",
	}
}
