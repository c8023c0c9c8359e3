package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Load merges Baseline() with an optional YAML file and WIFIMGR_* environment
// overrides, in that precedence order (env wins over file, file wins over
// baseline). path may be empty, in which case only baseline and environment
// apply.
func Load(path string) (ManagerConfig, error) {
	cfg := Baseline()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			fileCfg, err := loadFromFile(path)
			if err != nil {
				return ManagerConfig{}, fmt.Errorf("load config file %s: %w", path, err)
			}
			cfg = mergeConfigs(cfg, fileCfg)
		} else if !os.IsNotExist(err) {
			return ManagerConfig{}, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := validate(cfg); err != nil {
		return ManagerConfig{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func loadFromFile(path string) (ManagerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ManagerConfig{}, err
	}
	var cfg ManagerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ManagerConfig{}, err
	}
	return cfg, nil
}

// mergeConfigs overlays non-zero fields of file onto base.
func mergeConfigs(base, file ManagerConfig) ManagerConfig {
	merged := base

	if file.QueueCapacity != 0 {
		merged.QueueCapacity = file.QueueCapacity
	}
	if file.CommandTimeoutStart != 0 {
		merged.CommandTimeoutStart = file.CommandTimeoutStart
	}
	if file.CommandTimeoutStop != 0 {
		merged.CommandTimeoutStop = file.CommandTimeoutStop
	}
	if file.CommandTimeoutConnect != 0 {
		merged.CommandTimeoutConnect = file.CommandTimeoutConnect
	}
	if file.CommandTimeoutDisconnect != 0 {
		merged.CommandTimeoutDisconnect = file.CommandTimeoutDisconnect
	}
	if file.DeinitDrainTimeout != 0 {
		merged.DeinitDrainTimeout = file.DeinitDrainTimeout
	}
	if file.SyncWaitDefault != 0 {
		merged.SyncWaitDefault = file.SyncWaitDefault
	}
	if file.DefaultSSID != "" {
		merged.DefaultSSID = file.DefaultSSID
	}
	if file.DefaultPassword != "" {
		merged.DefaultPassword = file.DefaultPassword
	}
	if file.StorePath != "" {
		merged.StorePath = file.StorePath
	}
	if file.AuditLogDir != "" {
		merged.AuditLogDir = file.AuditLogDir
	}
	if file.AuditMaxSizeMB != 0 {
		merged.AuditMaxSizeMB = file.AuditMaxSizeMB
	}
	if file.AuditMaxBackups != 0 {
		merged.AuditMaxBackups = file.AuditMaxBackups
	}
	if file.AuditMaxAgeDays != 0 {
		merged.AuditMaxAgeDays = file.AuditMaxAgeDays
	}
	if file.EventBufferSize != 0 {
		merged.EventBufferSize = file.EventBufferSize
	}
	if file.EventRetention != 0 {
		merged.EventRetention = file.EventRetention
	}
	if file.HeartbeatPeriod != 0 {
		merged.HeartbeatPeriod = file.HeartbeatPeriod
	}
	if file.HTTPAddr != "" {
		merged.HTTPAddr = file.HTTPAddr
	}
	if file.AuthAlgorithm != "" {
		merged.AuthAlgorithm = file.AuthAlgorithm
	}
	if file.AuthPublicKeyPEM != "" {
		merged.AuthPublicKeyPEM = file.AuthPublicKeyPEM
	}
	if file.AuthSecretKey != "" {
		merged.AuthSecretKey = file.AuthSecretKey
	}
	if file.AuthJWKSURL != "" {
		merged.AuthJWKSURL = file.AuthJWKSURL
	}

	return merged
}

// applyEnvOverrides applies WIFIMGR_* environment variables to cfg.
func applyEnvOverrides(cfg *ManagerConfig) {
	cfg.QueueCapacity = envInt("WIFIMGR_QUEUE_CAPACITY", cfg.QueueCapacity)
	cfg.CommandTimeoutStart = envDuration("WIFIMGR_COMMAND_TIMEOUT_START", cfg.CommandTimeoutStart)
	cfg.CommandTimeoutStop = envDuration("WIFIMGR_COMMAND_TIMEOUT_STOP", cfg.CommandTimeoutStop)
	cfg.CommandTimeoutConnect = envDuration("WIFIMGR_COMMAND_TIMEOUT_CONNECT", cfg.CommandTimeoutConnect)
	cfg.CommandTimeoutDisconnect = envDuration("WIFIMGR_COMMAND_TIMEOUT_DISCONNECT", cfg.CommandTimeoutDisconnect)
	cfg.DeinitDrainTimeout = envDuration("WIFIMGR_DEINIT_DRAIN_TIMEOUT", cfg.DeinitDrainTimeout)
	cfg.SyncWaitDefault = envDuration("WIFIMGR_SYNC_WAIT_DEFAULT", cfg.SyncWaitDefault)
	cfg.DefaultSSID = envString("WIFIMGR_DEFAULT_SSID", cfg.DefaultSSID)
	cfg.DefaultPassword = envString("WIFIMGR_DEFAULT_PASSWORD", cfg.DefaultPassword)
	cfg.StorePath = envString("WIFIMGR_STORE_PATH", cfg.StorePath)
	cfg.AuditLogDir = envString("WIFIMGR_AUDIT_LOG_DIR", cfg.AuditLogDir)
	cfg.AuditMaxSizeMB = envInt("WIFIMGR_AUDIT_MAX_SIZE_MB", cfg.AuditMaxSizeMB)
	cfg.AuditMaxBackups = envInt("WIFIMGR_AUDIT_MAX_BACKUPS", cfg.AuditMaxBackups)
	cfg.AuditMaxAgeDays = envInt("WIFIMGR_AUDIT_MAX_AGE_DAYS", cfg.AuditMaxAgeDays)
	cfg.EventBufferSize = envInt("WIFIMGR_EVENT_BUFFER_SIZE", cfg.EventBufferSize)
	cfg.EventRetention = envDuration("WIFIMGR_EVENT_RETENTION", cfg.EventRetention)
	cfg.HeartbeatPeriod = envDuration("WIFIMGR_HEARTBEAT_PERIOD", cfg.HeartbeatPeriod)
	cfg.HTTPAddr = envString("WIFIMGR_HTTP_ADDR", cfg.HTTPAddr)
	cfg.AuthAlgorithm = envString("WIFIMGR_AUTH_ALGORITHM", cfg.AuthAlgorithm)
	cfg.AuthPublicKeyPEM = envString("WIFIMGR_AUTH_PUBLIC_KEY_PEM", cfg.AuthPublicKeyPEM)
	cfg.AuthSecretKey = envString("WIFIMGR_AUTH_SECRET_KEY", cfg.AuthSecretKey)
	cfg.AuthJWKSURL = envString("WIFIMGR_AUTH_JWKS_URL", cfg.AuthJWKSURL)
}

// validate rejects configurations the manager core cannot run on, notably
// a non-positive queue capacity and missing auth material for the selected
// algorithm.
func validate(cfg ManagerConfig) error {
	if cfg.QueueCapacity < 1 {
		return fmt.Errorf("queue_capacity must be positive, got %d", cfg.QueueCapacity)
	}
	if cfg.CommandTimeoutConnect <= 0 {
		return fmt.Errorf("command_timeout_connect must be positive")
	}
	switch cfg.AuthAlgorithm {
	case "RS256":
		if cfg.AuthPublicKeyPEM == "" && cfg.AuthJWKSURL == "" {
			return fmt.Errorf("auth_algorithm RS256 requires auth_public_key_pem or auth_jwks_url")
		}
	case "HS256":
		if cfg.AuthSecretKey == "" {
			return fmt.Errorf("auth_algorithm HS256 requires auth_secret_key")
		}
	default:
		return fmt.Errorf("unsupported auth_algorithm %q", cfg.AuthAlgorithm)
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
