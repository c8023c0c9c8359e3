// Package store implements the credential store: the ssid/password pair
// lives at the driver/NVS layer, while the small "are these credentials
// still believed good" flag lives in a separate KV backend. Two backends
// are provided: boltstore (bbolt, for a real device) and memstore (tests).
package store

import (
	"context"
	"fmt"

	"github.com/aluiziotomazelli/wifi-manager/internal/driver"
)

const (
	maxSSIDLen     = 32
	maxPasswordLen = 64
)

// Credentials is the ssid/password pair plus whether the manager currently
// believes them to still be valid.
type Credentials struct {
	SSID     string
	Password string
	Valid    bool
}

// KVBackend persists the single valid-flag bit the credential store
// needs. It is deliberately narrow: the ssid/password themselves are the
// driver's job, not this backend's.
type KVBackend interface {
	GetValid() (bool, error)
	SetValid(valid bool) error
	// ValidFlagSet reports whether SetValid has ever been called, so
	// EnsureConfigFallback can tell a genuinely never-initialized flag
	// (first boot) from one explicitly persisted false (a prior
	// credential invalidation that must survive reboot).
	ValidFlagSet() (bool, error)
	Close() error
}

// Store is the credential store component: save/load/clear credentials,
// factory reset, valid-flag persistence, and fallback seeding when no
// credentials have ever been configured.
type Store struct {
	drv driver.Driver
	kv  KVBackend
}

// New builds a Store over drv (for ssid/password) and kv (for the valid
// flag). Neither is owned exclusively by Store; internal/manager also
// calls drv directly for start/stop/connect/disconnect.
func New(drv driver.Driver, kv KVBackend) *Store {
	return &Store{drv: drv, kv: kv}
}

// ValidateCredentials enforces the SSID/password length bounds before
// anything is persisted.
func ValidateCredentials(ssid, password string) error {
	if len(ssid) == 0 || len(ssid) > maxSSIDLen {
		return fmt.Errorf("store: ssid must be 1-%d bytes, got %d", maxSSIDLen, len(ssid))
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("store: password must be at most %d bytes, got %d", maxPasswordLen, len(password))
	}
	return nil
}

// SaveCredentials validates, writes ssid/password to the driver and marks
// the credentials valid.
func (s *Store) SaveCredentials(ctx context.Context, ssid, password string) error {
	if err := ValidateCredentials(ssid, password); err != nil {
		return err
	}
	if err := s.drv.SetConfig(ctx, ssid, password); err != nil {
		return fmt.Errorf("store: set driver config: %w", err)
	}
	if err := s.kv.SetValid(true); err != nil {
		return fmt.Errorf("store: persist valid flag: %w", err)
	}
	return nil
}

// LoadCredentials reads back the current ssid/password and valid flag.
func (s *Store) LoadCredentials(ctx context.Context) (Credentials, error) {
	ssid, password, err := s.drv.GetConfig(ctx)
	if err != nil {
		return Credentials{}, fmt.Errorf("store: get driver config: %w", err)
	}
	valid, err := s.kv.GetValid()
	if err != nil {
		return Credentials{}, fmt.Errorf("store: read valid flag: %w", err)
	}
	return Credentials{SSID: ssid, Password: password, Valid: valid}, nil
}

// ClearCredentials wipes the ssid/password at the driver layer and marks
// the credentials invalid, without touching the driver's other state.
func (s *Store) ClearCredentials(ctx context.Context) error {
	if err := s.drv.SetConfig(ctx, "", ""); err != nil {
		return fmt.Errorf("store: clear driver config: %w", err)
	}
	return s.SaveValidFlag(false)
}

// FactoryReset restores the driver to its factory configuration and marks
// credentials invalid. Distinct from ClearCredentials in that it also
// wipes whatever else the driver considers factory state (calibration,
// regulatory domain, etc., all opaque to Store).
func (s *Store) FactoryReset(ctx context.Context) error {
	if err := s.drv.Restore(ctx); err != nil {
		return fmt.Errorf("store: restore driver: %w", err)
	}
	return s.SaveValidFlag(false)
}

// IsValid reports whether the currently stored credentials are still
// believed good.
func (s *Store) IsValid() (bool, error) {
	return s.kv.GetValid()
}

// SaveValidFlag persists valid independent of a credentials write, used
// after GOT_IP (mark valid again) and after a suspect-exhausted disconnect
// (mark invalid).
func (s *Store) SaveValidFlag(valid bool) error {
	if err := s.kv.SetValid(valid); err != nil {
		return fmt.Errorf("store: persist valid flag: %w", err)
	}
	return nil
}

// EnsureConfigFallback is called once at Init. If the driver holds no
// configured ssid, it seeds the default credentials (from
// internal/config) so a freshly provisioned device has something to try
// rather than sitting in INITIALIZED forever. If the driver already holds
// a configured ssid but the valid flag has never been written (first boot
// against pre-existing driver config), it is set true rather than left at
// its false zero value; a flag explicitly persisted false by a prior
// credential invalidation is left untouched.
func (s *Store) EnsureConfigFallback(ctx context.Context, defaultSSID, defaultPassword string) error {
	ssid, _, err := s.drv.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("store: get driver config: %w", err)
	}
	if ssid == "" {
		if defaultSSID == "" {
			return nil
		}
		return s.SaveCredentials(ctx, defaultSSID, defaultPassword)
	}

	set, err := s.kv.ValidFlagSet()
	if err != nil {
		return fmt.Errorf("store: read valid flag presence: %w", err)
	}
	if set {
		return nil
	}
	return s.SaveValidFlag(true)
}

// Close releases the KV backend's resources.
func (s *Store) Close() error { return s.kv.Close() }
