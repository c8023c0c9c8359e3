package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBaselineIsValid(t *testing.T) {
	if err := validate(Baseline()); err != nil {
		t.Fatalf("Baseline() should validate, got %v", err)
	}
}

func TestLoadWithNoPathReturnsBaselineWithEnvOverrides(t *testing.T) {
	os.Setenv("WIFIMGR_QUEUE_CAPACITY", "20")
	defer os.Unsetenv("WIFIMGR_QUEUE_CAPACITY")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.QueueCapacity != 20 {
		t.Errorf("expected env override to set QueueCapacity=20, got %d", cfg.QueueCapacity)
	}
}

func TestLoadFromFileOverridesBaseline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wifimgr.yaml")
	content := "queue_capacity: 42\nhttp_addr: \":9090\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%s) failed: %v", path, err)
	}
	if cfg.QueueCapacity != 42 {
		t.Errorf("expected QueueCapacity=42 from file, got %d", cfg.QueueCapacity)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("expected HTTPAddr=:9090 from file, got %q", cfg.HTTPAddr)
	}
	// Untouched fields still come from baseline.
	if cfg.CommandTimeoutConnect != Baseline().CommandTimeoutConnect {
		t.Errorf("expected untouched field to retain baseline value")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wifimgr.yaml")
	if err := os.WriteFile(path, []byte("queue_capacity: 42\n"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	os.Setenv("WIFIMGR_QUEUE_CAPACITY", "99")
	defer os.Unsetenv("WIFIMGR_QUEUE_CAPACITY")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.QueueCapacity != 99 {
		t.Errorf("expected env (99) to win over file (42), got %d", cfg.QueueCapacity)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load with missing optional file should not error, got %v", err)
	}
	if cfg.QueueCapacity != Baseline().QueueCapacity {
		t.Errorf("expected baseline to apply when file is absent")
	}
}

func TestLoadRejectsInvalidQueueCapacity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wifimgr.yaml")
	// A zero in the file reads as "unset" and falls back to baseline, so
	// the invalid value has to be negative to reach validation.
	if err := os.WriteFile(path, []byte("queue_capacity: -1\n"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for a negative queue_capacity")
	}
}

func TestValidateRejectsMissingAuthMaterial(t *testing.T) {
	cases := []struct {
		name string
		cfg  func() ManagerConfig
	}{
		{"rs256 without key or jwks", func() ManagerConfig {
			cfg := Baseline()
			cfg.AuthAlgorithm = "RS256"
			cfg.AuthSecretKey = ""
			return cfg
		}},
		{"hs256 without secret", func() ManagerConfig {
			cfg := Baseline()
			cfg.AuthAlgorithm = "HS256"
			cfg.AuthSecretKey = ""
			return cfg
		}},
		{"unsupported algorithm", func() ManagerConfig {
			cfg := Baseline()
			cfg.AuthAlgorithm = "ES256"
			return cfg
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := validate(c.cfg()); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestEnvDurationFallsBackOnInvalidValue(t *testing.T) {
	os.Setenv("WIFIMGR_COMMAND_TIMEOUT_CONNECT", "not-a-duration")
	defer os.Unsetenv("WIFIMGR_COMMAND_TIMEOUT_CONNECT")

	cfg := Baseline()
	want := cfg.CommandTimeoutConnect
	applyEnvOverrides(&cfg)
	if cfg.CommandTimeoutConnect != want {
		t.Errorf("expected invalid duration env var to be ignored, got %v", cfg.CommandTimeoutConnect)
	}
}

func TestEnvDurationAppliesValidValue(t *testing.T) {
	os.Setenv("WIFIMGR_HEARTBEAT_PERIOD", "5s")
	defer os.Unsetenv("WIFIMGR_HEARTBEAT_PERIOD")

	cfg := Baseline()
	applyEnvOverrides(&cfg)
	if cfg.HeartbeatPeriod != 5*time.Second {
		t.Errorf("expected HeartbeatPeriod=5s, got %v", cfg.HeartbeatPeriod)
	}
}
