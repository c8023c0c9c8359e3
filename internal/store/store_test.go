package store

import (
	"context"
	"strings"
	"testing"

	"github.com/aluiziotomazelli/wifi-manager/internal/driver/simdriver"
	"github.com/aluiziotomazelli/wifi-manager/internal/store/memstore"
)

func TestSaveLoadClearCredentials(t *testing.T) {
	ctx := context.Background()
	s := New(simdriver.New(false), memstore.New())

	if err := s.SaveCredentials(ctx, "home", "hunter22"); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}
	creds, err := s.LoadCredentials(ctx)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds.SSID != "home" || creds.Password != "hunter22" || !creds.Valid {
		t.Fatalf("unexpected credentials: %+v", creds)
	}

	if err := s.ClearCredentials(ctx); err != nil {
		t.Fatalf("ClearCredentials: %v", err)
	}
	creds, _ = s.LoadCredentials(ctx)
	if creds.SSID != "" || creds.Valid {
		t.Fatalf("expected cleared credentials, got %+v", creds)
	}
}

func TestSaveCredentialsRejectsOversizedInput(t *testing.T) {
	s := New(simdriver.New(false), memstore.New())
	longSSID := strings.Repeat("a", 33)
	if err := s.SaveCredentials(context.Background(), longSSID, "pw"); err == nil {
		t.Fatal("expected error for oversized ssid")
	}
	longPass := strings.Repeat("b", 65)
	if err := s.SaveCredentials(context.Background(), "ssid", longPass); err == nil {
		t.Fatal("expected error for oversized password")
	}
}

func TestFactoryResetInvalidatesAndRestoresDriver(t *testing.T) {
	ctx := context.Background()
	d := simdriver.New(false)
	s := New(d, memstore.New())
	if err := s.SaveCredentials(ctx, "home", "hunter22"); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}
	if err := s.FactoryReset(ctx); err != nil {
		t.Fatalf("FactoryReset: %v", err)
	}
	valid, _ := s.IsValid()
	if valid {
		t.Fatal("expected invalid after factory reset")
	}
	creds, _ := s.LoadCredentials(ctx)
	if creds.SSID != "" {
		t.Fatalf("expected driver config wiped, got ssid=%q", creds.SSID)
	}
}

func TestEnsureConfigFallbackSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	s := New(simdriver.New(false), memstore.New())
	if err := s.EnsureConfigFallback(ctx, "default-ssid", "default-pass"); err != nil {
		t.Fatalf("EnsureConfigFallback: %v", err)
	}
	creds, _ := s.LoadCredentials(ctx)
	if creds.SSID != "default-ssid" || !creds.Valid {
		t.Fatalf("expected defaults seeded, got %+v", creds)
	}
}

func TestEnsureConfigFallbackNoopWhenAlreadyConfigured(t *testing.T) {
	ctx := context.Background()
	s := New(simdriver.New(false), memstore.New())
	if err := s.SaveCredentials(ctx, "existing", "pw"); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}
	if err := s.EnsureConfigFallback(ctx, "default-ssid", "default-pass"); err != nil {
		t.Fatalf("EnsureConfigFallback: %v", err)
	}
	creds, _ := s.LoadCredentials(ctx)
	if creds.SSID != "existing" {
		t.Fatalf("expected existing config preserved, got %+v", creds)
	}
}

// TestEnsureConfigFallbackValidatesPreexistingDriverConfig covers the
// second EnsureConfigFallback branch: a driver that already has an ssid
// configured (outside this Store's own SaveCredentials, e.g. factory
// provisioning) but whose valid flag was never written gets it set true,
// rather than left at the KV backend's false zero value forever.
func TestEnsureConfigFallbackValidatesPreexistingDriverConfig(t *testing.T) {
	ctx := context.Background()
	d := simdriver.New(false)
	if err := d.SetConfig(ctx, "preconfigured", "pw"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	kv := memstore.New()
	s := New(d, kv)

	if err := s.EnsureConfigFallback(ctx, "default-ssid", "default-pass"); err != nil {
		t.Fatalf("EnsureConfigFallback: %v", err)
	}
	valid, err := s.IsValid()
	if err != nil || !valid {
		t.Fatalf("expected preexisting driver config to be marked valid, got (%v, %v)", valid, err)
	}
}

// TestEnsureConfigFallbackPreservesExplicitInvalidation covers the flip
// side: a flag explicitly persisted false (e.g. after a credential
// invalidation, surviving a reboot) must not be resurrected to true just
// because the driver still has the old ssid configured.
func TestEnsureConfigFallbackPreservesExplicitInvalidation(t *testing.T) {
	ctx := context.Background()
	d := simdriver.New(false)
	if err := d.SetConfig(ctx, "home", "pw"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	kv := memstore.New()
	if err := kv.SetValid(false); err != nil {
		t.Fatalf("SetValid: %v", err)
	}
	s := New(d, kv)

	if err := s.EnsureConfigFallback(ctx, "default-ssid", "default-pass"); err != nil {
		t.Fatalf("EnsureConfigFallback: %v", err)
	}
	valid, err := s.IsValid()
	if err != nil || valid {
		t.Fatalf("expected explicit invalidation preserved, got (%v, %v)", valid, err)
	}
}
