package boltstore

import (
	"path/filepath"
	"testing"
)

func TestOpenGetSetValidPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wifi.db")

	b, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := b.SetValid(true); err != nil {
		t.Fatalf("SetValid: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b2.Close()
	valid, err := b2.GetValid()
	if err != nil || !valid {
		t.Fatalf("expected valid flag to survive reopen, got (%v, %v)", valid, err)
	}
}

func TestFreshDatabaseStartsInvalid(t *testing.T) {
	dir := t.TempDir()
	b, err := Open(filepath.Join(dir, "wifi.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()
	valid, err := b.GetValid()
	if err != nil || valid {
		t.Fatalf("expected fresh db invalid, got (%v, %v)", valid, err)
	}
	if set, err := b.ValidFlagSet(); err != nil || set {
		t.Fatalf("expected fresh db unset, got (%v, %v)", set, err)
	}
	if err := b.SetValid(false); err != nil {
		t.Fatalf("SetValid: %v", err)
	}
	if set, err := b.ValidFlagSet(); err != nil || !set {
		t.Fatalf("expected set after SetValid(false), got (%v, %v)", set, err)
	}
}
