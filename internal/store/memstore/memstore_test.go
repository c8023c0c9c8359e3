package memstore

import "testing"

func TestGetSetValid(t *testing.T) {
	b := New()
	valid, err := b.GetValid()
	if err != nil || valid {
		t.Fatalf("expected fresh backend invalid, got (%v, %v)", valid, err)
	}
	if set, err := b.ValidFlagSet(); err != nil || set {
		t.Fatalf("expected fresh backend unset, got (%v, %v)", set, err)
	}
	if err := b.SetValid(true); err != nil {
		t.Fatalf("SetValid: %v", err)
	}
	valid, _ = b.GetValid()
	if !valid {
		t.Fatal("expected valid=true after SetValid(true)")
	}
	if set, _ := b.ValidFlagSet(); !set {
		t.Fatal("expected set=true after SetValid(true)")
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
