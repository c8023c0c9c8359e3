package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewLoggerCreatesFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, 1, 1, 1)
	if err != nil {
		t.Fatalf("NewLogger() failed: %v", err)
	}
	defer logger.Close()

	expected := filepath.Join(dir, "audit.jsonl")
	if logger.Path() != expected {
		t.Errorf("expected path %s, got %s", expected, logger.Path())
	}
}

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open audit log: %v", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("unmarshal entry: %v", err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestLogActionSuccess(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, 1, 1, 1)
	if err != nil {
		t.Fatalf("NewLogger() failed: %v", err)
	}
	defer logger.Close()

	logger.LogAction(context.Background(), "start", nil, 100*time.Millisecond)

	entries := readEntries(t, logger.Path())
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Action != "start" || e.Outcome != "ok" || e.Error != "" || e.Actor != "local" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.LatencyMS != 100 {
		t.Fatalf("expected latency 100ms, got %d", e.LatencyMS)
	}
}

func TestLogActionFailure(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, 1, 1, 1)
	if err != nil {
		t.Fatalf("NewLogger() failed: %v", err)
	}
	defer logger.Close()

	logger.LogAction(context.Background(), "connect", errors.New("driver timeout"), 50*time.Millisecond)

	entries := readEntries(t, logger.Path())
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Outcome != "error" || e.Error != "driver timeout" {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestLogActionUsesActorFromContext(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, 1, 1, 1)
	if err != nil {
		t.Fatalf("NewLogger() failed: %v", err)
	}
	defer logger.Close()

	ctx := WithActor(context.Background(), "phone-app")
	logger.LogAction(ctx, "set_credentials", nil, 10*time.Millisecond)

	entries := readEntries(t, logger.Path())
	if len(entries) != 1 || entries[0].Actor != "phone-app" {
		t.Fatalf("expected actor phone-app, got %+v", entries)
	}
}

func TestLogActionOrderingIsFIFO(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, 1, 1, 1)
	if err != nil {
		t.Fatalf("NewLogger() failed: %v", err)
	}
	defer logger.Close()

	actions := []string{"start", "connect", "set_credentials"}
	for _, a := range actions {
		logger.LogAction(context.Background(), a, nil, time.Millisecond)
	}

	entries := readEntries(t, logger.Path())
	if len(entries) != len(actions) {
		t.Fatalf("expected %d entries, got %d", len(actions), len(entries))
	}
	for i, a := range actions {
		if entries[i].Action != a {
			t.Fatalf("entry %d: expected action %s, got %s", i, a, entries[i].Action)
		}
	}
}

func TestLogActionConcurrentWritesDoNotCorrupt(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, 1, 1, 1)
	if err != nil {
		t.Fatalf("NewLogger() failed: %v", err)
	}
	defer logger.Close()

	const n = 50
	done := make(chan struct{})
	for i := 0; i < n; i++ {
		go func() {
			logger.LogAction(context.Background(), "start", nil, time.Millisecond)
			done <- struct{}{}
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}

	entries := readEntries(t, logger.Path())
	if len(entries) != n {
		t.Fatalf("expected %d entries, got %d (possible interleaved/corrupt writes)", n, len(entries))
	}
}
