package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Entry is a single audit record.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Outcome   string    `json:"outcome"`
	Error     string    `json:"error,omitempty"`
	LatencyMS int64     `json:"latency_ms"`
}

// actorKey is the context key WithActor stores the caller's subject under
// (internal/api sets it from the JWT claims). Kept unexported and typed to
// avoid collisions.
type actorKey struct{}

// WithActor returns a context carrying actor as the audit subject for any
// LogAction call made against it.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok && v != "" {
		return v
	}
	return "local"
}

// Logger writes one JSON line per action to a lumberjack-rotated file.
// Implements manager.AuditLogger.
type Logger struct {
	mu   sync.Mutex
	out  *lumberjack.Logger
	path string
}

// NewLogger opens (creating if necessary) the audit log under dir, rotating
// at maxSizeMB with up to maxBackups retained for maxAgeDays.
func NewLogger(dir string, maxSizeMB, maxBackups, maxAgeDays int) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit log dir: %w", err)
	}
	path := filepath.Join(dir, "audit.jsonl")
	return &Logger{
		path: path,
		out: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		},
	}, nil
}

// LogAction records one public API call. err may be nil.
func (l *Logger) LogAction(ctx context.Context, action string, err error, latency time.Duration) {
	entry := Entry{
		Timestamp: time.Now().UTC(),
		Actor:     actorFromContext(ctx),
		Action:    action,
		Outcome:   "ok",
		LatencyMS: latency.Milliseconds(),
	}
	if err != nil {
		entry.Outcome = "error"
		entry.Error = err.Error()
	}
	l.write(entry)
}

func (l *Logger) write(entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "audit: marshal entry: %v\n", err)
		return
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.out.Write(data); err != nil {
		fmt.Fprintf(os.Stderr, "audit: write entry: %v\n", err)
	}
}

// Path returns the audit log's current file path.
func (l *Logger) Path() string {
	return l.path
}

// Close releases the underlying file handle.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.Close()
}
