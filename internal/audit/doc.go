// Package audit implements the append-only audit logger for the WiFi
// connection manager.
//
// Each public API invocation produces one JSONL record: actor (from JWT
// claims), action, outcome, error detail, and latency. The log file is
// rotated by size/age/backup-count via lumberjack.
package audit
