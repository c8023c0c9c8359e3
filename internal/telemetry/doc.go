// Package telemetry implements the SSE hub for the WiFi connection
// manager's local control API.
//
// The hub fans out manager transition events to all subscribed SSE
// clients and keeps a ring buffer of recent events so a reconnecting
// client can resume from its Last-Event-ID header.
package telemetry
