// Package config loads the WiFi connection manager's runtime
// configuration: queue capacity, per-command timeouts, store and audit
// paths, telemetry buffering, and auth material.
//
// A baseline default is layered with an optional YAML file and then
// WIFIMGR_* environment variables, in that order of precedence.
package config
