// Package api implements a thin local HTTP control surface over the WiFi
// manager's public API, for a companion provisioning app to drive the
// device the same way on-device application code does.
//
// Every route mirrors one internal/manager call: start/stop/connect/
// disconnect, credentials, state and the transition event stream. It
// carries no policy of its own.
package api
