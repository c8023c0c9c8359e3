// Package manager implements the Manager Core: the single worker goroutine
// that owns connection state, drains the command/event queue, applies
// internal/fsm's tables, drives internal/driver.Driver and releases sync
// bits consumed by blocking callers. Public API functions
// (Start/Stop/Connect/Disconnect, sync and async, SetCredentials,
// ClearCredentials, FactoryReset, GetState, IsCredentialsValid) run on
// caller goroutines; they validate against the state machine, post a
// message, and, for synchronous variants, wait on the sync-bits primitive
// with a timeout.
package manager
