package manager

import "errors"

// Sentinel errors for the manager's public API. A nil error is the
// implicit OK. ErrNoMem surfaces only from Init, when resource creation
// fails; the rest surface from the command API (sync and async variants).
var (
	// ErrInvalidState is returned when a command is not legal in the
	// current state (fsm.ActionError) or when the worker's own
	// re-validation rejects a posted command.
	ErrInvalidState = errors.New("manager: invalid state for command")

	// ErrTimeout is returned by a sync API call that did not observe a
	// terminal sync bit within its deadline.
	ErrTimeout = errors.New("manager: timed out waiting for command to complete")

	// ErrFail is returned when the driver call itself failed, or a
	// terminal negative event was observed for the in-flight command.
	ErrFail = errors.New("manager: command failed")

	// ErrNoMem is returned when resource creation during Init fails.
	ErrNoMem = errors.New("manager: resource allocation failed")

	// ErrQueueFull is returned by an async post when the bounded
	// command/event queue has no free slot.
	ErrQueueFull = errors.New("manager: command queue is full")

	// ErrAlreadyInitialized / ErrNotInitialized guard the Init/Deinit
	// lifecycle itself, which sits outside the fsm's own command table.
	ErrAlreadyInitialized = errors.New("manager: already initialized")
	ErrNotInitialized     = errors.New("manager: not initialized")
)
