package fsm

// Event is a driver-originated notification translated into the queue by
// internal/driver.Translator.
type Event int

const (
	EventStaStart Event = iota
	EventStaStop
	EventStaConnected
	EventStaDisconnected
	EventGotIP
	EventLostIP
	EventCount
)

var eventNames = [EventCount]string{
	EventStaStart:        "STA_START",
	EventStaStop:         "STA_STOP",
	EventStaConnected:    "STA_CONNECTED",
	EventStaDisconnected: "STA_DISCONNECTED",
	EventGotIP:           "GOT_IP",
	EventLostIP:          "LOST_IP",
}

func (e Event) String() string {
	if e < 0 || e >= EventCount {
		return "UNKNOWN"
	}
	return eventNames[e]
}

// Resolution is the outcome of applying an event to a state: the next state
// and the sync bits the table itself releases. Some cells (the
// STA_DISCONNECTED cells of the connecting/connected states) return a
// placeholder next state that internal/manager always overrides with the
// outcome of disconnect-reason classification; see Resolve's doc comment.
type Resolution struct {
	NextState State
	Bits      SyncBits
}

// Resolve looks up the transition for receiving event while in state. Every
// (state, event) pair is defined; states outside the six transient/active
// ones that participate in transitions self-loop with no bits released:
// any event received in a non-participating state is a no-op.
//
// For CONNECTING, CONNECTED_NO_IP and CONNECTED_GOT_IP under
// STA_DISCONNECTED, the returned NextState is WAITING_RECONNECT and Bits is
// zero: the authoritative next state and bits for that transition are
// decided by disconnect-reason classification (internal/driver), not by
// this table, and the manager always calls that classifier instead of
// trusting this cell verbatim.
func Resolve(state State, event Event) Resolution {
	if !state.Valid() || event < 0 || event >= EventCount {
		return Resolution{NextState: state}
	}
	return resolveTable[state][event]
}
