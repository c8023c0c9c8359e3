package fsm

// unset marks a validate-table cell that init() has not yet assigned, so
// the exhaustiveness check below can tell a deliberate ActionError from a
// forgotten cell. It never survives init().
const unset Action = -1

var validateTable [StateCount][controllableCount]Action

// skipBits records, for the (state, command) cells whose Action is SKIP,
// which sync bit (if any) the worker releases immediately. A cell absent
// from this map means the command is redundant with an operation already
// in flight: no bit is released and the caller keeps waiting for the
// in-flight operation's own eventual bit. This distinguishes "fail-fast
// success" for an already-satisfied condition from silent absorption of a
// duplicate in-progress request, since both resolve to the same SKIP
// action and are otherwise indistinguishable without this side table.
var skipBits = map[[2]int]SyncBits{}

func setValidate(s State, c Command, a Action) {
	validateTable[s][c] = a
}

func setSkipBit(s State, c Command, bit SyncBits) {
	skipBits[[2]int{int(s), int(c)}] = bit
}

// SkipBit returns the bit a SKIP action releases for (state, cmd), or
// (0, false) if the command is absorbed silently pending an already
// in-flight operation's own completion.
func SkipBit(state State, cmd Command) (SyncBits, bool) {
	bit, ok := skipBits[[2]int{int(state), int(cmd)}]
	return bit, ok
}

func init() {
	for s := State(0); s < StateCount; s++ {
		for c := 0; c < controllableCount; c++ {
			validateTable[s][c] = unset
		}
	}

	// UNINITIALIZED, INITIALIZING: no command is meaningful before init
	// completes.
	for _, s := range []State{StateUninitialized, StateInitializing} {
		for _, c := range []Command{CommandStart, CommandStop, CommandConnect, CommandDisconnect} {
			setValidate(s, c, ActionError)
		}
	}

	setValidate(StateInitialized, CommandStart, ActionExecute)
	setValidate(StateInitialized, CommandStop, ActionSkip)
	setSkipBit(StateInitialized, CommandStop, BitStopped)
	setValidate(StateInitialized, CommandConnect, ActionError)
	setValidate(StateInitialized, CommandDisconnect, ActionError)

	setValidate(StateStarting, CommandStart, ActionSkip) // absorbed: in-flight start
	setValidate(StateStarting, CommandStop, ActionExecute)
	setValidate(StateStarting, CommandConnect, ActionError)
	setValidate(StateStarting, CommandDisconnect, ActionError)

	setValidate(StateStarted, CommandStart, ActionSkip)
	setSkipBit(StateStarted, CommandStart, BitStarted)
	setValidate(StateStarted, CommandStop, ActionExecute)
	setValidate(StateStarted, CommandConnect, ActionExecute)
	setValidate(StateStarted, CommandDisconnect, ActionSkip)
	setSkipBit(StateStarted, CommandDisconnect, BitDisconnected)

	for _, s := range []State{StateConnecting, StateConnectedNoIP, StateConnectedGotIP} {
		setValidate(s, CommandStart, ActionSkip)
		setSkipBit(s, CommandStart, BitStarted)
		setValidate(s, CommandStop, ActionExecute)
		setValidate(s, CommandConnect, ActionSkip) // see per-state override below
		setValidate(s, CommandDisconnect, ActionExecute)
	}
	// CONNECTING: connect is redundant with the in-flight attempt.
	// CONNECTED_NO_IP: not yet "connected" per is_connected; wait for the
	// GOT_IP that will eventually release CONNECTED_BIT on its own.
	// CONNECTED_GOT_IP: already fully connected, fail-fast success.
	setSkipBit(StateConnectedGotIP, CommandConnect, BitConnected)

	setValidate(StateDisconnecting, CommandStart, ActionSkip)
	setSkipBit(StateDisconnecting, CommandStart, BitStarted)
	setValidate(StateDisconnecting, CommandStop, ActionExecute)
	setValidate(StateDisconnecting, CommandConnect, ActionError)
	setValidate(StateDisconnecting, CommandDisconnect, ActionSkip) // absorbed: in-flight disconnect

	for _, s := range []State{StateWaitingReconnect, StateErrorCredentials} {
		setValidate(s, CommandStart, ActionSkip)
		setSkipBit(s, CommandStart, BitStarted)
		setValidate(s, CommandStop, ActionExecute)
		setValidate(s, CommandConnect, ActionExecute)
		setValidate(s, CommandDisconnect, ActionExecute)
	}

	setValidate(StateStopping, CommandStart, ActionError)
	setValidate(StateStopping, CommandStop, ActionSkip) // absorbed: in-flight stop
	setValidate(StateStopping, CommandConnect, ActionError)
	setValidate(StateStopping, CommandDisconnect, ActionError)

	for s := State(0); s < StateCount; s++ {
		for c := 0; c < controllableCount; c++ {
			if validateTable[s][c] == unset {
				panic("fsm: validate table missing cell for state/command")
			}
		}
	}

	initResolveTable()
}

var resolveTable [StateCount][EventCount]Resolution

func selfLoop(s State) Resolution { return Resolution{NextState: s} }

func initResolveTable() {
	for s := State(0); s < StateCount; s++ {
		for e := Event(0); e < EventCount; e++ {
			resolveTable[s][e] = selfLoop(s)
		}
	}

	resolveTable[StateStarting][EventStaStart] = Resolution{NextState: StateStarted, Bits: BitStarted}
	resolveTable[StateStarting][EventStaDisconnected] = Resolution{NextState: StateInitialized, Bits: BitStartFailed}

	resolveTable[StateConnecting][EventStaConnected] = Resolution{NextState: StateConnectedNoIP}
	resolveTable[StateConnecting][EventGotIP] = Resolution{NextState: StateConnectedGotIP, Bits: BitConnected}
	resolveTable[StateConnecting][EventStaDisconnected] = Resolution{NextState: StateWaitingReconnect}

	resolveTable[StateConnectedNoIP][EventGotIP] = Resolution{NextState: StateConnectedGotIP, Bits: BitConnected}
	resolveTable[StateConnectedNoIP][EventStaDisconnected] = Resolution{NextState: StateWaitingReconnect}

	resolveTable[StateConnectedGotIP][EventLostIP] = Resolution{NextState: StateConnectedNoIP}
	resolveTable[StateConnectedGotIP][EventStaDisconnected] = Resolution{NextState: StateWaitingReconnect}

	resolveTable[StateDisconnecting][EventStaDisconnected] = Resolution{NextState: StateStarted, Bits: BitDisconnected}

	resolveTable[StateStopping][EventStaStop] = Resolution{NextState: StateInitialized, Bits: BitStopped}
}
