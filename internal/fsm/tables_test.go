package fsm

import "testing"

func TestValidateTableTotal(t *testing.T) {
	for s := State(0); s < StateCount; s++ {
		for c := Command(0); c < CommandExit; c++ {
			a := Validate(s, c)
			if a != ActionExecute && a != ActionSkip && a != ActionError {
				t.Fatalf("state %s command %s: undefined action %v", s, c, a)
			}
		}
	}
}

func TestExitAlwaysExecutes(t *testing.T) {
	for s := State(0); s < StateCount; s++ {
		if got := Validate(s, CommandExit); got != ActionExecute {
			t.Errorf("state %s: EXIT should always execute, got %v", s, got)
		}
	}
}

func TestResolveTableTotal(t *testing.T) {
	for s := State(0); s < StateCount; s++ {
		for e := Event(0); e < EventCount; e++ {
			res := Resolve(s, e)
			if !res.NextState.Valid() {
				t.Fatalf("state %s event %s: invalid next state", s, e)
			}
		}
	}
}

func TestNonParticipatingStatesAlwaysSelfLoop(t *testing.T) {
	quiet := []State{StateUninitialized, StateInitializing, StateInitialized, StateStarted, StateWaitingReconnect, StateErrorCredentials}
	for _, s := range quiet {
		for e := Event(0); e < EventCount; e++ {
			res := Resolve(s, e)
			if res.NextState != s || res.Bits != 0 {
				t.Errorf("state %s event %s: expected self-loop no bits, got %s/%s", s, e, res.NextState, res.Bits)
			}
		}
	}
}

func TestStartFailureRevertsAndSignals(t *testing.T) {
	res := Resolve(StateStarting, EventStaDisconnected)
	if res.NextState != StateInitialized || res.Bits != BitStartFailed {
		t.Fatalf("expected revert to INITIALIZED with START_FAILED, got %s/%s", res.NextState, res.Bits)
	}
}

func TestConnectCompletionPaths(t *testing.T) {
	if res := Resolve(StateConnecting, EventStaConnected); res.NextState != StateConnectedNoIP {
		t.Errorf("STA_CONNECTED from CONNECTING should land on CONNECTED_NO_IP, got %s", res.NextState)
	}
	if res := Resolve(StateConnecting, EventGotIP); res.NextState != StateConnectedGotIP || res.Bits != BitConnected {
		t.Errorf("GOT_IP from CONNECTING should directly land on CONNECTED_GOT_IP with CONNECTED_BIT, got %s/%s", res.NextState, res.Bits)
	}
	if res := Resolve(StateConnectedNoIP, EventGotIP); res.NextState != StateConnectedGotIP || res.Bits != BitConnected {
		t.Errorf("GOT_IP from CONNECTED_NO_IP should land on CONNECTED_GOT_IP with CONNECTED_BIT, got %s/%s", res.NextState, res.Bits)
	}
	if res := Resolve(StateConnectedGotIP, EventLostIP); res.NextState != StateConnectedNoIP {
		t.Errorf("LOST_IP should demote to CONNECTED_NO_IP, got %s", res.NextState)
	}
}

func TestDisconnectingCompletesToStarted(t *testing.T) {
	res := Resolve(StateDisconnecting, EventStaDisconnected)
	if res.NextState != StateStarted || res.Bits != BitDisconnected {
		t.Fatalf("expected STARTED with DISCONNECTED_BIT, got %s/%s", res.NextState, res.Bits)
	}
}

func TestStoppingCompletesToInitialized(t *testing.T) {
	res := Resolve(StateStopping, EventStaStop)
	if res.NextState != StateInitialized || res.Bits != BitStopped {
		t.Fatalf("expected INITIALIZED with STOPPED_BIT, got %s/%s", res.NextState, res.Bits)
	}
}

func TestSkipBitsForSatisfiedConditions(t *testing.T) {
	cases := []struct {
		state State
		cmd   Command
		bit   SyncBits
	}{
		{StateInitialized, CommandStop, BitStopped},
		{StateStarted, CommandStart, BitStarted},
		{StateStarted, CommandDisconnect, BitDisconnected},
		{StateConnectedGotIP, CommandConnect, BitConnected},
	}
	for _, c := range cases {
		bit, ok := SkipBit(c.state, c.cmd)
		if !ok || bit != c.bit {
			t.Errorf("state %s cmd %s: expected skip bit %s, got %s (ok=%v)", c.state, c.cmd, c.bit, bit, ok)
		}
	}
}

func TestSkipAbsorbedForInFlightCommands(t *testing.T) {
	inFlight := []struct {
		state State
		cmd   Command
	}{
		{StateStarting, CommandStart},
		{StateConnecting, CommandConnect},
		{StateDisconnecting, CommandDisconnect},
		{StateStopping, CommandStop},
		{StateConnectedNoIP, CommandConnect},
	}
	for _, c := range inFlight {
		if Validate(c.state, c.cmd) != ActionSkip {
			t.Errorf("state %s cmd %s: expected SKIP action", c.state, c.cmd)
		}
		if _, ok := SkipBit(c.state, c.cmd); ok {
			t.Errorf("state %s cmd %s: expected no bit released (absorbed), got one", c.state, c.cmd)
		}
	}
}
