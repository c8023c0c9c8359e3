package fsm

import (
	"testing"
	"time"
)

func TestNextBackoffSchedule(t *testing.T) {
	var r RetryState
	now := time.Unix(0, 0)
	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
	}
	for i, w := range want {
		got := r.NextBackoff(now)
		if got != w {
			t.Fatalf("retry %d: want %v, got %v", i+1, w, got)
		}
	}
}

func TestNextBackoffSaturatesAt256s(t *testing.T) {
	var r RetryState
	now := time.Unix(0, 0)
	var last time.Duration
	for i := 0; i < 20; i++ {
		last = r.NextBackoff(now)
	}
	want := baseBackoff << maxBackoffShift
	if last != want {
		t.Fatalf("expected delay to saturate at %v, got %v", want, last)
	}
	if last > maxBackoff {
		t.Fatalf("delay %v exceeds ceiling %v", last, maxBackoff)
	}
}

func TestRSSISuspectLimits(t *testing.T) {
	cases := []struct {
		rssi  int8
		limit uint32
		ok    bool
	}{
		{-40, 1, true},
		{-55, 1, true},
		{-60, 2, true},
		{-67, 2, true},
		{-75, 5, true},
		{-80, 5, true},
		{-90, 0, false},
	}
	for _, c := range cases {
		limit, ok := rssiSuspectLimit(c.rssi)
		if ok != c.ok || (ok && limit != c.limit) {
			t.Errorf("rssi %d: want (%d, %v), got (%d, %v)", c.rssi, c.limit, c.ok, limit, ok)
		}
	}
}

func TestHandleSuspectFailureExhaustion(t *testing.T) {
	var r RetryState
	// GOOD tier: limit 1, exhausted on the first suspect failure.
	if !r.HandleSuspectFailure(-50) {
		t.Fatal("expected exhaustion at GOOD tier after one suspect failure")
	}
}

func TestHandleSuspectFailureCriticalNeverExhausts(t *testing.T) {
	var r RetryState
	for i := 0; i < 100; i++ {
		if r.HandleSuspectFailure(-95) {
			t.Fatalf("CRITICAL tier should never exhaust, failed at iteration %d", i)
		}
	}
}

func TestWaitDurationOnlyAppliesToWaitingReconnect(t *testing.T) {
	var r RetryState
	now := time.Unix(1000, 0)
	if _, ok := r.WaitDuration(StateStarted, now); ok {
		t.Error("expected no deadline outside WAITING_RECONNECT")
	}
	r.NextReconnectAt = now.Add(5 * time.Second)
	d, ok := r.WaitDuration(StateWaitingReconnect, now)
	if !ok || d != 5*time.Second {
		t.Errorf("want (5s, true), got (%v, %v)", d, ok)
	}
}

func TestWaitDurationNeverNegative(t *testing.T) {
	var r RetryState
	now := time.Unix(1000, 0)
	r.NextReconnectAt = now.Add(-5 * time.Second)
	d, ok := r.WaitDuration(StateWaitingReconnect, now)
	if !ok || d != 0 {
		t.Errorf("want (0, true) for a past deadline, got (%v, %v)", d, ok)
	}
}

func TestResetClearsBothCounters(t *testing.T) {
	var r RetryState
	r.NextBackoff(time.Unix(0, 0))
	r.HandleSuspectFailure(-50)
	r.Reset()
	if r.RetryCount != 0 || r.SuspectRetryCount != 0 {
		t.Fatalf("expected both counters zero after Reset, got %+v", r)
	}
}
