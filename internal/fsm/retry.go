package fsm

import "time"

// RSSI tiers: the stronger the signal, the fewer suspect disconnects are
// tolerated before the manager gives up and demands new credentials.
const (
	RSSIGood   = -55 // dBm; at or above: the 1st suspect disconnect escalates
	RSSIMedium = -67 // dBm; at or above: the 2nd suspect disconnect escalates
	RSSIWeak   = -80 // dBm; at or above: the 5th suspect disconnect escalates
	// Below RSSIWeak (CRITICAL): no suspect-retry limit, always recoverable.
)

var rssiTierLimits = []struct {
	floor int8
	limit uint32
}{
	{RSSIGood, 1},
	{RSSIMedium, 2},
	{RSSIWeak, 5},
}

// rssiSuspectLimit returns the suspect-disconnect count at which the
// manager escalates to ERROR_CREDENTIALS for the given RSSI, and
// whether a limit applies at all (CRITICAL tier has none).
func rssiSuspectLimit(rssi int8) (limit uint32, ok bool) {
	for _, tier := range rssiTierLimits {
		if rssi >= tier.floor {
			return tier.limit, true
		}
	}
	return 0, false
}

// maxBackoff caps the exponential reconnect delay at 5 minutes.
const maxBackoff = 300 * time.Second

// baseBackoff is the delay after the first retry.
const baseBackoff = 1 * time.Second

// maxBackoffShift bounds the exponent so retry_count growth beyond it no
// longer changes the delay: it saturates at 2^8 * 1s = 256s, below
// maxBackoff.
const maxBackoffShift = 8

// RetryState tracks the reconnection backoff schedule and the
// suspect-disconnect counter used to decide when a run of failures looks
// like a credentials problem rather than transient radio noise.
type RetryState struct {
	RetryCount        uint32
	SuspectRetryCount uint32
	NextReconnectAt   time.Time
}

// Reset clears both counters. Called for every command the worker
// processes other than EXIT, whatever its validation outcome, on GOT_IP,
// and when new credentials are set.
func (r *RetryState) Reset() {
	r.RetryCount = 0
	r.SuspectRetryCount = 0
}

// HandleSuspectFailure records one more suspect-bucket disconnect at the
// given RSSI and reports whether the tolerance for the current signal tier
// has been exhausted, meaning the manager should transition to
// ERROR_CREDENTIALS instead of scheduling another reconnect attempt.
func (r *RetryState) HandleSuspectFailure(rssi int8) (exhausted bool) {
	r.SuspectRetryCount++
	limit, ok := rssiSuspectLimit(rssi)
	if !ok {
		return false
	}
	return r.SuspectRetryCount >= limit
}

// NextBackoff advances the retry counter and computes the next exponential
// backoff delay: min(300s, 1s * 2^min(retry_count-1, 8)). It records the
// resulting deadline on NextReconnectAt relative to now and returns the
// delay.
func (r *RetryState) NextBackoff(now time.Time) time.Duration {
	r.RetryCount++
	shift := r.RetryCount - 1
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	delay := baseBackoff << shift
	if delay > maxBackoff {
		delay = maxBackoff
	}
	r.NextReconnectAt = now.Add(delay)
	return delay
}

// WaitDuration returns how long the worker should block before it must
// wake to retry a reconnect, given the current state and clock. Only
// WAITING_RECONNECT carries a live deadline; every other state returns ok
// = false, meaning the worker should block on the queue alone.
func (r *RetryState) WaitDuration(state State, now time.Time) (d time.Duration, ok bool) {
	if state != StateWaitingReconnect {
		return 0, false
	}
	if r.NextReconnectAt.IsZero() {
		return 0, true
	}
	remaining := r.NextReconnectAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}
