package driver

import (
	"testing"

	"github.com/aluiziotomazelli/wifi-manager/internal/fsm"
)

func TestClassifyBuckets(t *testing.T) {
	cases := []struct {
		reason fsm.DisconnectReason
		want   Bucket
	}{
		{fsm.ReasonAssocLeave, BucketPeerInitiated},
		{fsm.ReasonAuthFail, BucketSuspect},
		{fsm.Reason8021XAuthFailed, BucketSuspect},
		{fsm.Reason4WayHandshakeTimeout, BucketSuspect},
		{fsm.ReasonHandshakeTimeout, BucketSuspect},
		{fsm.ReasonConnectionFail, BucketSuspect},
		{fsm.ReasonBeaconTimeout, BucketRecoverable},
		{fsm.ReasonNoAPFound, BucketRecoverable},
		{fsm.ReasonUnspecified, BucketRecoverable},
	}
	for _, c := range cases {
		if got := Classify(c.reason); got != c.want {
			t.Errorf("Classify(%s) = %s, want %s", c.reason, got, c.want)
		}
	}
}

func TestClassifyUnknownReasonIsRecoverable(t *testing.T) {
	if got := Classify(fsm.DisconnectReason(99)); got != BucketRecoverable {
		t.Errorf("unknown reason should classify as recoverable, got %s", got)
	}
}
