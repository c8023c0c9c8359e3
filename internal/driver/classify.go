package driver

import "github.com/aluiziotomazelli/wifi-manager/internal/fsm"

// Bucket is the outcome of classifying a disconnect reason: whether it
// looks like a credentials problem, a normal peer-initiated teardown, or
// ordinary radio-layer noise the manager should just retry through.
type Bucket int

const (
	BucketRecoverable Bucket = iota
	BucketPeerInitiated
	BucketSuspect
)

func (b Bucket) String() string {
	switch b {
	case BucketRecoverable:
		return "RECOVERABLE"
	case BucketPeerInitiated:
		return "PEER_INITIATED"
	case BucketSuspect:
		return "SUSPECT"
	default:
		return "UNKNOWN"
	}
}

// reasonBuckets maps a disconnect-reason identity to its bucket, mirroring
// the shape of a vendor-error mapping table: classification is driven by
// the reason's identity, never by a raw numeric driver code.
var reasonBuckets = map[fsm.DisconnectReason]Bucket{
	fsm.ReasonAssocLeave:           BucketPeerInitiated,
	fsm.ReasonAuthFail:             BucketSuspect,
	fsm.Reason8021XAuthFailed:      BucketSuspect,
	fsm.Reason4WayHandshakeTimeout: BucketSuspect,
	fsm.ReasonHandshakeTimeout:     BucketSuspect,
	fsm.ReasonConnectionFail:       BucketSuspect,
	fsm.ReasonBeaconTimeout:        BucketRecoverable,
	fsm.ReasonNoAPFound:            BucketRecoverable,
	fsm.ReasonUnspecified:          BucketRecoverable,
}

// Classify returns the bucket for a disconnect reason. Any reason absent
// from the table (a driver-reported identity this build doesn't know
// about) is treated as recoverable: the manager keeps retrying rather than
// prematurely demanding new credentials.
func Classify(reason fsm.DisconnectReason) Bucket {
	if b, ok := reasonBuckets[reason]; ok {
		return b
	}
	return BucketRecoverable
}
