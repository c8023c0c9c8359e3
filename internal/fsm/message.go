package fsm

// MessageKind distinguishes a caller-issued command from a driver-issued
// event on the worker's single queue.
type MessageKind int

const (
	MessageCommand MessageKind = iota
	MessageEvent
)

// DisconnectReason identifies why a STA_DISCONNECTED event fired; carried
// only on events of that kind. Zero value is ReasonUnspecified.
type DisconnectReason int

const (
	ReasonUnspecified DisconnectReason = iota
	ReasonAssocLeave
	ReasonAuthFail
	Reason8021XAuthFailed
	Reason4WayHandshakeTimeout
	ReasonHandshakeTimeout
	ReasonConnectionFail
	ReasonBeaconTimeout
	ReasonNoAPFound
)

var reasonNames = map[DisconnectReason]string{
	ReasonUnspecified:          "UNSPECIFIED",
	ReasonAssocLeave:           "ASSOC_LEAVE",
	ReasonAuthFail:             "AUTH_FAIL",
	Reason8021XAuthFailed:      "802_1X_AUTH_FAILED",
	Reason4WayHandshakeTimeout: "4WAY_HANDSHAKE_TIMEOUT",
	ReasonHandshakeTimeout:     "HANDSHAKE_TIMEOUT",
	ReasonConnectionFail:       "CONNECTION_FAIL",
	ReasonBeaconTimeout:        "BEACON_TIMEOUT",
	ReasonNoAPFound:            "NO_AP_FOUND",
}

func (r DisconnectReason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "UNSPECIFIED"
}

// Message is the single element type carried on the worker's bounded
// queue: either a command posted by a caller or an event translated from a
// driver notification.
type Message struct {
	Kind    MessageKind
	Command Command
	Event   Event
	Reason  DisconnectReason // valid when Event == EventStaDisconnected
	RSSI    int8             // dBm, valid when Event == EventStaDisconnected
}

// CommandMessage builds a command message.
func CommandMessage(cmd Command) Message {
	return Message{Kind: MessageCommand, Command: cmd}
}

// EventMessage builds a plain event message (no disconnect metadata).
func EventMessage(evt Event) Message {
	return Message{Kind: MessageEvent, Event: evt}
}

// DisconnectMessage builds an STA_DISCONNECTED event message carrying the
// driver's reported reason and last-known RSSI.
func DisconnectMessage(reason DisconnectReason, rssi int8) Message {
	return Message{Kind: MessageEvent, Event: EventStaDisconnected, Reason: reason, RSSI: rssi}
}
