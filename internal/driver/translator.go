package driver

import (
	"github.com/aluiziotomazelli/wifi-manager/internal/fsm"
	"github.com/rs/zerolog"
)

// Translator converts a driver's raw notification callbacks into fsm
// messages and enqueues them onto the manager's queue with zero wait: a
// driver notification must never block on a full queue, so an event that
// cannot be enqueued immediately is dropped and logged rather than
// retried.
type Translator struct {
	queue  chan<- fsm.Message
	logger zerolog.Logger
}

// NewTranslator builds a Translator that feeds queue. queue is the
// manager's internal command/event channel; the caller retains ownership.
func NewTranslator(queue chan<- fsm.Message, logger zerolog.Logger) *Translator {
	return &Translator{queue: queue, logger: logger.With().Str("component", "translator").Logger()}
}

func (t *Translator) enqueue(msg fsm.Message) {
	select {
	case t.queue <- msg:
	default:
		t.logger.Warn().Str("event", msg.Event.String()).Msg("queue full, dropping driver event")
	}
}

// OnSTAStart notifies that the STA interface finished coming up.
func (t *Translator) OnSTAStart() { t.enqueue(fsm.EventMessage(fsm.EventStaStart)) }

// OnSTAStop notifies that the STA interface finished coming down.
func (t *Translator) OnSTAStop() { t.enqueue(fsm.EventMessage(fsm.EventStaStop)) }

// OnSTAConnected notifies that L2 association completed.
func (t *Translator) OnSTAConnected() { t.enqueue(fsm.EventMessage(fsm.EventStaConnected)) }

// OnSTADisconnected notifies that the association was lost, carrying the
// driver-reported reason identity and the last observed RSSI in dBm.
func (t *Translator) OnSTADisconnected(reason fsm.DisconnectReason, rssi int8) {
	t.enqueue(fsm.DisconnectMessage(reason, rssi))
}

// OnGotIP notifies that DHCP completed and an IP lease was acquired.
func (t *Translator) OnGotIP() { t.enqueue(fsm.EventMessage(fsm.EventGotIP)) }

// OnLostIP notifies that the DHCP lease was lost while still associated.
func (t *Translator) OnLostIP() { t.enqueue(fsm.EventMessage(fsm.EventLostIP)) }
