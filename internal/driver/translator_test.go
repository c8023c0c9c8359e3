package driver

import (
	"testing"

	"github.com/aluiziotomazelli/wifi-manager/internal/fsm"
	"github.com/rs/zerolog"
)

func TestTranslatorEnqueuesEvents(t *testing.T) {
	q := make(chan fsm.Message, 4)
	tr := NewTranslator(q, zerolog.Nop())

	tr.OnSTAStart()
	tr.OnGotIP()
	tr.OnSTADisconnected(fsm.ReasonAuthFail, -60)

	if len(q) != 3 {
		t.Fatalf("expected 3 queued messages, got %d", len(q))
	}
	msg := <-q
	if msg.Event != fsm.EventStaStart {
		t.Errorf("expected STA_START first, got %s", msg.Event)
	}
	<-q
	msg = <-q
	if msg.Event != fsm.EventStaDisconnected || msg.Reason != fsm.ReasonAuthFail || msg.RSSI != -60 {
		t.Errorf("unexpected disconnect message: %+v", msg)
	}
}

func TestTranslatorDropsWhenQueueFull(t *testing.T) {
	q := make(chan fsm.Message, 1)
	tr := NewTranslator(q, zerolog.Nop())

	tr.OnSTAStart()
	tr.OnSTAStop() // queue full, must not block

	if len(q) != 1 {
		t.Fatalf("expected only the first message queued, got %d", len(q))
	}
	if msg := <-q; msg.Event != fsm.EventStaStart {
		t.Errorf("expected the retained message to be STA_START, got %s", msg.Event)
	}
}
