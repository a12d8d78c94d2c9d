package amqp

import (
	"strings"
	"testing"
	"time"
)

func TestEntityChangeMessageRoundTrip(t *testing.T) {
	msg := NewEntityChangeMessage("transaction", OpUpsert, 7, 3)
	if msg.Timestamp.IsZero() {
		t.Error("timestamp not stamped")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	for _, field := range []string{`"entity":"transaction"`, `"op":"upsert"`, `"id":7`, `"ledgerId":3`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("encoded message missing %s: %s", field, data)
		}
	}

	decoded, err := EntityChangeMessageFromJSON(data)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if decoded.Entity != msg.Entity || decoded.Op != msg.Op || decoded.ID != msg.ID || decoded.LedgerID != msg.LedgerID {
		t.Errorf("decoded %+v, want %+v", decoded, msg)
	}
	if !decoded.Timestamp.Truncate(time.Second).Equal(msg.Timestamp.Truncate(time.Second)) {
		t.Errorf("timestamp drifted: %v vs %v", decoded.Timestamp, msg.Timestamp)
	}
}

func TestEntityChangeMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := EntityChangeMessageFromJSON([]byte(`not json`)); err == nil {
		t.Error("garbage accepted")
	}
}
