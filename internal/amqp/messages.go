package amqp

import (
	"encoding/json"
	"time"
)

// Change operations carried by EntityChangeMessage.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// EntityChangeMessage announces a committed write. Consumers interested in
// the full row fetch it themselves; the message only carries identity.
type EntityChangeMessage struct {
	Entity    string    `json:"entity"` // "ledger", "category" or "transaction"
	Op        string    `json:"op"`
	ID        int64     `json:"id"`
	LedgerID  int64     `json:"ledgerId"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntityChangeMessage creates a change message stamped with the current
// time.
func NewEntityChangeMessage(entity, op string, id, ledgerID int64) *EntityChangeMessage {
	return &EntityChangeMessage{
		Entity:    entity,
		Op:        op,
		ID:        id,
		LedgerID:  ledgerID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *EntityChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntityChangeMessageFromJSON creates a message from JSON bytes.
func EntityChangeMessageFromJSON(data []byte) (*EntityChangeMessage, error) {
	var msg EntityChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
