package event

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/antonkh/budget-approval/internal/domain/entity"
)

// Event is a domain event emitted after a committed state transition. Record
// is the post-transition snapshot of the expense record.
type Event struct {
	ID        string                 `json:"id"`
	Type      Type                   `json:"type"`
	RecordID  int64                  `json:"record_id"`
	Record    *entity.ExpenseRecord  `json:"record"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewEvent creates a new domain event with auto-generated ID and timestamp
func NewEvent(eventType Type, record *entity.ExpenseRecord, payload map[string]interface{}) *Event {
	return &Event{
		ID:        generateID(),
		Type:      eventType,
		RecordID:  record.ID,
		Record:    record,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// generateID creates a unique ID using timestamp and random bytes
func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), hex.EncodeToString(b))
}
