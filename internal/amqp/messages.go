package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind says what happened to the expense the event names.
type EventKind string

const (
	EventExpenseCreated EventKind = "expense.created"
	EventExpenseDeleted EventKind = "expense.deleted"
)

// ExpenseEvent is the message the mirror worker consumes. It carries ids
// only; the worker re-reads the row from the primary store, so a stale or
// replayed event converges on current state.
type ExpenseEvent struct {
	Kind      EventKind `json:"kind"`
	UserID    string    `json:"user_id"`
	ExpenseID string    `json:"expense_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(kind EventKind, userID, expenseID string) *ExpenseEvent {
	return &ExpenseEvent{
		Kind:      kind,
		UserID:    userID,
		ExpenseID: expenseID,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseEvent) Validate() error {
	switch m.Kind {
	case EventExpenseCreated, EventExpenseDeleted:
	default:
		return fmt.Errorf("unknown event kind %q", m.Kind)
	}
	if m.UserID == "" || m.ExpenseID == "" {
		return fmt.Errorf("event missing ids: user=%q expense=%q", m.UserID, m.ExpenseID)
	}
	return nil
}

// ToJSON converts the event to JSON bytes
func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventFromJSON creates an event from JSON bytes
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
