package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"pengeluaran/internal/core"
)

type EventType string

const (
	EventExpenseCreated EventType = "expense.created"
	EventExpenseDeleted EventType = "expense.deleted"
)

// ExpenseEvent announces a change to the record store. It carries the full
// record so consumers do not need to read the store to describe it.
type ExpenseEvent struct {
	Type        EventType     `json:"type"`
	ID          string        `json:"id,omitempty"`
	Date        core.Date     `json:"date"`
	Amount      core.Money    `json:"amount"`
	Category    core.Category `json:"category"`
	Description string        `json:"description"`
	Timestamp   time.Time     `json:"timestamp"`
}

// NewExpenseEvent creates an event of type t for e.
func NewExpenseEvent(t EventType, e core.Expense) *ExpenseEvent {
	return &ExpenseEvent{
		Type:        t,
		ID:          e.ID,
		Date:        e.Date,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Timestamp:   time.Now(),
	}
}

// Expense rebuilds the record carried by the event.
func (m *ExpenseEvent) Expense() core.Expense {
	return core.Expense{
		ID:          m.ID,
		Date:        m.Date,
		Amount:      m.Amount,
		Category:    m.Category,
		Description: m.Description,
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventFromJSON decodes an event and rejects unknown types.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Type {
	case EventExpenseCreated, EventExpenseDeleted:
		return &msg, nil
	}
	return nil, fmt.Errorf("unknown event type %q", msg.Type)
}
