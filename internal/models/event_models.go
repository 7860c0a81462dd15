package models

import "time"

// DomainEvent is the audit payload emitted after every mutating operation.
// Emission is fire-and-forget; the sink must never block or fail the
// primary operation.
type DomainEvent struct {
	ID            string      `json:"id"`
	EntityType    string      `json:"entity_type"`
	EntityID      int64       `json:"entity_id"`
	Action        string      `json:"action"`
	ActorID       string      `json:"actor_id"`
	Timestamp     time.Time   `json:"timestamp"`
	PreviousValue interface{} `json:"previous_value,omitempty"`
	NewValue      interface{} `json:"new_value,omitempty"`
}
