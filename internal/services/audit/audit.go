// Package audit emits domain events to an external sink. Emission is
// fire-and-forget: a slow or failed sink must never block or fail the
// mutating operation that produced the event.
package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tooltrack_backend/internal/models"
)

// Sink consumes domain events. Implementations must not block.
type Sink interface {
	Emit(event models.DomainEvent)
}

// Emitter buffers events on a channel and forwards them to a drain
// goroutine. When the buffer is full the event is dropped and counted,
// never blocking the caller.
type Emitter struct {
	events chan models.DomainEvent
}

// NewEmitter starts an emitter whose drain goroutine logs every event as a
// structured audit line.
func NewEmitter(buffer int) *Emitter {
	if buffer <= 0 {
		buffer = 256
	}
	e := &Emitter{events: make(chan models.DomainEvent, buffer)}
	go e.drain()
	return e
}

// Emit queues one event, dropping it if the buffer is full.
func (e *Emitter) Emit(event models.DomainEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case e.events <- event:
	default:
		log.Warn().
			Str("entity_type", event.EntityType).
			Int64("entity_id", event.EntityID).
			Str("action", event.Action).
			Msg("Audit buffer full, event dropped")
	}
}

func (e *Emitter) drain() {
	for event := range e.events {
		log.Info().
			Str("audit_event_id", event.ID).
			Str("entity_type", event.EntityType).
			Int64("entity_id", event.EntityID).
			Str("action", event.Action).
			Str("actor_id", event.ActorID).
			Time("timestamp", event.Timestamp).
			Interface("previous_value", event.PreviousValue).
			Interface("new_value", event.NewValue).
			Msg("Domain event")
	}
}

// Close stops the drain goroutine after the queue empties.
func (e *Emitter) Close() {
	close(e.events)
}

// NopSink discards every event; used in tests.
type NopSink struct{}

// Emit does nothing.
func (NopSink) Emit(models.DomainEvent) {}
