package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for everything that flows over the broadcast bus.
type Event interface {
	// EventType returns the wire code for this event (e.g. "vote_updated").
	EventType() string

	// SessionID returns the session whose subscribers receive the event.
	SessionID() uuid.UUID

	// Payload returns the data associated with the event. It is marshalled
	// as-is into the envelope next to the "type" field.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the concrete implementation used everywhere; services build
// events with New rather than defining a struct per type.
type BaseEvent struct {
	Type       string
	Session    uuid.UUID
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, sessionID uuid.UUID, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = make(map[string]interface{})
	}
	return BaseEvent{
		Type:       eventType,
		Session:    sessionID,
		Data:       data,
		OccurredAt: time.Now(),
	}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) SessionID() uuid.UUID {
	return e.Session
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Envelope flattens an event into the broadcast wire format:
// {"type": ..., "session_id": ..., <payload fields>}. Subscribers ignore keys
// and types they do not understand.
func Envelope(e Event) map[string]interface{} {
	out := make(map[string]interface{}, len(e.Payload())+2)
	for k, v := range e.Payload() {
		out[k] = v
	}
	out["type"] = e.EventType()
	out["session_id"] = e.SessionID().String()
	return out
}
