package dto

import (
	"time"

	"github.com/google/uuid"
)

// BroadcastMessage is the watermill payload between the mutating services and
// the broadcaster consumer.
type BroadcastMessage struct {
	Type       string                 `json:"type"`
	SessionId  uuid.UUID              `json:"session_id"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}
