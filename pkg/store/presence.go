package store

import (
	"time"

	"github.com/google/uuid"
)

// UserSnapshot is the slice of identity the engine consumes from the outside:
// id, display name, avatar and role flags. It is captured at heartbeat time so
// presence lists render without calling back into the identity provider.
type UserSnapshot struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
	Roles     []string  `json:"roles"`
}

// Presence is the ephemeral "currently connected" record for one user in one
// session. Evicted after the TTL measured from LastSeen.
type Presence struct {
	SessionId uuid.UUID    `json:"session_id"`
	User      UserSnapshot `json:"user"`
	JoinedAt  time.Time    `json:"joined_at"`
	LastSeen  time.Time    `json:"last_seen"`
}

// TimerLike is the per-user "liked the running timer" toggle. The whole set
// for a session is cleared whenever the timer stops.
type TimerLike struct {
	SessionId uuid.UUID `json:"session_id"`
	UserId    uuid.UUID `json:"user_id"`
	Liked     bool      `json:"liked"`
}
