package dto

import (
	"time"

	"github.com/google/uuid"
)

type ConnectedUserResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
	Roles     []string  `json:"roles"`
	IsOwner   bool      `json:"is_owner"`
	JoinedAt  time.Time `json:"joined_at"`
}

type ConnectedUsersResponse struct {
	Users []ConnectedUserResponse `json:"users"`
}
