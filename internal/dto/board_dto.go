package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateItemRequest struct {
	Category string `json:"category" validate:"required,oneof=good bad idea action"`
	Content  string `json:"content" validate:"required"`
}

type CreateItemResponse struct {
	Id       uuid.UUID `json:"id"`
	Position int       `json:"position"`
}

type UpdateItemRequest struct {
	Id      uuid.UUID
	Content string `json:"content" validate:"required"`
}

type CreateGroupRequest struct {
	ItemIds  []uuid.UUID `json:"item_ids" validate:"required,min=2"`
	Category string      `json:"category" validate:"required,oneof=good bad idea action"`
	// Position is the optional insertion slot; nil appends at the end.
	Position *int `json:"position"`
}

type CreateGroupResponse struct {
	Id       uuid.UUID `json:"id"`
	Position int       `json:"position"`
}

type GroupMembershipRequest struct {
	ItemId  uuid.UUID `json:"item_id" validate:"required"`
	GroupId uuid.UUID `json:"group_id"`
}

// OrderedElement is one entry of the full column order submitted by a reorder.
type OrderedElement struct {
	Type string    `json:"type" validate:"required,oneof=item group"`
	Id   uuid.UUID `json:"id" validate:"required"`
}

type ReorderRequest struct {
	Category string           `json:"category" validate:"required,oneof=good bad idea action"`
	Elements []OrderedElement `json:"elements" validate:"required,min=1,dive"`
}

type ReorderResponse struct {
	Changed  bool        `json:"changed"`
	ItemIds  []uuid.UUID `json:"item_ids"`
	GroupIds []uuid.UUID `json:"group_ids"`
}

type MarkDiscussedRequest struct {
	Id   uuid.UUID `json:"id" validate:"required"`
	Type string    `json:"type" validate:"required,oneof=item group"`
}

type ItemResponse struct {
	Id         uuid.UUID  `json:"id"`
	AuthorId   uuid.UUID  `json:"author_id"`
	AuthorName string     `json:"author_name"`
	Category   string     `json:"category"`
	Content    string     `json:"content"`
	Position   int        `json:"position"`
	GroupId    *uuid.UUID `json:"group_id,omitempty"`
	Discussed  bool       `json:"discussed"`
	Votes      int        `json:"votes"`
	CreatedAt  time.Time  `json:"created_at"`
}

type GroupResponse struct {
	Id        uuid.UUID      `json:"id"`
	Category  string         `json:"category"`
	Position  int            `json:"position"`
	Discussed bool           `json:"discussed"`
	Votes     int            `json:"votes"`
	Items     []ItemResponse `json:"items"`
}

// BoardSnapshotResponse is the full re-fetch payload clients pull after a
// reconnect instead of trusting missed events.
type BoardSnapshotResponse struct {
	SessionId uuid.UUID       `json:"session_id"`
	Phase     string          `json:"phase"`
	Items     []ItemResponse  `json:"items"`
	Groups    []GroupResponse `json:"groups"`
}

// DiscussionEntry is one row of the aggregated voting display list.
type DiscussionEntry struct {
	Type      string    `json:"type"`
	Id        uuid.UUID `json:"id"`
	Votes     int       `json:"votes"`
	Discussed bool      `json:"discussed"`
}
