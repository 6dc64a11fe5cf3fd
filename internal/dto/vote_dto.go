package dto

import "github.com/google/uuid"

type VoteRequest struct {
	TargetType string    `json:"target_type" validate:"required,oneof=item group"`
	TargetId   uuid.UUID `json:"target_id" validate:"required"`
	Count      int       `json:"count" validate:"min=0,max=2"`
}

type VoteResponse struct {
	TargetType      string    `json:"target_type"`
	TargetId        uuid.UUID `json:"target_id"`
	Count           int       `json:"count"`
	RemainingBudget int       `json:"remaining_budget"`
}

type AggregateResponse struct {
	Entries []DiscussionEntry `json:"entries"`
}
