package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Name       string `json:"name" validate:"required"`
	VoteBudget int    `json:"vote_budget" validate:"omitempty,min=1,max=20"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowSessionResponse struct {
	Id          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	OwnerId     uuid.UUID  `json:"owner_id"`
	Phase       string     `json:"phase"`
	VoteBudget  int        `json:"vote_budget"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type StepChangeResponse struct {
	Id    uuid.UUID `json:"id"`
	Phase string    `json:"phase"`
}

type StartTimerRequest struct {
	DurationMin int `json:"duration_min" validate:"required,min=1"`
}

type TimerStatusResponse struct {
	Running          bool `json:"running"`
	DurationMin      int  `json:"duration_min,omitempty"`
	RemainingSeconds int  `json:"remaining_seconds"`
	// Likes maps user id -> liked for the currently running timer.
	Likes map[string]bool `json:"likes,omitempty"`
}

type TimerLikeRequest struct {
	Liked bool `json:"liked"`
}
