package repository

import (
	"context"

	"retroboard-be/internal/model"

	"github.com/google/uuid"
)

type VoteRepository interface {
	Get(ctx context.Context, sessionID, userID uuid.UUID, targetType string, targetID uuid.UUID) (*model.Vote, error)
	Upsert(ctx context.Context, vote *model.Vote) error
	Delete(ctx context.Context, sessionID, userID uuid.UUID, targetType string, targetID uuid.UUID) error

	// SumByUser returns the user's total spent weight in the session.
	SumByUser(ctx context.Context, sessionID, userID uuid.UUID) (int, error)

	// ListBySession returns every vote row of the session (for aggregation).
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Vote, error)

	// DeleteByTargets removes all votes on the given targets, e.g. when items
	// get grouped and their discussion weight resets to the group level.
	DeleteByTargets(ctx context.Context, sessionID uuid.UUID, targetType string, targetIDs []uuid.UUID) error
}

type BoardEventRepository interface {
	Append(ctx context.Context, event *model.BoardEvent) error
}
