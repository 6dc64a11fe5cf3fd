package repository

import (
	"context"

	"retroboard-be/internal/model"

	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	// UpdateFields does a partial update on the session row.
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}
