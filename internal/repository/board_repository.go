package repository

import (
	"context"

	"retroboard-be/internal/model"

	"github.com/google/uuid"
)

type BoardRepository interface {
	// Items
	CreateItem(ctx context.Context, item *model.Item) error
	GetItem(ctx context.Context, sessionID, itemID uuid.UUID) (*model.Item, error)
	GetItems(ctx context.Context, sessionID uuid.UUID, itemIDs []uuid.UUID) ([]model.Item, error)
	ListItems(ctx context.Context, sessionID uuid.UUID) ([]model.Item, error)
	ListItemsByCategory(ctx context.Context, sessionID uuid.UUID, category string) ([]model.Item, error)
	ListItemsByGroup(ctx context.Context, sessionID, groupID uuid.UUID) ([]model.Item, error)
	MaxItemPosition(ctx context.Context, sessionID uuid.UUID, category string) (int, error)
	UpdateItemFields(ctx context.Context, itemID uuid.UUID, fields map[string]interface{}) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error

	// Groups
	CreateGroup(ctx context.Context, group *model.Group) error
	GetGroup(ctx context.Context, sessionID, groupID uuid.UUID) (*model.Group, error)
	ListGroups(ctx context.Context, sessionID uuid.UUID) ([]model.Group, error)
	ListGroupsByCategory(ctx context.Context, sessionID uuid.UUID, category string) ([]model.Group, error)
	UpdateGroupFields(ctx context.Context, groupID uuid.UUID, fields map[string]interface{}) error
	DeleteGroup(ctx context.Context, groupID uuid.UUID) error

	// ShiftPositionsFrom bumps every item and group of the category whose
	// position is >= from by +1, making room for an insertion.
	ShiftPositionsFrom(ctx context.Context, sessionID uuid.UUID, category string, from int) error

	// ApplyOrder assigns the given dense positions in one transaction.
	// Keys are item/group ids, values the new position.
	ApplyOrder(ctx context.Context, sessionID uuid.UUID, itemPositions, groupPositions map[uuid.UUID]int) error
}
