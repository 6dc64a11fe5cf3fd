package implementation

import (
	"context"
	"errors"

	"retroboard-be/internal/model"
	"retroboard-be/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardRepositoryImpl struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) repository.BoardRepository {
	return &BoardRepositoryImpl{db: db}
}

func (r *BoardRepositoryImpl) CreateItem(ctx context.Context, item *model.Item) error {
	return dbFor(ctx, r.db).Create(item).Error
}

func (r *BoardRepositoryImpl) GetItem(ctx context.Context, sessionID, itemID uuid.UUID) (*model.Item, error) {
	var item model.Item
	err := dbFor(ctx, r.db).
		Where("session_id = ? AND id = ?", sessionID, itemID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *BoardRepositoryImpl) GetItems(ctx context.Context, sessionID uuid.UUID, itemIDs []uuid.UUID) ([]model.Item, error) {
	var items []model.Item
	err := dbFor(ctx, r.db).
		Where("session_id = ? AND id IN ?", sessionID, itemIDs).
		Find(&items).Error
	return items, err
}

func (r *BoardRepositoryImpl) ListItems(ctx context.Context, sessionID uuid.UUID) ([]model.Item, error) {
	var items []model.Item
	err := dbFor(ctx, r.db).
		Where("session_id = ?", sessionID).
		Order("position ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *BoardRepositoryImpl) ListItemsByCategory(ctx context.Context, sessionID uuid.UUID, category string) ([]model.Item, error) {
	var items []model.Item
	err := dbFor(ctx, r.db).
		Where("session_id = ? AND category = ?", sessionID, category).
		Order("position ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *BoardRepositoryImpl) ListItemsByGroup(ctx context.Context, sessionID, groupID uuid.UUID) ([]model.Item, error) {
	var items []model.Item
	err := dbFor(ctx, r.db).
		Where("session_id = ? AND group_id = ?", sessionID, groupID).
		Order("position ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *BoardRepositoryImpl) MaxItemPosition(ctx context.Context, sessionID uuid.UUID, category string) (int, error) {
	var max *int
	err := dbFor(ctx, r.db).
		Model(&model.Item{}).
		Select("MAX(position)").
		Where("session_id = ? AND category = ?", sessionID, category).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

func (r *BoardRepositoryImpl) UpdateItemFields(ctx context.Context, itemID uuid.UUID, fields map[string]interface{}) error {
	result := dbFor(ctx, r.db).
		Model(&model.Item{}).
		Where("id = ?", itemID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("item not found")
	}
	return nil
}

func (r *BoardRepositoryImpl) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return dbFor(ctx, r.db).
		Where("id = ?", itemID).
		Delete(&model.Item{}).Error
}

func (r *BoardRepositoryImpl) CreateGroup(ctx context.Context, group *model.Group) error {
	return dbFor(ctx, r.db).Create(group).Error
}

func (r *BoardRepositoryImpl) GetGroup(ctx context.Context, sessionID, groupID uuid.UUID) (*model.Group, error) {
	var group model.Group
	err := dbFor(ctx, r.db).
		Where("session_id = ? AND id = ?", sessionID, groupID).
		First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *BoardRepositoryImpl) ListGroups(ctx context.Context, sessionID uuid.UUID) ([]model.Group, error) {
	var groups []model.Group
	err := dbFor(ctx, r.db).
		Where("session_id = ?", sessionID).
		Order("position ASC, id ASC").
		Find(&groups).Error
	return groups, err
}

func (r *BoardRepositoryImpl) ListGroupsByCategory(ctx context.Context, sessionID uuid.UUID, category string) ([]model.Group, error) {
	var groups []model.Group
	err := dbFor(ctx, r.db).
		Where("session_id = ? AND category = ?", sessionID, category).
		Order("position ASC, id ASC").
		Find(&groups).Error
	return groups, err
}

func (r *BoardRepositoryImpl) UpdateGroupFields(ctx context.Context, groupID uuid.UUID, fields map[string]interface{}) error {
	result := dbFor(ctx, r.db).
		Model(&model.Group{}).
		Where("id = ?", groupID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("group not found")
	}
	return nil
}

func (r *BoardRepositoryImpl) DeleteGroup(ctx context.Context, groupID uuid.UUID) error {
	return dbFor(ctx, r.db).
		Where("id = ?", groupID).
		Delete(&model.Group{}).Error
}

func (r *BoardRepositoryImpl) ShiftPositionsFrom(ctx context.Context, sessionID uuid.UUID, category string, from int) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Item{}).
			Where("session_id = ? AND category = ? AND position >= ?", sessionID, category, from).
			Update("position", gorm.Expr("position + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&model.Group{}).
			Where("session_id = ? AND category = ? AND position >= ?", sessionID, category, from).
			Update("position", gorm.Expr("position + 1")).Error
	})
}

func (r *BoardRepositoryImpl) ApplyOrder(ctx context.Context, sessionID uuid.UUID, itemPositions, groupPositions map[uuid.UUID]int) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		for id, pos := range itemPositions {
			if err := tx.Model(&model.Item{}).
				Where("session_id = ? AND id = ?", sessionID, id).
				Update("position", pos).Error; err != nil {
				return err
			}
		}
		for id, pos := range groupPositions {
			if err := tx.Model(&model.Group{}).
				Where("session_id = ? AND id = ?", sessionID, id).
				Update("position", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
