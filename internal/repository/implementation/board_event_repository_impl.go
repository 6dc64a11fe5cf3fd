package implementation

import (
	"context"

	"retroboard-be/internal/model"
	"retroboard-be/internal/repository"

	"gorm.io/gorm"
)

type BoardEventRepositoryImpl struct {
	db *gorm.DB
}

func NewBoardEventRepository(db *gorm.DB) repository.BoardEventRepository {
	return &BoardEventRepositoryImpl{db: db}
}

func (r *BoardEventRepositoryImpl) Append(ctx context.Context, event *model.BoardEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}
