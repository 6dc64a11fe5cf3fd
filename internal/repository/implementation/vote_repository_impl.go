package implementation

import (
	"context"
	"errors"

	"retroboard-be/internal/model"
	"retroboard-be/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteRepositoryImpl struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) repository.VoteRepository {
	return &VoteRepositoryImpl{db: db}
}

func (r *VoteRepositoryImpl) Get(ctx context.Context, sessionID, userID uuid.UUID, targetType string, targetID uuid.UUID) (*model.Vote, error) {
	var vote model.Vote
	err := dbFor(ctx, r.db).
		Where("session_id = ? AND user_id = ? AND target_type = ? AND target_id = ?",
			sessionID, userID, targetType, targetID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}

func (r *VoteRepositoryImpl) Upsert(ctx context.Context, vote *model.Vote) error {
	return dbFor(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "session_id"}, {Name: "user_id"},
				{Name: "target_type"}, {Name: "target_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"count", "updated_at"}),
		}).
		Create(vote).Error
}

func (r *VoteRepositoryImpl) Delete(ctx context.Context, sessionID, userID uuid.UUID, targetType string, targetID uuid.UUID) error {
	return dbFor(ctx, r.db).
		Where("session_id = ? AND user_id = ? AND target_type = ? AND target_id = ?",
			sessionID, userID, targetType, targetID).
		Delete(&model.Vote{}).Error
}

func (r *VoteRepositoryImpl) SumByUser(ctx context.Context, sessionID, userID uuid.UUID) (int, error) {
	var sum *int
	err := dbFor(ctx, r.db).
		Model(&model.Vote{}).
		Select("SUM(count)").
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

func (r *VoteRepositoryImpl) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Vote, error) {
	var votes []model.Vote
	err := dbFor(ctx, r.db).
		Where("session_id = ?", sessionID).
		Find(&votes).Error
	return votes, err
}

func (r *VoteRepositoryImpl) DeleteByTargets(ctx context.Context, sessionID uuid.UUID, targetType string, targetIDs []uuid.UUID) error {
	if len(targetIDs) == 0 {
		return nil
	}
	return dbFor(ctx, r.db).
		Where("session_id = ? AND target_type = ? AND target_id IN ?", sessionID, targetType, targetIDs).
		Delete(&model.Vote{}).Error
}
