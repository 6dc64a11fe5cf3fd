package model

import (
	"time"

	"github.com/google/uuid"
)

// Vote stores the weight one user put on one target. Count is always >= 1;
// setting a vote to zero deletes the row instead.
type Vote struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_target"`
	UserId     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_target"`
	TargetType string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_votes_user_target"`
	TargetId   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_target"`
	Count      int       `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Vote) TableName() string {
	return "votes"
}
