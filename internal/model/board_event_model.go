package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BoardEvent is an append-only audit row for every broadcast that left the
// engine. Written best-effort by the broadcaster; never read on the hot path.
type BoardEvent struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Type      string         `gorm:"type:varchar(50);not null"`
	Topic     string         `gorm:"type:varchar(30);not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (BoardEvent) TableName() string {
	return "board_events"
}
