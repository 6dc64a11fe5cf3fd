package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Session struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string    `gorm:"type:varchar(255);not null"`
	OwnerId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Phase      string    `gorm:"type:varchar(20);not null;default:'feedback'"`
	VoteBudget int       `gorm:"not null;default:5"`

	// Timer sub-state. DurationMin + StartedAt are enough for every client
	// to derive the remaining time locally; the server never pushes expiry.
	TimerDurationMin int        `gorm:""`
	TimerStartedAt   *time.Time `gorm:""`

	Completed   bool       `gorm:"not null;default:false"`
	CompletedAt *time.Time `gorm:""`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Session) TableName() string {
	return "sessions"
}

// TimerRunning reports whether a countdown is currently active.
func (s *Session) TimerRunning() bool {
	return s.TimerStartedAt != nil && s.TimerDurationMin > 0
}

// TimerRemaining returns the remaining countdown at `now`, floored at zero.
func (s *Session) TimerRemaining(now time.Time) time.Duration {
	if !s.TimerRunning() {
		return 0
	}
	end := s.TimerStartedAt.Add(time.Duration(s.TimerDurationMin) * time.Minute)
	if rem := end.Sub(now); rem > 0 {
		return rem
	}
	return 0
}
