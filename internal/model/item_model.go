package model

import (
	"time"

	"github.com/google/uuid"
)

type Item struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorId  uuid.UUID `gorm:"type:uuid;not null;index"`
	// AuthorName is a denormalized snapshot so boards render without a user join.
	AuthorName string `gorm:"type:varchar(255)"`
	// Category is one of the four fixed buckets, immutable after creation.
	Category string `gorm:"type:varchar(20);not null;index"`
	Content  string `gorm:"type:text;not null"`
	// Position orders siblings within (session, category). Values need not be
	// contiguous; ties are broken by Id.
	Position  int        `gorm:"not null;default:0"`
	GroupId   *uuid.UUID `gorm:"type:uuid;index"`
	Discussed bool       `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Item) TableName() string {
	return "items"
}

type Group struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	// Category is the display bucket, fixed at creation from the first members.
	Category  string `gorm:"type:varchar(20);not null;index"`
	Position  int    `gorm:"not null;default:0"`
	Discussed bool   `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Group) TableName() string {
	return "item_groups"
}
