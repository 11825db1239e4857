package model

import (
	"time"

	"github.com/google/uuid"
)

// PostModel mirrors the 'posts' table.
type PostModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title      string    `gorm:"type:varchar(255);not null"`
	Text       string    `gorm:"type:text;not null"`
	ImageURL   string    `gorm:"type:text"`
	ViewsCount int64     `gorm:"not null;default:0"`
	AuthorID   uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time

	Tags []PostTagModel `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (PostModel) TableName() string {
	return "posts"
}

// PostTagModel mirrors the 'post_tags' table. One row per tag occurrence:
// Position preserves the order within a post, and the monotonically assigned
// Seq records global first-seen order for frequency tie-breaking.
type PostTagModel struct {
	Seq      int64     `gorm:"primaryKey;autoIncrement"`
	PostID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Tag      string    `gorm:"type:varchar(255);index;not null"`
	Position int       `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (PostTagModel) TableName() string {
	return "post_tags"
}
