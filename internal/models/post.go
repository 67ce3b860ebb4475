// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a post in the Aviary application.
// A post must carry text, an image, or both; the service layer enforces this.
type Post struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	Text      string         `gorm:"type:text" json:"text"`
	Img       string         `json:"img"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// LikeUserIDs is the set of users that liked this post, resolved from the
	// likes table after the post query. Not persisted on the posts table.
	LikeUserIDs []uint `gorm:"-" json:"likes"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"comments"`
}
