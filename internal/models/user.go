// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user in the Aviary application.
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Username   string         `gorm:"unique;not null" json:"username"`
	FullName   string         `gorm:"not null" json:"full_name"`
	Email      string         `gorm:"unique;not null" json:"email"`
	Password   string         `gorm:"not null" json:"-"`
	Bio        string         `json:"bio"`
	Link       string         `json:"link"`
	ProfileImg string         `json:"profile_img"`
	CoverImg   string         `json:"cover_img"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// FollowersCount is not persisted; computed at query time
	FollowersCount int `gorm:"->" json:"followers_count"`
	// FollowingCount is not persisted; computed at query time
	FollowingCount int `gorm:"->" json:"following_count"`

	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}
