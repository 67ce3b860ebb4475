package models

import "time"

// NotificationType classifies the event that produced a notification.
type NotificationType string

const (
	// NotificationTypeFollow indicates someone started following the recipient.
	NotificationTypeFollow NotificationType = "follow"
	// NotificationTypeLike indicates someone liked one of the recipient's posts.
	NotificationTypeLike NotificationType = "like"
)

// Notification is an append-on-event record addressed to a single user.
// Nothing mutates after creation except the Read flag.
type Notification struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	FromUserID uint             `gorm:"not null" json:"from_user_id"`
	From       User             `gorm:"foreignKey:FromUserID" json:"from"`
	ToUserID   uint             `gorm:"not null;index" json:"to_user_id"`
	Type       NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Read       bool             `gorm:"default:false" json:"read"`
	CreatedAt  time.Time        `json:"created_at"`
}
