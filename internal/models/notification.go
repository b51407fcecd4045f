package models

import "time"

// Notification types
const (
	NotificationLike   = "like"
	NotificationFollow = "follow"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Type            string    `json:"type" gorm:"size:30;index"`
	ActorID         string    `json:"actorId" gorm:"size:24;index"`     // user hex id
	RecipientID     string    `json:"recipientId" gorm:"size:24;index"` // user hex id
	TargetID        string    `json:"targetId" gorm:"size:24"`          // post or user hex id
	TargetType      string    `json:"targetType" gorm:"size:20"`        // post, user
	PreviewImageURL string    `json:"previewImageUrl"`
	Message         string    `json:"message"`
	IsRead          bool      `json:"isRead" gorm:"default:false;index"`
	CreatedAt       time.Time `json:"createdAt" gorm:"index"`
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	Notification
	Actor *UserCompact `json:"actor"`
}
