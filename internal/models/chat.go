package models

import (
	"time"

	"gorm.io/gorm"
)

type ChatType string

const (
	ChatTypeGroup   ChatType = "group"
	ChatTypePrivate ChatType = "private"
)

type Chat struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	ProjectID *uint64        `gorm:"index" json:"project_id"`
	Type      ChatType       `gorm:"type:varchar(20);not null;default:'group'" json:"type"`
	Name      string         `gorm:"type:varchar(255)" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project      *Project          `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Participants []ChatParticipant `gorm:"foreignKey:ChatID" json:"participants,omitempty"`
	Messages     []Message         `gorm:"foreignKey:ChatID" json:"messages,omitempty"`
}

// HasParticipant reports whether a user belongs to the chat.
func (c *Chat) HasParticipant(userID uint64) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
