package models

import (
	"time"

	"gorm.io/gorm"
)

type Message struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	ChatID    uint64         `gorm:"not null;index" json:"chat_id"`
	UserID    uint64         `gorm:"not null;index" json:"user_id"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	ReadAt    *time.Time     `json:"read_at"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Chat Chat `gorm:"foreignKey:ChatID" json:"chat,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
