package models

import (
	"time"

	"gorm.io/gorm"
)

type CommentUrgency string

const (
	UrgencyNormal   CommentUrgency = "Normal"
	UrgencyHigh     CommentUrgency = "High"
	UrgencyCritical CommentUrgency = "Critical"
)

type ProjectComment struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	ProjectID uint64         `gorm:"not null;index" json:"project_id"`
	UserID    uint64         `gorm:"not null;index" json:"user_id"`
	Title     string         `gorm:"type:varchar(255);not null" json:"title"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Urgency   CommentUrgency `gorm:"type:varchar(20);not null;default:'Normal'" json:"urgency"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
