package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleSuperAdmin Role = "Super Admin"
	RoleClient     Role = "Client"
	RoleDeveloper  Role = "Developer"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role           `gorm:"type:varchar(20);not null;default:'Client';index" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	ClientProjects  []Project           `gorm:"foreignKey:ClientID" json:"-"`
	CreatedProjects []Project           `gorm:"foreignKey:CreatedBy" json:"-"`
	Assignments     []ProjectAssignment `gorm:"foreignKey:UserID" json:"-"`
	TaskAssignments []TaskAssignment    `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}
