package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusPending    ProjectStatus = "Pending"
	ProjectStatusInProgress ProjectStatus = "In Progress"
	ProjectStatusCompleted  ProjectStatus = "Completed"
)

type Project struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Status      ProjectStatus  `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	// Progress is derived from the weighted share of completed tasks, never set directly.
	Progress  int            `gorm:"not null;default:0" json:"progress"`
	DueDate   *time.Time     `json:"due_date"`
	ClientID  uint64         `gorm:"not null;index" json:"client_id"`
	CreatedBy uint64         `gorm:"not null;index" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Client      User                 `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Creator     User                 `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Tasks       []Task               `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
	Assignments []ProjectAssignment  `gorm:"foreignKey:ProjectID" json:"assignments,omitempty"`
	Chat        *Chat                `gorm:"foreignKey:ProjectID" json:"chat,omitempty"`
	Comments    []ProjectComment     `gorm:"foreignKey:ProjectID" json:"comments,omitempty"`
	GithubLinks []ProjectGithubLink  `gorm:"foreignKey:ProjectID" json:"github_links,omitempty"`
}

// DeveloperIDs returns the ids of the currently assigned developers.
func (p *Project) DeveloperIDs() []uint64 {
	ids := make([]uint64, 0, len(p.Assignments))
	for _, a := range p.Assignments {
		ids = append(ids, a.UserID)
	}
	return ids
}

// AcceptedCount returns how many assigned developers have accepted the project.
func (p *Project) AcceptedCount() int {
	count := 0
	for _, a := range p.Assignments {
		if a.Accepted {
			count++
		}
	}
	return count
}
