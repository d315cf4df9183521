package dto

import (
	"time"

	"github.com/projectflow/projectflow-api/internal/models"
)

// ProjectDeveloperDTO represents a developer assigned to a project
type ProjectDeveloperDTO struct {
	User     UserDTO `json:"user"`
	Accepted bool    `json:"accepted"`
}

// ProjectCommentDTO represents a project comment in API responses
type ProjectCommentDTO struct {
	ID        uint64                `json:"id"`
	Title     string                `json:"title"`
	Message   string                `json:"message"`
	Urgency   models.CommentUrgency `json:"urgency"`
	User      *UserDTO              `json:"user,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// ProjectGithubLinkDTO represents a repository link attached to a project
type ProjectGithubLinkDTO struct {
	ID  uint64 `json:"id"`
	URL string `json:"url"`
}

// ProjectListItemDTO represents a project in list responses (minimal data)
type ProjectListItemDTO struct {
	ID        uint64               `json:"id"`
	Title     string               `json:"title"`
	Status    models.ProjectStatus `json:"status"`
	Progress  int                  `json:"progress"`
	DueDate   *time.Time           `json:"due_date"`
	Client    *UserDTO             `json:"client,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// ProjectDTO represents detailed project information
type ProjectDTO struct {
	ID          uint64                 `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Status      models.ProjectStatus   `json:"status"`
	Progress    int                    `json:"progress"`
	DueDate     *time.Time             `json:"due_date"`
	ClientID    uint64                 `json:"client_id"`
	CreatedBy   uint64                 `json:"created_by"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	Client      *UserDTO               `json:"client,omitempty"`
	Creator     *UserDTO               `json:"creator,omitempty"`
	Developers  []ProjectDeveloperDTO  `json:"developers"`
	Tasks       []TaskDTO              `json:"tasks"`
	Comments    []ProjectCommentDTO    `json:"comments,omitempty"`
	GithubLinks []ProjectGithubLinkDTO `json:"github_links,omitempty"`
}

// ToProjectListItemDTO converts a Project model to a list item DTO
func ToProjectListItemDTO(project models.Project) ProjectListItemDTO {
	d := ProjectListItemDTO{
		ID:        project.ID,
		Title:     project.Title,
		Status:    project.Status,
		Progress:  project.Progress,
		DueDate:   project.DueDate,
		CreatedAt: project.CreatedAt,
	}
	if project.Client.ID != 0 {
		client := ToUserDTO(project.Client)
		d.Client = &client
	}
	return d
}

// ToProjectDTO converts a Project model to a detailed DTO
func ToProjectDTO(project models.Project) ProjectDTO {
	d := ProjectDTO{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		Status:      project.Status,
		Progress:    project.Progress,
		DueDate:     project.DueDate,
		ClientID:    project.ClientID,
		CreatedBy:   project.CreatedBy,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
		Developers:  []ProjectDeveloperDTO{},
		Tasks:       ToTaskDTOs(project.Tasks),
	}

	if project.Client.ID != 0 {
		client := ToUserDTO(project.Client)
		d.Client = &client
	}
	if project.Creator.ID != 0 {
		creator := ToUserDTO(project.Creator)
		d.Creator = &creator
	}

	for _, a := range project.Assignments {
		dev := ProjectDeveloperDTO{Accepted: a.Accepted}
		if a.User.ID != 0 {
			dev.User = ToUserDTO(a.User)
		} else {
			dev.User = UserDTO{ID: a.UserID}
		}
		d.Developers = append(d.Developers, dev)
	}

	for _, c := range project.Comments {
		d.Comments = append(d.Comments, ToProjectCommentDTO(c))
	}

	for _, link := range project.GithubLinks {
		d.GithubLinks = append(d.GithubLinks, ProjectGithubLinkDTO{ID: link.ID, URL: link.URL})
	}

	return d
}

// ToProjectCommentDTO converts a ProjectComment model to ProjectCommentDTO
func ToProjectCommentDTO(comment models.ProjectComment) ProjectCommentDTO {
	d := ProjectCommentDTO{
		ID:        comment.ID,
		Title:     comment.Title,
		Message:   comment.Message,
		Urgency:   comment.Urgency,
		CreatedAt: comment.CreatedAt,
	}
	if comment.User.ID != 0 {
		user := ToUserDTO(comment.User)
		d.User = &user
	}
	return d
}
