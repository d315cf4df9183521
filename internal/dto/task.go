package dto

import (
	"time"

	"github.com/projectflow/projectflow-api/internal/models"
)

// TaskAssignmentDTO represents a developer assigned to a task
type TaskAssignmentDTO struct {
	User UserDTO `json:"user"`
}

// TaskCommentDTO represents a task comment in API responses
type TaskCommentDTO struct {
	ID        uint64    `json:"id"`
	Message   string    `json:"message"`
	User      *UserDTO  `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	ProjectID   uint64              `json:"project_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	TaskType    string              `json:"task_type"`
	RawWeight   int                 `json:"raw_weight"`
	Weight      float64             `json:"weight"`
	Status      models.TaskStatus   `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Assignments []TaskAssignmentDTO `json:"assignments,omitempty"`
	Comments    []TaskCommentDTO    `json:"comments,omitempty"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	d := TaskDTO{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		TaskType:    task.TaskType,
		RawWeight:   task.RawWeight,
		Weight:      task.Weight,
		Status:      task.Status,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	for _, a := range task.Assignments {
		assignment := TaskAssignmentDTO{}
		if a.User.ID != 0 {
			assignment.User = ToUserDTO(a.User)
		} else {
			assignment.User = UserDTO{ID: a.UserID}
		}
		d.Assignments = append(d.Assignments, assignment)
	}

	for _, c := range task.Comments {
		d.Comments = append(d.Comments, ToTaskCommentDTO(c))
	}

	return d
}

// ToTaskCommentDTO converts a TaskComment model to TaskCommentDTO
func ToTaskCommentDTO(comment models.TaskComment) TaskCommentDTO {
	d := TaskCommentDTO{
		ID:        comment.ID,
		Message:   comment.Message,
		CreatedAt: comment.CreatedAt,
	}
	if comment.User.ID != 0 {
		user := ToUserDTO(comment.User)
		d.User = &user
	}
	return d
}

// ToTaskDTOs converts a slice of Task models to TaskDTOs
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}
