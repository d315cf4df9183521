package repository

import (
	"errors"

	"github.com/projectflow/projectflow-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// List retrieves projects, newest first
func (r *GormProjectRepository) List(filter ProjectFilter) ([]models.Project, error) {
	var projects []models.Project

	query := r.db.Model(&models.Project{}).
		Preload("Client").
		Preload("Tasks").
		Preload("Assignments.User")

	if filter.ParticipantID != nil {
		userID := *filter.ParticipantID
		assignmentSubQuery := r.db.Model(&models.ProjectAssignment{}).
			Select("1").
			Where("project_assignments.project_id = projects.id").
			Where("project_assignments.user_id = ?", userID)
		query = query.Where("projects.client_id = ? OR projects.created_by = ? OR EXISTS (?)",
			userID, userID, assignmentSubQuery)
	}

	if err := query.Order("projects.created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

// Update saves the project row
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// CreateWithComposition creates a project with its full initial composition atomically.
func (r *GormProjectRepository) CreateWithComposition(project *models.Project, developerIDs []uint64, tasks []TaskChange, chat *models.Chat, participantIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		if len(developerIDs) > 0 {
			assignments := make([]models.ProjectAssignment, len(developerIDs))
			for i, userID := range developerIDs {
				assignments[i] = models.ProjectAssignment{ProjectID: project.ID, UserID: userID}
			}
			if err := tx.Create(&assignments).Error; err != nil {
				return err
			}
		}

		for i := range tasks {
			task := &tasks[i].Task
			task.ProjectID = project.ID
			if err := tx.Create(task).Error; err != nil {
				return err
			}
			if err := replaceTaskAssignments(tx, task.ID, tasks[i].DeveloperIDs); err != nil {
				return err
			}
		}

		chat.ProjectID = &project.ID
		if err := tx.Create(chat).Error; err != nil {
			return err
		}

		return replaceChatParticipants(tx, chat.ID, participantIDs)
	})
}

// ApplyComposition applies a full project edit in one transaction.
func (r *GormProjectRepository) ApplyComposition(change ProjectComposition) error {
	projectID := change.Project.ID

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(change.Project).Error; err != nil {
			return err
		}

		if len(change.DeleteTaskIDs) > 0 {
			if err := tx.Where("task_id IN ?", change.DeleteTaskIDs).
				Delete(&models.TaskAssignment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id IN ?", change.DeleteTaskIDs).
				Delete(&models.TaskComment{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Task{}, change.DeleteTaskIDs).Error; err != nil {
				return err
			}
		}

		for i := range change.UpdateTasks {
			task := &change.UpdateTasks[i].Task
			if err := tx.Save(task).Error; err != nil {
				return err
			}
			if err := replaceTaskAssignments(tx, task.ID, change.UpdateTasks[i].DeveloperIDs); err != nil {
				return err
			}
		}

		for i := range change.CreateTasks {
			task := &change.CreateTasks[i].Task
			task.ProjectID = projectID
			if err := tx.Create(task).Error; err != nil {
				return err
			}
			if err := replaceTaskAssignments(tx, task.ID, change.CreateTasks[i].DeveloperIDs); err != nil {
				return err
			}
		}

		// Developer pivot: removals first, then additions, both as bulk ops.
		if len(change.RemoveDeveloperIDs) > 0 {
			if err := tx.Where("project_id = ? AND user_id IN ?", projectID, change.RemoveDeveloperIDs).
				Delete(&models.ProjectAssignment{}).Error; err != nil {
				return err
			}

			// A developer removed from the project cannot stay on its tasks.
			taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", projectID)
			if err := tx.Where("user_id IN ? AND task_id IN (?)", change.RemoveDeveloperIDs, taskIDs).
				Delete(&models.TaskAssignment{}).Error; err != nil {
				return err
			}
		}
		if len(change.AddDeveloperIDs) > 0 {
			assignments := make([]models.ProjectAssignment, len(change.AddDeveloperIDs))
			for i, userID := range change.AddDeveloperIDs {
				assignments[i] = models.ProjectAssignment{ProjectID: projectID, UserID: userID}
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&assignments).Error; err != nil {
				return err
			}
		}

		// Group chat participants are fully re-synced, never patched.
		var chat models.Chat
		err := tx.Where("project_id = ? AND type = ?", projectID, models.ChatTypeGroup).
			First(&chat).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		return replaceChatParticipants(tx, chat.ID, change.ChatParticipantIDs)
	})
}

// Delete removes a project and everything hanging off it
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", id)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectGithubLink{}).Error; err != nil {
			return err
		}

		chatIDs := tx.Model(&models.Chat{}).Select("id").Where("project_id = ?", id)
		if err := tx.Where("chat_id IN (?)", chatIDs).Delete(&models.ChatParticipant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id IN (?)", chatIDs).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Chat{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}

// SetAccepted marks a developer's assignment as accepted
func (r *GormProjectRepository) SetAccepted(projectID, userID uint64) error {
	return r.db.Model(&models.ProjectAssignment{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("accepted", true).Error
}

// StartProject moves the project and all of its tasks to In Progress
func (r *GormProjectRepository) StartProject(projectID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Project{}).Where("id = ?", projectID).
			Update("status", models.ProjectStatusInProgress).Error; err != nil {
			return err
		}
		return tx.Model(&models.Task{}).Where("project_id = ?", projectID).
			Update("status", models.TaskStatusInProgress).Error
	})
}

// DetachDeveloper removes a developer from the project, its tasks, and
// optionally its group chat; reverts to Pending when nobody remains.
func (r *GormProjectRepository) DetachDeveloper(projectID, userID uint64, detachChat bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			Delete(&models.ProjectAssignment{}).Error; err != nil {
			return err
		}

		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", projectID)
		if err := tx.Where("user_id = ? AND task_id IN (?)", userID, taskIDs).
			Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		if detachChat {
			var chat models.Chat
			err := tx.Where("project_id = ? AND type = ?", projectID, models.ChatTypeGroup).
				First(&chat).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err == nil {
				if err := tx.Where("chat_id = ? AND user_id = ?", chat.ID, userID).
					Delete(&models.ChatParticipant{}).Error; err != nil {
					return err
				}
			}
		}

		var remaining int64
		if err := tx.Model(&models.ProjectAssignment{}).
			Where("project_id = ?", projectID).Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			return tx.Model(&models.Project{}).Where("id = ?", projectID).
				Update("status", models.ProjectStatusPending).Error
		}

		return nil
	})
}

// AddComment stores a project comment
func (r *GormProjectRepository) AddComment(comment *models.ProjectComment) error {
	return r.db.Create(comment).Error
}

// replaceTaskAssignments gives a task exactly the supplied developer set.
func replaceTaskAssignments(tx *gorm.DB, taskID uint64, userIDs []uint64) error {
	if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}

	assignments := make([]models.TaskAssignment, len(userIDs))
	for i, userID := range userIDs {
		assignments[i] = models.TaskAssignment{TaskID: taskID, UserID: userID}
	}
	return tx.Create(&assignments).Error
}

// replaceChatParticipants gives a chat exactly the supplied participant set.
func replaceChatParticipants(tx *gorm.DB, chatID uint64, userIDs []uint64) error {
	if err := tx.Where("chat_id = ?", chatID).Delete(&models.ChatParticipant{}).Error; err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}

	participants := make([]models.ChatParticipant, len(userIDs))
	for i, userID := range userIDs {
		participants[i] = models.ChatParticipant{ChatID: chatID, UserID: userID}
	}
	return tx.Create(&participants).Error
}
