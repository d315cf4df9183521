package repository

import (
	"github.com/projectflow/projectflow-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// ListByProject lists a project's tasks, optionally only those assigned to a user
func (r *GormTaskRepository) ListByProject(projectID uint64, assignedUserID *uint64) ([]models.Task, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).
		Where("tasks.project_id = ?", projectID).
		Preload("Assignments.User").
		Preload("Comments.User")

	if assignedUserID != nil {
		assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", *assignedUserID)
		query = query.Where("EXISTS (?)", assignmentSubQuery)
	}

	if err := query.Order("tasks.created_at ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// CreateAndRebalance inserts a task and persists the rebalanced weights of its
// peers plus the project's recomputed progress in one transaction.
func (r *GormTaskRepository) CreateAndRebalance(task *models.Task, developerIDs []uint64, peers []models.Task, project *models.Project) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		if err := replaceTaskAssignments(tx, task.ID, developerIDs); err != nil {
			return err
		}
		return saveRebalance(tx, peers, project)
	})
}

// UpdateAndRebalance saves a task, replaces its developer set, and persists
// the rebalanced peer weights plus the project row in one transaction.
func (r *GormTaskRepository) UpdateAndRebalance(task *models.Task, developerIDs []uint64, peers []models.Task, project *models.Project) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}
		if err := replaceTaskAssignments(tx, task.ID, developerIDs); err != nil {
			return err
		}
		return saveRebalance(tx, peers, project)
	})
}

// DeleteAndRebalance removes a task and persists the rebalanced weights of the
// remaining set plus the project row in one transaction.
func (r *GormTaskRepository) DeleteAndRebalance(taskID uint64, remaining []models.Task, project *models.Project) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Task{}, taskID).Error; err != nil {
			return err
		}
		return saveRebalance(tx, remaining, project)
	})
}

// UpdateStatus saves a task's status together with the project row
func (r *GormTaskRepository) UpdateStatus(task *models.Task, project *models.Project) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}
		return tx.Save(project).Error
	})
}

// AddComment stores a task comment; when the comment reopens a completed task
// the task and project rows are written in the same transaction.
func (r *GormTaskRepository) AddComment(comment *models.TaskComment, reopened *models.Task, project *models.Project) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if reopened == nil {
			return nil
		}
		if err := tx.Save(reopened).Error; err != nil {
			return err
		}
		return tx.Save(project).Error
	})
}

func saveRebalance(tx *gorm.DB, tasks []models.Task, project *models.Project) error {
	for i := range tasks {
		if err := tx.Model(&models.Task{}).Where("id = ?", tasks[i].ID).
			Update("weight", tasks[i].Weight).Error; err != nil {
			return err
		}
	}
	return tx.Save(project).Error
}
