package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/projectflow/projectflow-api/internal/authz"
	"github.com/projectflow/projectflow-api/internal/models"
	"github.com/projectflow/projectflow-api/internal/progress"
	"github.com/projectflow/projectflow-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTaskStatus = errors.New("invalid task status")
)

// TaskService handles task business logic. Every mutation recomputes weights
// and progress over the project's entire task set, never just the mutated row.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	authorizer  authz.Authorizer
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, authorizer authz.Authorizer) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		authorizer:  authorizer,
	}
}

// ListTasks returns a project's tasks. Developers only see their own tasks
// and only once they have accepted the project.
func (s *TaskService) ListTasks(actor *models.User, projectID uint64) ([]models.Task, error) {
	project, err := s.findProject(projectID, "Assignments")
	if err != nil {
		return nil, err
	}

	assignment := findAssignment(project, actor.ID)

	switch {
	case actor.IsSuperAdmin(), project.ClientID == actor.ID, project.CreatedBy == actor.ID:
		return s.taskRepo.ListByProject(projectID, nil)
	case assignment != nil:
		if !assignment.Accepted {
			return nil, ErrProjectNotAccepted
		}
		return s.taskRepo.ListByProject(projectID, &actor.ID)
	default:
		return nil, ErrForbidden
	}
}

// CreateTask adds a task to the project and rebalances the whole set.
func (s *TaskService) CreateTask(actor *models.User, projectID uint64, input TaskInput) (*models.Task, error) {
	if !s.authorizer.Can(actor, authz.ActionCreateTasks) {
		return nil, ErrForbidden
	}

	project, err := s.findProject(projectID, "Tasks", "Assignments")
	if err != nil {
		return nil, err
	}

	task, err := buildTask(input)
	if err != nil {
		return nil, err
	}
	task.ProjectID = projectID

	// Renormalize over the full set including the new task: weights are
	// relative, so the newcomer shifts everyone's share.
	all := append(append([]models.Task{}, project.Tasks...), task)
	progress.RecalculateWeights(all)
	task.Weight = all[len(all)-1].Weight
	peers := all[:len(all)-1]

	completion := progress.Completion(all)
	project.Progress = completion
	project.Status = progress.NextStatus(project.Status, completion, project.AcceptedCount())

	developerIDs := intersectUint64(uniqueUint64(input.DeveloperIDs), project.DeveloperIDs())

	project.Tasks = nil
	project.Assignments = nil
	if err := s.taskRepo.CreateAndRebalance(&task, developerIDs, peers, project); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Assignments.User")
}

// UpdateTask edits a task and rebalances the whole set.
func (s *TaskService) UpdateTask(actor *models.User, projectID, taskID uint64, input TaskInput) (*models.Task, error) {
	if !s.authorizer.Can(actor, authz.ActionEditTasks) {
		return nil, ErrForbidden
	}

	project, task, err := s.findProjectTask(projectID, taskID)
	if err != nil {
		return nil, err
	}

	merged, err := mergeTask(*task, input)
	if err != nil {
		return nil, err
	}

	all := replaceTask(project.Tasks, merged)
	progress.RecalculateWeights(all)
	merged.Weight = weightOf(all, merged.ID)
	peers := withoutTask(all, merged.ID)

	completion := progress.Completion(all)
	project.Progress = completion
	project.Status = progress.NextStatus(project.Status, completion, project.AcceptedCount())

	developerIDs := intersectUint64(uniqueUint64(input.DeveloperIDs), project.DeveloperIDs())

	project.Tasks = nil
	project.Assignments = nil
	if err := s.taskRepo.UpdateAndRebalance(&merged, developerIDs, peers, project); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(merged.ID, "Assignments.User", "Comments.User")
}

// DeleteTask removes a task and rebalances the remaining set. Deleting the
// last task leaves previous weights alone and resets progress to zero.
func (s *TaskService) DeleteTask(actor *models.User, projectID, taskID uint64) error {
	if !s.authorizer.Can(actor, authz.ActionDeleteTasks) {
		return ErrForbidden
	}

	project, _, err := s.findProjectTask(projectID, taskID)
	if err != nil {
		return err
	}

	remaining := withoutTask(project.Tasks, taskID)
	progress.RecalculateWeights(remaining)

	completion := progress.Completion(remaining)
	project.Progress = completion
	project.Status = progress.NextStatus(project.Status, completion, project.AcceptedCount())

	project.Tasks = nil
	project.Assignments = nil
	if err := s.taskRepo.DeleteAndRebalance(taskID, remaining, project); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// UpdateTaskStatus moves a task through its lifecycle and recomputes the
// project's progress from the weighted completed share.
func (s *TaskService) UpdateTaskStatus(actor *models.User, projectID, taskID uint64, status models.TaskStatus) (*models.Task, error) {
	if !validTaskStatus(status) {
		return nil, ErrInvalidTaskStatus
	}

	project, task, err := s.findProjectTask(projectID, taskID)
	if err != nil {
		return nil, err
	}

	if !s.canTouchTaskStatus(actor, project, taskID) {
		return nil, ErrForbidden
	}

	task.Status = status
	all := replaceTask(project.Tasks, *task)

	completion := progress.Completion(all)
	project.Progress = completion
	project.Status = progress.NextStatus(project.Status, completion, project.AcceptedCount())

	task.Assignments = nil
	task.Comments = nil
	project.Tasks = nil
	project.Assignments = nil
	if err := s.taskRepo.UpdateStatus(task, project); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	return task, nil
}

// AddComment stores a task comment. Commenting on a Completed task reopens it
// to In Progress, pulling its weight out of the completed bucket, so the
// project progress is recomputed in the same transaction.
func (s *TaskService) AddComment(actor *models.User, projectID, taskID uint64, message string) (*models.TaskComment, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrMessageRequired
	}

	project, task, err := s.findProjectTask(projectID, taskID)
	if err != nil {
		return nil, err
	}

	// Only the project creator or a super admin may comment on tasks.
	if project.CreatedBy != actor.ID && !actor.IsSuperAdmin() {
		return nil, ErrForbidden
	}

	comment := &models.TaskComment{
		TaskID:  taskID,
		UserID:  actor.ID,
		Message: message,
	}

	var reopened *models.Task
	if task.Status == models.TaskStatusCompleted {
		task.Status = models.TaskStatusInProgress
		all := replaceTask(project.Tasks, *task)

		completion := progress.Completion(all)
		project.Progress = completion
		project.Status = progress.NextStatus(project.Status, completion, project.AcceptedCount())

		task.Assignments = nil
		task.Comments = nil
		project.Tasks = nil
		project.Assignments = nil
		reopened = task
	}

	if err := s.taskRepo.AddComment(comment, reopened, project); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	return comment, nil
}

func (s *TaskService) canTouchTaskStatus(actor *models.User, project *models.Project, taskID uint64) bool {
	if s.authorizer.Can(actor, authz.ActionEditTasks) || project.CreatedBy == actor.ID {
		return true
	}
	for _, task := range project.Tasks {
		if task.ID != taskID {
			continue
		}
		for _, a := range task.Assignments {
			if a.UserID == actor.ID {
				return true
			}
		}
	}
	return false
}

func (s *TaskService) findProject(projectID uint64, preload ...string) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// findProjectTask loads the project with its tasks and locates the task,
// failing when the task belongs to a different project.
func (s *TaskService) findProjectTask(projectID, taskID uint64) (*models.Project, *models.Task, error) {
	project, err := s.findProject(projectID, "Tasks.Assignments", "Assignments")
	if err != nil {
		return nil, nil, err
	}

	for i := range project.Tasks {
		if project.Tasks[i].ID == taskID {
			return project, &project.Tasks[i], nil
		}
	}

	if _, err := s.taskRepo.FindByID(taskID); err == nil {
		return nil, nil, ErrTaskProjectMismatch
	}
	return nil, nil, ErrTaskNotFound
}

func validTaskStatus(status models.TaskStatus) bool {
	switch status {
	case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted:
		return true
	}
	return false
}

func replaceTask(tasks []models.Task, replacement models.Task) []models.Task {
	result := make([]models.Task, len(tasks))
	copy(result, tasks)
	for i := range result {
		if result[i].ID == replacement.ID {
			result[i] = replacement
		}
	}
	return result
}

func withoutTask(tasks []models.Task, taskID uint64) []models.Task {
	result := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.ID != taskID {
			result = append(result, task)
		}
	}
	return result
}

func weightOf(tasks []models.Task, taskID uint64) float64 {
	for _, task := range tasks {
		if task.ID == taskID {
			return task.Weight
		}
	}
	return 0
}
