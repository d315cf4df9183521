package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/projectflow/projectflow-api/internal/authz"
	"github.com/projectflow/projectflow-api/internal/constants"
	"github.com/projectflow/projectflow-api/internal/models"
	"github.com/projectflow/projectflow-api/internal/progress"
	"github.com/projectflow/projectflow-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrForbidden            = errors.New("action not permitted")
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectNotAccepted   = errors.New("project must be accepted first")
	ErrNotAssignedDeveloper = errors.New("user is not an assigned developer on the project")
	ErrTitleRequired        = errors.New("title is required")
	ErrMessageRequired      = errors.New("message is required")
	ErrClientNotFound       = errors.New("client not found")
	ErrInvalidDeveloper     = errors.New("one or more developers do not exist or lack the Developer role")
	ErrInvalidRawWeight     = errors.New("task raw weight must be between 1 and 5")
	ErrTaskProjectMismatch  = errors.New("task does not belong to the project")
)

var (
	criticalPattern = regexp.MustCompile(`\b(urgent|critical|immediate|asap|emergency)\b`)
	highPattern     = regexp.MustCompile(`\b(soon|important|high priority)\b`)
)

// ProjectService handles project business logic: composition edits, developer
// membership, the accept/decline lifecycle, and comments.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	authorizer  authz.Authorizer
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, authorizer authz.Authorizer) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		authorizer:  authorizer,
	}
}

// TaskInput describes one task row of a create/update submission.
type TaskInput struct {
	ID           uint64
	Title        string
	Description  string
	TaskType     string
	RawWeight    int
	Status       *models.TaskStatus
	DeveloperIDs []uint64
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Title        string
	Description  string
	ClientID     uint64
	DueDate      *time.Time
	DeveloperIDs []uint64
	Tasks        []TaskInput
}

// UpdateProjectInput represents a full project edit submission
type UpdateProjectInput struct {
	Title        string
	Description  string
	ClientID     uint64
	DueDate      *time.Time
	DeveloperIDs []uint64
	Tasks        []TaskInput
}

// CreateProject creates a project with its tasks, developer assignments, and
// group chat in one transaction.
func (s *ProjectService) CreateProject(actor *models.User, input CreateProjectInput) (*models.Project, error) {
	if !s.authorizer.Can(actor, authz.ActionCreateProjects) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	client, err := s.userRepo.FindByID(input.ClientID)
	if err != nil || client.Role != models.RoleClient {
		return nil, ErrClientNotFound
	}

	developerIDs := uniqueUint64(input.DeveloperIDs)
	if err := s.verifyDevelopers(developerIDs); err != nil {
		return nil, err
	}

	project := &models.Project{
		Title:       input.Title,
		Description: input.Description,
		Status:      models.ProjectStatusPending,
		Progress:    0,
		DueDate:     input.DueDate,
		ClientID:    input.ClientID,
		CreatedBy:   actor.ID,
	}

	tasks := make([]models.Task, len(input.Tasks))
	for i, taskInput := range input.Tasks {
		task, err := buildTask(taskInput)
		if err != nil {
			return nil, err
		}
		tasks[i] = task
	}
	progress.RecalculateWeights(tasks)

	taskChanges := make([]repository.TaskChange, len(tasks))
	for i := range tasks {
		taskChanges[i] = repository.TaskChange{
			Task:         tasks[i],
			DeveloperIDs: intersectUint64(uniqueUint64(input.Tasks[i].DeveloperIDs), developerIDs),
		}
	}

	chat := &models.Chat{
		Type: models.ChatTypeGroup,
		Name: input.Title + " Group Chat",
	}
	participantIDs, err := s.chatParticipants(input.ClientID, actor.ID, developerIDs)
	if err != nil {
		return nil, err
	}

	if err := s.projectRepo.CreateWithComposition(project, developerIDs, taskChanges, chat, participantIDs); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.projectRepo.FindByID(project.ID,
		"Client", "Creator", "Tasks.Assignments.User", "Assignments.User", "Chat.Participants")
}

// UpdateProject applies a full edit: project fields, the complete desired task
// list (create/update/delete by id diff), and the developer set. Weights are
// renormalized once over the final task set and progress recomputed, all
// committed in a single transaction.
func (s *ProjectService) UpdateProject(actor *models.User, projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	if !s.authorizer.Can(actor, authz.ActionEditProjects) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	project, err := s.projectRepo.FindByID(projectID, "Tasks", "Assignments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	client, err := s.userRepo.FindByID(input.ClientID)
	if err != nil || client.Role != models.RoleClient {
		return nil, ErrClientNotFound
	}

	newDeveloperIDs := uniqueUint64(input.DeveloperIDs)
	if err := s.verifyDevelopers(newDeveloperIDs); err != nil {
		return nil, err
	}

	existing := make(map[uint64]models.Task, len(project.Tasks))
	for _, task := range project.Tasks {
		existing[task.ID] = task
	}

	// Build the final task set. Entries with an id update an existing task,
	// entries without one are created; existing tasks missing from the
	// submission are deleted.
	finalTasks := make([]models.Task, 0, len(input.Tasks))
	developerSets := make([][]uint64, 0, len(input.Tasks))
	kept := make(map[uint64]bool, len(input.Tasks))

	for _, taskInput := range input.Tasks {
		if taskInput.ID != 0 {
			current, ok := existing[taskInput.ID]
			if !ok {
				return nil, ErrTaskProjectMismatch
			}
			merged, err := mergeTask(current, taskInput)
			if err != nil {
				return nil, err
			}
			finalTasks = append(finalTasks, merged)
			kept[taskInput.ID] = true
		} else {
			task, err := buildTask(taskInput)
			if err != nil {
				return nil, err
			}
			task.ProjectID = projectID
			finalTasks = append(finalTasks, task)
		}
		developerSets = append(developerSets,
			intersectUint64(uniqueUint64(taskInput.DeveloperIDs), newDeveloperIDs))
	}

	deleteTaskIDs := make([]uint64, 0)
	for id := range existing {
		if !kept[id] {
			deleteTaskIDs = append(deleteTaskIDs, id)
		}
	}

	// The whole final set is renormalized: weights are relative shares, so
	// any task addition or removal shifts every other task's weight.
	progress.RecalculateWeights(finalTasks)
	completion := progress.Completion(finalTasks)

	oldDeveloperIDs := project.DeveloperIDs()
	addedIDs := differenceUint64(newDeveloperIDs, oldDeveloperIDs)
	removedIDs := differenceUint64(oldDeveloperIDs, newDeveloperIDs)

	acceptedCount := 0
	removed := make(map[uint64]bool, len(removedIDs))
	for _, id := range removedIDs {
		removed[id] = true
	}
	for _, a := range project.Assignments {
		if a.Accepted && !removed[a.UserID] {
			acceptedCount++
		}
	}

	project.Title = input.Title
	project.Description = input.Description
	project.ClientID = input.ClientID
	project.DueDate = input.DueDate
	project.Progress = completion
	project.Status = progress.NextStatus(project.Status, completion, acceptedCount)
	project.Tasks = nil
	project.Assignments = nil

	change := repository.ProjectComposition{
		Project:            project,
		AddDeveloperIDs:    addedIDs,
		RemoveDeveloperIDs: removedIDs,
		DeleteTaskIDs:      deleteTaskIDs,
	}
	for i := range finalTasks {
		taskChange := repository.TaskChange{Task: finalTasks[i], DeveloperIDs: developerSets[i]}
		if finalTasks[i].ID != 0 {
			change.UpdateTasks = append(change.UpdateTasks, taskChange)
		} else {
			change.CreateTasks = append(change.CreateTasks, taskChange)
		}
	}

	change.ChatParticipantIDs, err = s.chatParticipants(input.ClientID, project.CreatedBy, newDeveloperIDs)
	if err != nil {
		return nil, err
	}

	if err := s.projectRepo.ApplyComposition(change); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.projectRepo.FindByID(projectID,
		"Client", "Creator", "Tasks.Assignments.User", "Assignments.User", "Chat.Participants")
}

// DeleteProject removes a project and all of its dependents
func (s *ProjectService) DeleteProject(actor *models.User, projectID uint64) error {
	if !s.authorizer.Can(actor, authz.ActionDeleteProjects) {
		return ErrForbidden
	}

	if _, err := s.projectRepo.FindByID(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// ListProjects returns the projects the actor may see
func (s *ProjectService) ListProjects(actor *models.User) ([]models.Project, error) {
	filter := repository.ProjectFilter{}
	switch {
	case s.authorizer.Can(actor, authz.ActionViewAllProjects):
	case s.authorizer.Can(actor, authz.ActionViewProjects):
		filter.ParticipantID = &actor.ID
	default:
		return nil, ErrForbidden
	}

	projects, err := s.projectRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

// GetProject returns a project with its relations. Developers who have not
// yet accepted their assignment are turned away.
func (s *ProjectService) GetProject(actor *models.User, projectID uint64) (*models.Project, error) {
	if !s.authorizer.Can(actor, authz.ActionViewProjects) {
		return nil, ErrForbidden
	}

	project, err := s.projectRepo.FindByID(projectID,
		"Client", "Creator", "Assignments.User",
		"Tasks.Assignments.User", "Tasks.Comments.User", "Comments.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	assignment := findAssignment(project, actor.ID)

	if !actor.IsSuperAdmin() &&
		project.ClientID != actor.ID && project.CreatedBy != actor.ID && assignment == nil {
		// Hide existence from outsiders.
		return nil, ErrProjectNotFound
	}

	if actor.Role == models.RoleDeveloper && assignment != nil && !assignment.Accepted {
		return nil, ErrProjectNotAccepted
	}

	return project, nil
}

// AcceptProject marks the actor's assignment as accepted. Once every assigned
// developer has accepted, the project and its tasks move to In Progress.
func (s *ProjectService) AcceptProject(actor *models.User, projectID uint64) error {
	project, err := s.projectRepo.FindByID(projectID, "Assignments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	assignment := findAssignment(project, actor.ID)
	if assignment == nil {
		return ErrNotAssignedDeveloper
	}

	if err := s.projectRepo.SetAccepted(projectID, actor.ID); err != nil {
		return fmt.Errorf("failed to accept project: %w", err)
	}

	allAccepted := true
	for _, a := range project.Assignments {
		if a.UserID != actor.ID && !a.Accepted {
			allAccepted = false
			break
		}
	}
	if allAccepted {
		if err := s.projectRepo.StartProject(projectID); err != nil {
			return fmt.Errorf("failed to start project: %w", err)
		}
	}

	return nil
}

// DeclineProject detaches the actor from the project, its tasks, and its
// group chat (unless the actor is also the client). A project left with no
// developers reverts to Pending.
func (s *ProjectService) DeclineProject(actor *models.User, projectID uint64) error {
	project, err := s.projectRepo.FindByID(projectID, "Assignments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if findAssignment(project, actor.ID) == nil {
		return ErrNotAssignedDeveloper
	}

	detachChat := actor.ID != project.ClientID
	if err := s.projectRepo.DetachDeveloper(projectID, actor.ID, detachChat); err != nil {
		return fmt.Errorf("failed to decline project: %w", err)
	}

	return nil
}

// AddComment stores a project comment, classifying its urgency from the
// message wording.
func (s *ProjectService) AddComment(actor *models.User, projectID uint64, title, message string) (*models.ProjectComment, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrMessageRequired
	}

	project, err := s.projectRepo.FindByID(projectID, "Assignments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if !actor.IsSuperAdmin() &&
		project.ClientID != actor.ID && project.CreatedBy != actor.ID &&
		findAssignment(project, actor.ID) == nil {
		return nil, ErrProjectNotFound
	}

	comment := &models.ProjectComment{
		ProjectID: projectID,
		UserID:    actor.ID,
		Title:     title,
		Message:   message,
		Urgency:   classifyUrgency(message),
	}

	if err := s.projectRepo.AddComment(comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	return comment, nil
}

// verifyDevelopers ensures every id belongs to a user with the Developer role
func (s *ProjectService) verifyDevelopers(developerIDs []uint64) error {
	if len(developerIDs) == 0 {
		return nil
	}
	count, err := s.userRepo.CountByIDsAndRole(developerIDs, models.RoleDeveloper)
	if err != nil {
		return fmt.Errorf("failed to verify developers: %w", err)
	}
	if int(count) != len(developerIDs) {
		return ErrInvalidDeveloper
	}
	return nil
}

// chatParticipants computes the group chat participant set:
// client, creator, every developer, and all super admins.
func (s *ProjectService) chatParticipants(clientID, creatorID uint64, developerIDs []uint64) ([]uint64, error) {
	superAdminIDs, err := s.userRepo.ListSuperAdminIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to list super admins: %w", err)
	}

	ids := make([]uint64, 0, len(developerIDs)+len(superAdminIDs)+2)
	ids = append(ids, clientID, creatorID)
	ids = append(ids, developerIDs...)
	ids = append(ids, superAdminIDs...)
	return uniqueUint64(ids), nil
}

func buildTask(input TaskInput) (models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return models.Task{}, ErrTitleRequired
	}
	if input.RawWeight < constants.MinRawWeight || input.RawWeight > constants.MaxRawWeight {
		return models.Task{}, ErrInvalidRawWeight
	}

	taskType := input.TaskType
	if taskType == "" {
		taskType = "Gathering"
	}

	return models.Task{
		Title:       input.Title,
		Description: input.Description,
		TaskType:    taskType,
		RawWeight:   input.RawWeight,
		Status:      models.TaskStatusPending,
	}, nil
}

func mergeTask(current models.Task, input TaskInput) (models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return models.Task{}, ErrTitleRequired
	}
	if input.RawWeight < constants.MinRawWeight || input.RawWeight > constants.MaxRawWeight {
		return models.Task{}, ErrInvalidRawWeight
	}

	current.Title = input.Title
	current.Description = input.Description
	if input.TaskType != "" {
		current.TaskType = input.TaskType
	}
	current.RawWeight = input.RawWeight
	if input.Status != nil {
		if !validTaskStatus(*input.Status) {
			return models.Task{}, ErrInvalidTaskStatus
		}
		current.Status = *input.Status
	}
	current.Assignments = nil
	current.Comments = nil
	return current, nil
}

func findAssignment(project *models.Project, userID uint64) *models.ProjectAssignment {
	for i := range project.Assignments {
		if project.Assignments[i].UserID == userID {
			return &project.Assignments[i]
		}
	}
	return nil
}

func classifyUrgency(message string) models.CommentUrgency {
	lowered := strings.ToLower(message)
	switch {
	case criticalPattern.MatchString(lowered):
		return models.UrgencyCritical
	case highPattern.MatchString(lowered):
		return models.UrgencyHigh
	default:
		return models.UrgencyNormal
	}
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}

// intersectUint64 keeps the values of a that are also present in b
func intersectUint64(a, b []uint64) []uint64 {
	inB := make(map[uint64]struct{}, len(b))
	for _, v := range b {
		inB[v] = struct{}{}
	}

	result := make([]uint64, 0, len(a))
	for _, v := range a {
		if _, ok := inB[v]; ok {
			result = append(result, v)
		}
	}
	return result
}

// differenceUint64 returns the values of a that are not present in b
func differenceUint64(a, b []uint64) []uint64 {
	inB := make(map[uint64]struct{}, len(b))
	for _, v := range b {
		inB[v] = struct{}{}
	}

	result := make([]uint64, 0, len(a))
	for _, v := range a {
		if _, ok := inB[v]; !ok {
			result = append(result, v)
		}
	}
	return result
}
