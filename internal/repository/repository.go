package repository

import (
	"github.com/projectflow/projectflow-api/internal/models"
)

// TaskChange pairs a task row with the developer set it should end up with.
type TaskChange struct {
	Task         models.Task
	DeveloperIDs []uint64
}

// ProjectComposition describes the complete outcome of a project edit: the
// updated project row, the task diff, the developer pivot diff, and the final
// chat participant set. It is applied as one transaction so the weight and
// progress columns can never be observed half-written.
type ProjectComposition struct {
	Project            *models.Project
	AddDeveloperIDs    []uint64
	RemoveDeveloperIDs []uint64
	CreateTasks        []TaskChange
	UpdateTasks        []TaskChange
	DeleteTaskIDs      []uint64
	ChatParticipantIDs []uint64
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	// ParticipantID restricts the list to projects where the user is the
	// client, the creator, or an assigned developer.
	ParticipantID *uint64
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// List retrieves projects, newest first
	List(filter ProjectFilter) ([]models.Project, error)

	// Update saves the project row
	Update(project *models.Project) error

	// CreateWithComposition creates a project together with its developer
	// assignments, tasks, task assignments, and group chat in one transaction
	CreateWithComposition(project *models.Project, developerIDs []uint64, tasks []TaskChange, chat *models.Chat, participantIDs []uint64) error

	// ApplyComposition applies a full project edit in one transaction
	ApplyComposition(change ProjectComposition) error

	// Delete removes a project and everything hanging off it
	Delete(id uint64) error

	// SetAccepted marks a developer's assignment as accepted
	SetAccepted(projectID, userID uint64) error

	// StartProject moves the project and all of its tasks to In Progress
	StartProject(projectID uint64) error

	// DetachDeveloper removes a developer from the project, its tasks, and
	// (optionally) its group chat; reverts the project to Pending when no
	// developers remain
	DetachDeveloper(projectID, userID uint64, detachChat bool) error

	// AddComment stores a project comment
	AddComment(comment *models.ProjectComment) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// ListByProject lists a project's tasks, optionally only those assigned
	// to a given user
	ListByProject(projectID uint64, assignedUserID *uint64) ([]models.Task, error)

	// CreateAndRebalance inserts a task and writes the renormalized weights
	// of its peers plus the project's progress in one transaction
	CreateAndRebalance(task *models.Task, developerIDs []uint64, peers []models.Task, project *models.Project) error

	// UpdateAndRebalance saves a task, replaces its developer set, and writes
	// the renormalized peer weights plus the project row in one transaction
	UpdateAndRebalance(task *models.Task, developerIDs []uint64, peers []models.Task, project *models.Project) error

	// DeleteAndRebalance removes a task and writes the renormalized weights
	// of the remaining set plus the project row in one transaction
	DeleteAndRebalance(taskID uint64, remaining []models.Task, project *models.Project) error

	// UpdateStatus saves a task's status together with the project row
	UpdateStatus(task *models.Task, project *models.Project) error

	// AddComment stores a task comment; when the comment reopens a completed
	// task, the task and project rows are written in the same transaction
	AddComment(comment *models.TaskComment, reopened *models.Task, project *models.Project) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// ListByRole lists all users holding a role
	ListByRole(role models.Role) ([]models.User, error)

	// CountByIDsAndRole counts how many of the given user IDs hold the role
	CountByIDsAndRole(userIDs []uint64, role models.Role) (int64, error)

	// ListSuperAdminIDs returns the ids of all super admins
	ListSuperAdminIDs() ([]uint64, error)
}

// ChatRepository defines the interface for chat data access
type ChatRepository interface {
	// FindByID finds a chat by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Chat, error)

	// FindGroupByProject finds a project's group chat
	FindGroupByProject(projectID uint64) (*models.Chat, error)

	// FindPrivateBetween finds the private chat shared by two users
	FindPrivateBetween(userA, userB uint64) (*models.Chat, error)

	// ListForUser lists the chats a user participates in
	ListForUser(userID uint64) ([]models.Chat, error)

	// CreateWithParticipants creates a chat and attaches its participants
	CreateWithParticipants(chat *models.Chat, userIDs []uint64) error

	// AddMessage stores a message
	AddMessage(message *models.Message) error

	// MarkRead marks every message from other users in the chat as read
	MarkRead(chatID, readerID uint64) error

	// UnreadCount counts unread messages from other users in the chat
	UnreadCount(chatID, userID uint64) (int64, error)
}
