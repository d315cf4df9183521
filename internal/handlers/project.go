package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectflow/projectflow-api/internal/dto"
	apierrors "github.com/projectflow/projectflow-api/internal/errors"
	"github.com/projectflow/projectflow-api/internal/logging"
	"github.com/projectflow/projectflow-api/internal/middleware"
	"github.com/projectflow/projectflow-api/internal/models"
	"github.com/projectflow/projectflow-api/internal/services"
	"github.com/projectflow/projectflow-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// ProjectHandler coordinates project-related HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// TaskRequest is one task row of a project create/update submission. A zero
// ID means the task is new; an existing ID updates that task in place.
type TaskRequest struct {
	ID           uint64   `json:"id"`
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	TaskType     string   `json:"task_type"`
	RawWeight    int      `json:"raw_weight" binding:"required,min=1,max=5"`
	Status       string   `json:"status"`
	DeveloperIDs []uint64 `json:"developer_ids"`
}

func (r TaskRequest) toInput() services.TaskInput {
	input := services.TaskInput{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		TaskType:     r.TaskType,
		RawWeight:    r.RawWeight,
		DeveloperIDs: r.DeveloperIDs,
	}
	if r.Status != "" {
		status := models.TaskStatus(r.Status)
		input.Status = &status
	}
	return input
}

// ListProjects returns the projects visible to the current user.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projects, err := h.projectService.ListProjects(actor)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	params := utils.GetPaginationParams(c)
	total := int64(len(projects))

	start := params.Offset
	if start > len(projects) {
		start = len(projects)
	}
	end := start + params.Limit
	if end > len(projects) {
		end = len(projects)
	}

	items := make([]dto.ProjectListItemDTO, 0, end-start)
	for _, project := range projects[start:end] {
		items = append(items, dto.ToProjectListItemDTO(project))
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": items,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetProject returns a single project with its tasks, developers, and comments.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(actor, projectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// CreateProject creates a project with its tasks, developers, and group chat.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateProjectRequest struct {
		Title        string        `json:"title" binding:"required"`
		Description  string        `json:"description"`
		ClientID     uint64        `json:"client_id" binding:"required"`
		DueDate      *time.Time    `json:"due_date"`
		DeveloperIDs []uint64      `json:"developer_ids"`
		Tasks        []TaskRequest `json:"tasks"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(actor, services.CreateProjectInput{
		Title:        req.Title,
		Description:  req.Description,
		ClientID:     req.ClientID,
		DueDate:      req.DueDate,
		DeveloperIDs: req.DeveloperIDs,
		Tasks:        toTaskInputs(req.Tasks),
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	logging.Logger.WithFields(logrus.Fields{
		"project_id": project.ID,
		"user_id":    actor.ID,
	}).Info("project created")

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// UpdateProject replaces the project's composition: fields, developer set,
// and the full task list in one submission.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		Title        string        `json:"title" binding:"required"`
		Description  string        `json:"description"`
		ClientID     uint64        `json:"client_id" binding:"required"`
		DueDate      *time.Time    `json:"due_date"`
		DeveloperIDs []uint64      `json:"developer_ids"`
		Tasks        []TaskRequest `json:"tasks"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProject(actor, projectID, services.UpdateProjectInput{
		Title:        req.Title,
		Description:  req.Description,
		ClientID:     req.ClientID,
		DueDate:      req.DueDate,
		DeveloperIDs: req.DeveloperIDs,
		Tasks:        toTaskInputs(req.Tasks),
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject removes a project and everything hanging off it.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(actor, projectID); err != nil {
		respondProjectError(c, err)
		return
	}

	logging.Logger.WithFields(logrus.Fields{
		"project_id": projectID,
		"user_id":    actor.ID,
	}).Info("project deleted")

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// AcceptProject marks the current developer's assignment as accepted. When
// every assigned developer has accepted, the project moves to In Progress.
func (h *ProjectHandler) AcceptProject(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.AcceptProject(actor, projectID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project accepted",
	})
}

// DeclineProject removes the current developer from the project, its tasks,
// and its group chat.
func (h *ProjectHandler) DeclineProject(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.DeclineProject(actor, projectID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project declined",
	})
}

// AddComment posts a comment on a project. Urgency is classified from the
// message text.
func (h *ProjectHandler) AddComment(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type CommentRequest struct {
		Title   string `json:"title" binding:"required"`
		Message string `json:"message" binding:"required"`
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	comment, err := h.projectService.AddComment(actor, projectID, req.Title, req.Message)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectCommentDTO(*comment))
}

func toTaskInputs(requests []TaskRequest) []services.TaskInput {
	inputs := make([]services.TaskInput, len(requests))
	for i, r := range requests {
		inputs[i] = r.toInput()
	}
	return inputs
}

func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrClientNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrProjectNotAccepted),
		errors.Is(err, services.ErrNotAssignedDeveloper):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTaskProjectMismatch):
		apierrors.ForeignKeyMismatch(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrMessageRequired),
		errors.Is(err, services.ErrInvalidDeveloper),
		errors.Is(err, services.ErrInvalidRawWeight),
		errors.Is(err, services.ErrInvalidTaskStatus):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
