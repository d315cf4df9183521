package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/projectflow/projectflow-api/internal/authz"
	"github.com/projectflow/projectflow-api/internal/constants"
	"github.com/projectflow/projectflow-api/internal/database"
	"github.com/projectflow/projectflow-api/internal/dto"
	"github.com/projectflow/projectflow-api/internal/middleware"
	"github.com/projectflow/projectflow-api/internal/models"
	"github.com/projectflow/projectflow-api/internal/repository"
	"github.com/projectflow/projectflow-api/internal/services"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ProjectHandlerTestSuite defines the test suite for ProjectHandler
type ProjectHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine

	admin  *models.User
	client *models.User
	dev    *models.User
}

// SetupTest runs before each test
func (suite *ProjectHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectAssignment{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.Chat{},
		&models.ChatParticipant{},
		&models.Message{},
		&models.ProjectComment{},
		&models.TaskComment{},
		&models.ProjectGithubLink{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	projectRepo := repository.NewProjectRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	handler := NewProjectHandler(services.NewProjectService(projectRepo, userRepo, authz.NewRoleAuthorizer()))

	suite.admin = suite.createUser("admin@example.com", models.RoleSuperAdmin)
	suite.client = suite.createUser("client@example.com", models.RoleClient)
	suite.dev = suite.createUser("dev@example.com", models.RoleDeveloper)

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	// The session layer is replaced by a header the tests control.
	suite.router.Use(func(c *gin.Context) {
		email := c.GetHeader("X-Test-User")
		if email == "" {
			c.Next()
			return
		}
		var user models.User
		if err := suite.db.Where("email = ?", email).First(&user).Error; err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, &user)
		c.Next()
	})

	suite.router.GET("/api/projects", handler.ListProjects)
	suite.router.POST("/api/projects", handler.CreateProject)
	suite.router.GET("/api/projects/:id", middleware.RequireProjectAccess(), handler.GetProject)
	suite.router.DELETE("/api/projects/:id", middleware.RequireProjectAccess(), handler.DeleteProject)
	suite.router.POST("/api/projects/:id/accept", middleware.RequireProjectAccess(), handler.AcceptProject)
	suite.router.POST("/api/projects/:id/comments", middleware.RequireProjectAccess(), handler.AddComment)
}

// TearDownTest runs after each test
func (suite *ProjectHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ProjectHandlerTestSuite) createUser(email string, role models.Role) *models.User {
	user := &models.User{
		Name:         email,
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *ProjectHandlerTestSuite) request(method, url string, payload any, asUser *models.User) *httptest.ResponseRecorder {
	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	if asUser != nil {
		req.Header.Set("X-Test-User", asUser.Email)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *ProjectHandlerTestSuite) createProjectViaAPI() dto.ProjectDTO {
	w := suite.request(http.MethodPost, "/api/projects", gin.H{
		"title":         "Website Redesign",
		"client_id":     suite.client.ID,
		"developer_ids": []uint64{suite.dev.ID},
		"tasks": []gin.H{
			{"title": "Design", "raw_weight": 1},
			{"title": "Build", "raw_weight": 3},
		},
	}, suite.admin)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var resp dto.ProjectDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (suite *ProjectHandlerTestSuite) TestCreateProject() {
	resp := suite.createProjectViaAPI()

	suite.Equal("Website Redesign", resp.Title)
	suite.Equal(models.ProjectStatusPending, resp.Status)
	suite.Require().Len(resp.Tasks, 2)

	weights := map[string]float64{}
	for _, task := range resp.Tasks {
		weights[task.Title] = task.Weight
	}
	suite.Equal(25.0, weights["Design"])
	suite.Equal(75.0, weights["Build"])

	suite.Require().Len(resp.Developers, 1)
	suite.False(resp.Developers[0].Accepted)
}

func (suite *ProjectHandlerTestSuite) TestCreateProjectForbiddenForClients() {
	w := suite.request(http.MethodPost, "/api/projects", gin.H{
		"title":     "Nope",
		"client_id": suite.client.ID,
	}, suite.client)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *ProjectHandlerTestSuite) TestCreateProjectRejectsBadWeight() {
	w := suite.request(http.MethodPost, "/api/projects", gin.H{
		"title":     "Bad",
		"client_id": suite.client.ID,
		"tasks": []gin.H{
			{"title": "Too Heavy", "raw_weight": 9},
		},
	}, suite.admin)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ProjectHandlerTestSuite) TestGetProjectHiddenFromOutsiders() {
	resp := suite.createProjectViaAPI()

	outsider := suite.createUser("stranger@example.com", models.RoleClient)
	w := suite.request(http.MethodGet, fmt.Sprintf("/api/projects/%d", resp.ID), nil, outsider)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, fmt.Sprintf("/api/projects/%d", resp.ID), nil, suite.client)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *ProjectHandlerTestSuite) TestAcceptProjectFlow() {
	resp := suite.createProjectViaAPI()

	w := suite.request(http.MethodPost, fmt.Sprintf("/api/projects/%d/accept", resp.ID), nil, suite.dev)
	suite.Equal(http.StatusOK, w.Code)

	var project models.Project
	suite.Require().NoError(suite.db.First(&project, resp.ID).Error)
	suite.Equal(models.ProjectStatusInProgress, project.Status)
}

func (suite *ProjectHandlerTestSuite) TestAddCommentClassifiesUrgency() {
	resp := suite.createProjectViaAPI()

	w := suite.request(http.MethodPost, fmt.Sprintf("/api/projects/%d/comments", resp.ID), gin.H{
		"title":   "Deadline",
		"message": "this is urgent, ship it",
	}, suite.client)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var comment dto.ProjectCommentDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &comment))
	suite.Equal(models.UrgencyCritical, comment.Urgency)
}

func (suite *ProjectHandlerTestSuite) TestDeleteProject() {
	resp := suite.createProjectViaAPI()

	w := suite.request(http.MethodDelete, fmt.Sprintf("/api/projects/%d", resp.ID), nil, suite.admin)
	suite.Equal(http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.Project{}).Where("id = ?", resp.ID).Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *ProjectHandlerTestSuite) TestListProjectsPagination() {
	for i := 0; i < 3; i++ {
		suite.request(http.MethodPost, "/api/projects", gin.H{
			"title":     fmt.Sprintf("Project %d", i),
			"client_id": suite.client.ID,
		}, suite.admin)
	}

	w := suite.request(http.MethodGet, "/api/projects?page=1&limit=2", nil, suite.admin)
	suite.Require().Equal(http.StatusOK, w.Code)

	var resp struct {
		Projects   []dto.ProjectListItemDTO `json:"projects"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Projects, 2)
	suite.Equal(int64(3), resp.Pagination.Total)
}

func TestProjectHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectHandlerTestSuite))
}
