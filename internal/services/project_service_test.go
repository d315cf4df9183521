package services

import (
	"testing"

	"github.com/projectflow/projectflow-api/internal/authz"
	"github.com/projectflow/projectflow-api/internal/models"
	"github.com/projectflow/projectflow-api/internal/repository"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ProjectServiceTestSuite defines the test suite for ProjectService
type ProjectServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ProjectService

	admin  *models.User
	client *models.User
	dev1   *models.User
	dev2   *models.User
}

// SetupTest runs before each test
func (suite *ProjectServiceTestSuite) SetupTest() {
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

	projectRepo := repository.NewProjectRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	suite.service = NewProjectService(projectRepo, userRepo, authz.NewRoleAuthorizer())

	suite.admin = suite.createUser("admin@example.com", models.RoleSuperAdmin)
	suite.client = suite.createUser("client@example.com", models.RoleClient)
	suite.dev1 = suite.createUser("dev1@example.com", models.RoleDeveloper)
	suite.dev2 = suite.createUser("dev2@example.com", models.RoleDeveloper)
}

// TearDownTest runs after each test
func (suite *ProjectServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ProjectServiceTestSuite) createUser(email string, role models.Role) *models.User {
	user := &models.User{
		Name:         email,
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *ProjectServiceTestSuite) createProject() *models.Project {
	project, err := suite.service.CreateProject(suite.admin, CreateProjectInput{
		Title:        "Website Redesign",
		Description:  "Full redesign",
		ClientID:     suite.client.ID,
		DeveloperIDs: []uint64{suite.dev1.ID, suite.dev2.ID},
		Tasks: []TaskInput{
			{Title: "Design", RawWeight: 1, DeveloperIDs: []uint64{suite.dev1.ID}},
			{Title: "Backend", RawWeight: 1, DeveloperIDs: []uint64{suite.dev2.ID}},
			{Title: "Frontend", RawWeight: 2, DeveloperIDs: []uint64{suite.dev1.ID, suite.dev2.ID}},
		},
	})
	suite.Require().NoError(err)
	return project
}

func (suite *ProjectServiceTestSuite) TestCreateProjectBuildsFullComposition() {
	project := suite.createProject()

	suite.Equal(models.ProjectStatusPending, project.Status)
	suite.Equal(0, project.Progress)
	suite.Len(project.Tasks, 3)
	suite.Len(project.Assignments, 2)

	// Raw weights 1,1,2 normalize to 25/25/50.
	weights := map[string]float64{}
	for _, task := range project.Tasks {
		weights[task.Title] = task.Weight
	}
	suite.Equal(25.0, weights["Design"])
	suite.Equal(25.0, weights["Backend"])
	suite.Equal(50.0, weights["Frontend"])

	suite.Require().NotNil(project.Chat)
	suite.Equal(models.ChatTypeGroup, project.Chat.Type)
	suite.Equal("Website Redesign Group Chat", project.Chat.Name)

	// Client, creator, and both developers sit in the group chat. The
	// creator is the only super admin here.
	suite.Len(project.Chat.Participants, 4)
	suite.True(project.Chat.HasParticipant(suite.client.ID))
	suite.True(project.Chat.HasParticipant(suite.admin.ID))
	suite.True(project.Chat.HasParticipant(suite.dev1.ID))
	suite.True(project.Chat.HasParticipant(suite.dev2.ID))
}

func (suite *ProjectServiceTestSuite) TestCreateProjectAddsAllSuperAdminsToChat() {
	other := suite.createUser("admin2@example.com", models.RoleSuperAdmin)

	project := suite.createProject()

	suite.Require().NotNil(project.Chat)
	suite.Len(project.Chat.Participants, 5)
	suite.True(project.Chat.HasParticipant(other.ID))
}

func (suite *ProjectServiceTestSuite) TestCreateProjectDropsTaskDevelopersOutsideProject() {
	outsider := suite.createUser("dev3@example.com", models.RoleDeveloper)

	project, err := suite.service.CreateProject(suite.admin, CreateProjectInput{
		Title:        "Small Job",
		ClientID:     suite.client.ID,
		DeveloperIDs: []uint64{suite.dev1.ID},
		Tasks: []TaskInput{
			{Title: "Only Task", RawWeight: 3, DeveloperIDs: []uint64{suite.dev1.ID, outsider.ID}},
		},
	})
	suite.Require().NoError(err)

	suite.Require().Len(project.Tasks, 1)
	suite.Equal([]uint64{suite.dev1.ID}, project.Tasks[0].DeveloperIDs())
	suite.Equal(100.0, project.Tasks[0].Weight)
}

func (suite *ProjectServiceTestSuite) TestCreateProjectRequiresPermission() {
	_, err := suite.service.CreateProject(suite.client, CreateProjectInput{
		Title:    "Nope",
		ClientID: suite.client.ID,
	})
	suite.ErrorIs(err, ErrForbidden)
}

func (suite *ProjectServiceTestSuite) TestCreateProjectRejectsNonDeveloper() {
	_, err := suite.service.CreateProject(suite.admin, CreateProjectInput{
		Title:        "Bad Devs",
		ClientID:     suite.client.ID,
		DeveloperIDs: []uint64{suite.client.ID},
	})
	suite.ErrorIs(err, ErrInvalidDeveloper)
}

func (suite *ProjectServiceTestSuite) TestCreateProjectRejectsOutOfRangeRawWeight() {
	_, err := suite.service.CreateProject(suite.admin, CreateProjectInput{
		Title:    "Bad Weight",
		ClientID: suite.client.ID,
		Tasks: []TaskInput{
			{Title: "Too Heavy", RawWeight: 6},
		},
	})
	suite.ErrorIs(err, ErrInvalidRawWeight)
}

func (suite *ProjectServiceTestSuite) TestUpdateProjectReplacesTaskSet() {
	project := suite.createProject()

	var design models.Task
	suite.Require().NoError(suite.db.Where("title = ?", "Design").First(&design).Error)

	// Keep Design (bumped to raw 3), drop the other two, add one new task.
	updated, err := suite.service.UpdateProject(suite.admin, project.ID, UpdateProjectInput{
		Title:        "Website Redesign",
		ClientID:     suite.client.ID,
		DeveloperIDs: []uint64{suite.dev1.ID, suite.dev2.ID},
		Tasks: []TaskInput{
			{ID: design.ID, Title: "Design", RawWeight: 3},
			{Title: "QA", RawWeight: 1},
		},
	})
	suite.Require().NoError(err)

	suite.Require().Len(updated.Tasks, 2)
	weights := map[string]float64{}
	for _, task := range updated.Tasks {
		weights[task.Title] = task.Weight
	}
	suite.Equal(75.0, weights["Design"])
	suite.Equal(25.0, weights["QA"])

	var count int64
	suite.db.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&count)
	suite.Equal(int64(2), count)
}

func (suite *ProjectServiceTestSuite) TestUpdateProjectRejectsUnknownTaskStatus() {
	project := suite.createProject()

	var design models.Task
	suite.Require().NoError(suite.db.Where("title = ?", "Design").First(&design).Error)

	bogus := models.TaskStatus("Bogus")
	_, err := suite.service.UpdateProject(suite.admin, project.ID, UpdateProjectInput{
		Title:        "Website Redesign",
		ClientID:     suite.client.ID,
		DeveloperIDs: []uint64{suite.dev1.ID, suite.dev2.ID},
		Tasks: []TaskInput{
			{ID: design.ID, Title: "Design", RawWeight: 1, Status: &bogus},
		},
	})
	suite.ErrorIs(err, ErrInvalidTaskStatus)

	// Nothing may be written: the task keeps its previous status and the
	// rest of the submission is not applied either.
	var current models.Task
	suite.Require().NoError(suite.db.First(&current, design.ID).Error)
	suite.Equal(models.TaskStatusPending, current.Status)

	var count int64
	suite.db.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&count)
	suite.Equal(int64(3), count)
}

func (suite *ProjectServiceTestSuite) TestUpdateProjectRejectsForeignTask() {
	project := suite.createProject()

	other, err := suite.service.CreateProject(suite.admin, CreateProjectInput{
		Title:    "Other Project",
		ClientID: suite.client.ID,
		Tasks:    []TaskInput{{Title: "Foreign", RawWeight: 1}},
	})
	suite.Require().NoError(err)
	suite.Require().Len(other.Tasks, 1)

	_, err = suite.service.UpdateProject(suite.admin, project.ID, UpdateProjectInput{
		Title:    "Website Redesign",
		ClientID: suite.client.ID,
		Tasks: []TaskInput{
			{ID: other.Tasks[0].ID, Title: "Stolen", RawWeight: 1},
		},
	})
	suite.ErrorIs(err, ErrTaskProjectMismatch)
}

func (suite *ProjectServiceTestSuite) TestUpdateProjectRemovesDeveloperEverywhere() {
	project := suite.createProject()

	// Drop dev2 from the project entirely.
	_, err := suite.service.UpdateProject(suite.admin, project.ID, UpdateProjectInput{
		Title:        "Website Redesign",
		ClientID:     suite.client.ID,
		DeveloperIDs: []uint64{suite.dev1.ID},
		Tasks:        taskInputsFrom(project),
	})
	suite.Require().NoError(err)

	var pivots int64
	suite.db.Model(&models.ProjectAssignment{}).
		Where("project_id = ? AND user_id = ?", project.ID, suite.dev2.ID).Count(&pivots)
	suite.Equal(int64(0), pivots)

	var taskAssignments int64
	suite.db.Model(&models.TaskAssignment{}).
		Where("user_id = ?", suite.dev2.ID).Count(&taskAssignments)
	suite.Equal(int64(0), taskAssignments)

	var chat models.Chat
	suite.Require().NoError(suite.db.Preload("Participants").
		Where("project_id = ?", project.ID).First(&chat).Error)
	suite.False(chat.HasParticipant(suite.dev2.ID))
	suite.True(chat.HasParticipant(suite.dev1.ID))
}

func (suite *ProjectServiceTestSuite) TestAcceptProjectStartsWhenAllAccept() {
	project := suite.createProject()

	suite.Require().NoError(suite.service.AcceptProject(suite.dev1, project.ID))

	var current models.Project
	suite.Require().NoError(suite.db.First(&current, project.ID).Error)
	suite.Equal(models.ProjectStatusPending, current.Status)

	suite.Require().NoError(suite.service.AcceptProject(suite.dev2, project.ID))

	suite.Require().NoError(suite.db.First(&current, project.ID).Error)
	suite.Equal(models.ProjectStatusInProgress, current.Status)

	var tasks []models.Task
	suite.Require().NoError(suite.db.Where("project_id = ?", project.ID).Find(&tasks).Error)
	for _, task := range tasks {
		suite.Equal(models.TaskStatusInProgress, task.Status)
	}
}

func (suite *ProjectServiceTestSuite) TestAcceptProjectRequiresAssignment() {
	project := suite.createProject()

	outsider := suite.createUser("dev3@example.com", models.RoleDeveloper)
	err := suite.service.AcceptProject(outsider, project.ID)
	suite.ErrorIs(err, ErrNotAssignedDeveloper)
}

func (suite *ProjectServiceTestSuite) TestDeclineProjectDetachesDeveloper() {
	project := suite.createProject()

	suite.Require().NoError(suite.service.DeclineProject(suite.dev1, project.ID))

	var pivots int64
	suite.db.Model(&models.ProjectAssignment{}).
		Where("project_id = ? AND user_id = ?", project.ID, suite.dev1.ID).Count(&pivots)
	suite.Equal(int64(0), pivots)

	var taskAssignments int64
	suite.db.Model(&models.TaskAssignment{}).
		Where("user_id = ?", suite.dev1.ID).Count(&taskAssignments)
	suite.Equal(int64(0), taskAssignments)

	var chat models.Chat
	suite.Require().NoError(suite.db.Preload("Participants").
		Where("project_id = ?", project.ID).First(&chat).Error)
	suite.False(chat.HasParticipant(suite.dev1.ID))
}

func (suite *ProjectServiceTestSuite) TestDeclineByLastDeveloperRevertsToPending() {
	project := suite.createProject()

	suite.Require().NoError(suite.service.AcceptProject(suite.dev1, project.ID))
	suite.Require().NoError(suite.service.AcceptProject(suite.dev2, project.ID))

	suite.Require().NoError(suite.service.DeclineProject(suite.dev1, project.ID))
	suite.Require().NoError(suite.service.DeclineProject(suite.dev2, project.ID))

	var current models.Project
	suite.Require().NoError(suite.db.First(&current, project.ID).Error)
	suite.Equal(models.ProjectStatusPending, current.Status)
}

func (suite *ProjectServiceTestSuite) TestDeclineByUnassignedDeveloperChangesNothing() {
	project := suite.createProject()

	outsider := suite.createUser("dev3@example.com", models.RoleDeveloper)
	err := suite.service.DeclineProject(outsider, project.ID)
	suite.ErrorIs(err, ErrNotAssignedDeveloper)

	var pivots int64
	suite.db.Model(&models.ProjectAssignment{}).
		Where("project_id = ?", project.ID).Count(&pivots)
	suite.Equal(int64(2), pivots)
}

func (suite *ProjectServiceTestSuite) TestGetProjectHidesExistenceFromOutsiders() {
	project := suite.createProject()

	outsider := suite.createUser("dev3@example.com", models.RoleDeveloper)
	_, err := suite.service.GetProject(outsider, project.ID)
	suite.ErrorIs(err, ErrProjectNotFound)
}

func (suite *ProjectServiceTestSuite) TestGetProjectRequiresAcceptanceFromDevelopers() {
	project := suite.createProject()

	_, err := suite.service.GetProject(suite.dev1, project.ID)
	suite.ErrorIs(err, ErrProjectNotAccepted)

	suite.Require().NoError(suite.service.AcceptProject(suite.dev1, project.ID))

	loaded, err := suite.service.GetProject(suite.dev1, project.ID)
	suite.Require().NoError(err)
	suite.Equal(project.ID, loaded.ID)
}

func (suite *ProjectServiceTestSuite) TestAddCommentClassifiesUrgency() {
	project := suite.createProject()

	cases := []struct {
		message string
		urgency models.CommentUrgency
	}{
		{"this is urgent, the demo is tomorrow", models.UrgencyCritical},
		{"please handle this asap", models.UrgencyCritical},
		{"we need this soon", models.UrgencyHigh},
		{"high priority item for the next sprint", models.UrgencyHigh},
		{"looks good overall", models.UrgencyNormal},
	}

	for _, tc := range cases {
		comment, err := suite.service.AddComment(suite.client, project.ID, "Feedback", tc.message)
		suite.Require().NoError(err)
		suite.Equal(tc.urgency, comment.Urgency, "message: %s", tc.message)
	}
}

func (suite *ProjectServiceTestSuite) TestAddCommentRejectsOutsiders() {
	project := suite.createProject()

	outsider := suite.createUser("stranger@example.com", models.RoleClient)
	_, err := suite.service.AddComment(outsider, project.ID, "Hi", "hello")
	suite.Error(err)
}

func (suite *ProjectServiceTestSuite) TestListProjectsScopedToParticipants() {
	suite.createProject()

	_, err := suite.service.CreateProject(suite.admin, CreateProjectInput{
		Title:        "Solo Project",
		ClientID:     suite.client.ID,
		DeveloperIDs: []uint64{suite.dev1.ID},
	})
	suite.Require().NoError(err)

	all, err := suite.service.ListProjects(suite.admin)
	suite.Require().NoError(err)
	suite.Len(all, 2)

	dev2Projects, err := suite.service.ListProjects(suite.dev2)
	suite.Require().NoError(err)
	suite.Len(dev2Projects, 1)

	clientProjects, err := suite.service.ListProjects(suite.client)
	suite.Require().NoError(err)
	suite.Len(clientProjects, 2)
}

func (suite *ProjectServiceTestSuite) TestDeleteProjectRemovesEverything() {
	project := suite.createProject()

	suite.Require().NoError(suite.service.DeleteProject(suite.admin, project.ID))

	var projects int64
	suite.db.Model(&models.Project{}).Where("id = ?", project.ID).Count(&projects)
	suite.Equal(int64(0), projects)

	var tasks int64
	suite.db.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&tasks)
	suite.Equal(int64(0), tasks)

	var chats int64
	suite.db.Model(&models.Chat{}).Where("project_id = ?", project.ID).Count(&chats)
	suite.Equal(int64(0), chats)
}

// taskInputsFrom rebuilds the submission for a project's current tasks, as a
// client editing the project would resend them.
func taskInputsFrom(project *models.Project) []TaskInput {
	inputs := make([]TaskInput, len(project.Tasks))
	for i, task := range project.Tasks {
		inputs[i] = TaskInput{
			ID:           task.ID,
			Title:        task.Title,
			Description:  task.Description,
			TaskType:     task.TaskType,
			RawWeight:    task.RawWeight,
			DeveloperIDs: task.DeveloperIDs(),
		}
	}
	return inputs
}

func TestProjectServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceTestSuite))
}
