// Package authz answers "may this user perform this action". Handlers and
// services ask before mutating; nothing below the service layer re-checks.
package authz

import "github.com/projectflow/projectflow-api/internal/models"

// Actions mirror the permission names used across the application.
const (
	ActionViewProjects    = "view projects"
	ActionViewAllProjects = "view all projects"
	ActionCreateProjects  = "create projects"
	ActionEditProjects    = "edit projects"
	ActionDeleteProjects  = "delete projects"

	ActionViewTasks   = "view tasks"
	ActionCreateTasks = "create tasks"
	ActionEditTasks   = "edit tasks"
	ActionDeleteTasks = "delete tasks"

	ActionViewUsers   = "view users"
	ActionCreateUsers = "create users"
	ActionEditUsers   = "edit users"
	ActionDeleteUsers = "delete users"

	ActionViewChats   = "view chats"
	ActionCreateChats = "create chats"

	ActionViewComments   = "view comments"
	ActionCreateComments = "create comments"
)

// Authorizer decides whether a user may perform an action.
type Authorizer interface {
	Can(user *models.User, action string) bool
}

// RoleAuthorizer grants permissions from a static role table. Super Admins
// hold every permission.
type RoleAuthorizer struct {
	grants map[models.Role]map[string]struct{}
}

func NewRoleAuthorizer() *RoleAuthorizer {
	grants := map[models.Role][]string{
		models.RoleDeveloper: {
			ActionViewProjects,
			ActionViewTasks,
			ActionViewChats,
			ActionViewComments,
			ActionCreateComments,
		},
		models.RoleClient: {
			ActionViewProjects,
			ActionViewChats,
			ActionViewComments,
			ActionCreateComments,
		},
	}

	byRole := make(map[models.Role]map[string]struct{}, len(grants))
	for role, actions := range grants {
		set := make(map[string]struct{}, len(actions))
		for _, action := range actions {
			set[action] = struct{}{}
		}
		byRole[role] = set
	}

	return &RoleAuthorizer{grants: byRole}
}

func (a *RoleAuthorizer) Can(user *models.User, action string) bool {
	if user == nil {
		return false
	}
	if user.Role == models.RoleSuperAdmin {
		return true
	}
	_, ok := a.grants[user.Role][action]
	return ok
}
