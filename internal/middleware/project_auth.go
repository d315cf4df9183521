package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/projectflow/projectflow-api/internal/database"
	apierrors "github.com/projectflow/projectflow-api/internal/errors"
	"github.com/projectflow/projectflow-api/internal/models"
)

// RequireProjectAccess checks that the project exists and that the current
// user participates in it (client, creator, assigned developer) or is a
// super admin. Outsiders get a 404 so project existence never leaks.
func RequireProjectAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectIDStr := c.Param("id")
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project ID")
			c.Abort()
			return
		}

		user, exists := GetCurrentUser(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var project models.Project
		if err := database.GetDB().
			Preload("Assignments").
			First(&project, projectID).Error; err != nil {
			apierrors.NotFound(c, "Project not found")
			c.Abort()
			return
		}

		if !user.IsSuperAdmin() &&
			project.ClientID != user.ID && project.CreatedBy != user.ID {
			assigned := false
			for _, a := range project.Assignments {
				if a.UserID == user.ID {
					assigned = true
					break
				}
			}
			if !assigned {
				apierrors.NotFound(c, "Project not found")
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
