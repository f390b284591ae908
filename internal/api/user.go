package api

import (
	"net/http"

	"dira-directory/backend/internal/service"
	apperrors "dira-directory/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// UserHandler exposes the profile endpoint
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes wires the user endpoints
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	r.GET("/me", requireAuth, h.Me)
	r.DELETE("/me", requireAuth, h.Delete)
}

// Me returns the caller's local user record, provisioning it on first call
func (h *UserHandler) Me(c *gin.Context) {
	user, appErr := currentUser(c, h.users)
	if appErr != nil {
		c.Error(appErr)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Delete removes the caller's account
func (h *UserHandler) Delete(c *gin.Context) {
	user, appErr := currentUser(c, h.users)
	if appErr != nil {
		c.Error(appErr)
		return
	}

	deleted, err := h.users.DeleteUser(user.ID)
	if err != nil {
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to delete user"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
		"user": gin.H{
			"id":    deleted.ID,
			"name":  deleted.Name,
			"email": deleted.Email,
		},
	})
}
