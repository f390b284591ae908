package api

import (
	"strconv"

	"dira-directory/backend/internal/models"
	"dira-directory/backend/internal/service"
	apperrors "dira-directory/backend/pkg/errors"
	"dira-directory/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// currentUser resolves the authenticated caller to a local user record,
// provisioning it on first sight. Requires the auth middleware upstream.
func currentUser(c *gin.Context, users *service.UserService) (*models.User, *apperrors.AppError) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil, apperrors.NewUnauthorizedError("AUTH_REQUIRED", "Authentication required")
	}

	user, err := users.ResolveFromClaims(claims)
	if err != nil {
		if err == service.ErrUserDisabled {
			return nil, apperrors.NewForbiddenError("ACCOUNT_DISABLED", "This account has been disabled")
		}
		return nil, apperrors.NewInternalServerError("SERVER_ERROR", "Failed to resolve user")
	}

	return user, nil
}

// pathID parses a numeric path parameter
func pathID(c *gin.Context, name string) (uint, *apperrors.AppError) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.NewBadRequestError("VALIDATION_ERROR", "Invalid "+name+" parameter")
	}
	return uint(id), nil
}

// queryInt parses an optional integer query parameter
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
