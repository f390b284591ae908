package api

import (
	"net/http"

	"dira-directory/backend/internal/models"
	"dira-directory/backend/internal/service"
	apperrors "dira-directory/backend/pkg/errors"
	"dira-directory/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// FeedbackHandler exposes the feedback toggle endpoints
type FeedbackHandler struct {
	feedback *service.FeedbackService
	users    *service.UserService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedback *service.FeedbackService, users *service.UserService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, users: users}
}

// RegisterRoutes wires the feedback endpoints. Reading counts is public
// (with optional auth enriching the response); submitting requires auth.
func (h *FeedbackHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	r.GET("/products/:id/feedback", h.GetFeedback)
	r.POST("/feedback", requireAuth, h.SubmitFeedback)
}

// SubmitFeedback applies one toggle for the authenticated user
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	user, appErr := currentUser(c, h.users)
	if appErr != nil {
		c.Error(appErr)
		return
	}

	var req models.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError("VALIDATION_ERROR", err.Error()))
		return
	}

	response, err := h.feedback.SubmitFeedback(c.Request.Context(), user.ID, &req)
	if err != nil {
		switch err {
		case service.ErrProductNotFound:
			c.Error(apperrors.NewNotFoundError("NOT_FOUND", "Product not found"))
		case service.ErrUnknownFeedbackType:
			c.Error(apperrors.NewBadRequestError("VALIDATION_ERROR", "Unknown feedback type"))
		default:
			c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to submit feedback"))
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetFeedback returns a product's counters, plus the caller's own toggle
// state when a valid token is presented.
func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	productID, appErr := pathID(c, "id")
	if appErr != nil {
		c.Error(appErr)
		return
	}

	var userID uint
	if _, ok := middleware.CurrentClaims(c); ok {
		user, appErr := currentUser(c, h.users)
		if appErr != nil {
			c.Error(appErr)
			return
		}
		userID = user.ID
	}

	response, err := h.feedback.GetFeedback(c.Request.Context(), productID, userID)
	if err != nil {
		if err == service.ErrProductNotFound {
			c.Error(apperrors.NewNotFoundError("NOT_FOUND", "Product not found"))
			return
		}
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to get feedback"))
		return
	}

	c.JSON(http.StatusOK, response)
}
