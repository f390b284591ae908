package api

import (
	"net/http"

	"dira-directory/backend/internal/models"
	"dira-directory/backend/internal/service"
	apperrors "dira-directory/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// OpportunityHandler exposes the opportunity side of the catalog
type OpportunityHandler struct {
	opportunities *service.OpportunityService
	users         *service.UserService
}

// NewOpportunityHandler creates a new opportunity handler
func NewOpportunityHandler(opportunities *service.OpportunityService, users *service.UserService) *OpportunityHandler {
	return &OpportunityHandler{opportunities: opportunities, users: users}
}

// RegisterRoutes wires the opportunity endpoints
func (h *OpportunityHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	r.GET("/opportunities", h.ListOpportunities)
	r.GET("/opportunities/countries", h.ListCountries)
	r.GET("/opportunities/:id", h.GetOpportunity)
	r.POST("/opportunities", requireAuth, h.SubmitOpportunity)
}

// ListOpportunities returns one page of the active catalog
func (h *OpportunityHandler) ListOpportunities(c *gin.Context) {
	query := models.OpportunityListQuery{
		Search:   c.Query("search"),
		Type:     c.Query("type"),
		Country:  c.Query("country"),
		Category: c.Query("category"),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 0),
	}

	if query.Type != "" && query.Type != models.OpportunityTypeProblem && query.Type != models.OpportunityTypeJob {
		c.Error(apperrors.NewBadRequestError("VALIDATION_ERROR", "Invalid type filter"))
		return
	}

	list, err := h.opportunities.ListOpportunities(query)
	if err != nil {
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to list opportunities"))
		return
	}

	c.JSON(http.StatusOK, list)
}

// ListCountries returns the filter options for the country dropdown
func (h *OpportunityHandler) ListCountries(c *gin.Context) {
	countries, err := h.opportunities.ListCountries()
	if err != nil {
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to list countries"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"countries": countries})
}

// GetOpportunity returns one active opportunity
func (h *OpportunityHandler) GetOpportunity(c *gin.Context) {
	id, appErr := pathID(c, "id")
	if appErr != nil {
		c.Error(appErr)
		return
	}

	opportunity, err := h.opportunities.GetOpportunity(id)
	if err != nil {
		if err == service.ErrOpportunityNotFound {
			c.Error(apperrors.NewNotFoundError("NOT_FOUND", "Opportunity not found"))
			return
		}
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to get opportunity"))
		return
	}

	c.JSON(http.StatusOK, opportunity)
}

// SubmitOpportunity accepts a public submission for review
func (h *OpportunityHandler) SubmitOpportunity(c *gin.Context) {
	user, appErr := currentUser(c, h.users)
	if appErr != nil {
		c.Error(appErr)
		return
	}

	var req models.SubmitOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError("VALIDATION_ERROR", err.Error()))
		return
	}

	opportunity, err := h.opportunities.SubmitOpportunity(user.ID, &req)
	if err != nil {
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to submit opportunity"))
		return
	}

	c.JSON(http.StatusCreated, opportunity)
}
