package api

import (
	"net/http"

	"dira-directory/backend/internal/models"
	"dira-directory/backend/internal/service"
	apperrors "dira-directory/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ProductHandler exposes the product side of the catalog
type ProductHandler struct {
	products *service.ProductService
	users    *service.UserService
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *service.ProductService, users *service.UserService) *ProductHandler {
	return &ProductHandler{products: products, users: users}
}

// RegisterRoutes wires the product endpoints. Listing and reading are
// public; submitting requires auth.
func (h *ProductHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	r.GET("/products", h.ListProducts)
	r.GET("/products/featured", h.ListFeatured)
	r.GET("/products/countries", h.ListCountries)
	r.GET("/products/categories", h.ListCategories)
	r.GET("/products/:id", h.GetProduct)
	r.POST("/products", requireAuth, h.SubmitProduct)
}

// ListProducts returns one page of the active catalog
func (h *ProductHandler) ListProducts(c *gin.Context) {
	query := models.ProductListQuery{
		Search:   c.Query("search"),
		Country:  c.Query("country"),
		Category: c.Query("category"),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 0),
	}

	list, err := h.products.ListProducts(query)
	if err != nil {
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to list products"))
		return
	}

	c.JSON(http.StatusOK, list)
}

// ListFeatured returns the featured subset of the catalog
func (h *ProductHandler) ListFeatured(c *gin.Context) {
	products, err := h.products.ListFeatured()
	if err != nil {
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to list featured products"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// ListCountries returns the filter options for the country dropdown
func (h *ProductHandler) ListCountries(c *gin.Context) {
	countries, err := h.products.ListCountries()
	if err != nil {
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to list countries"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"countries": countries})
}

// ListCategories returns the filter options for the category dropdown
func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.products.ListCategories()
	if err != nil {
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to list categories"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetProduct returns one active product
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, appErr := pathID(c, "id")
	if appErr != nil {
		c.Error(appErr)
		return
	}

	product, err := h.products.GetProduct(id)
	if err != nil {
		if err == service.ErrProductNotFound {
			c.Error(apperrors.NewNotFoundError("NOT_FOUND", "Product not found"))
			return
		}
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to get product"))
		return
	}

	c.JSON(http.StatusOK, product)
}

// SubmitProduct accepts a public submission for review
func (h *ProductHandler) SubmitProduct(c *gin.Context) {
	user, appErr := currentUser(c, h.users)
	if appErr != nil {
		c.Error(appErr)
		return
	}

	var req models.SubmitProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewBadRequestError("VALIDATION_ERROR", err.Error()))
		return
	}

	product, err := h.products.SubmitProduct(user.ID, &req)
	if err != nil {
		c.Error(apperrors.NewInternalServerError("SERVER_ERROR", "Failed to submit product"))
		return
	}

	c.JSON(http.StatusCreated, product)
}
