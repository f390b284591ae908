package service

import (
	"errors"
	"sort"
	"strings"

	"dira-directory/backend/internal/models"
	"dira-directory/backend/pkg/cache"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ProductList is one page of catalog results
type ProductList struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

// ProductService handles the product side of the catalog
type ProductService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewProductService creates a new product service
func NewProductService(db *gorm.DB, c *cache.Cache) *ProductService {
	return &ProductService{db: db, cache: c}
}

// ListProducts returns one page of active products matching the query.
// Search matches name and description case-insensitively; country and
// category filter exactly.
func (s *ProductService) ListProducts(query models.ProductListQuery) (*ProductList, error) {
	page, limit := normalizePage(query.Page, query.Limit)

	db := s.db.Model(&models.Product{}).Where("active = ?", true)

	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if query.Country != "" {
		db = db.Where("country = ?", query.Country)
	}
	if query.Category != "" {
		db = categoryTokenFilter(db, query.Category)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, err
	}

	var products []models.Product
	err := db.Order("featured DESC, created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	return &ProductList{Products: products, Total: total, Page: page, Limit: limit}, nil
}

// GetProduct returns one active product by ID
func (s *ProductService) GetProduct(id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.Where("id = ? AND active = ?", id, true).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// ListActiveProducts returns the whole active catalog, used to build the
// assistant's system prompt.
func (s *ProductService) ListActiveProducts() ([]models.Product, error) {
	var products []models.Product
	err := s.db.Where("active = ?", true).Order("name ASC").Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListFeatured returns the featured subset of the active catalog
func (s *ProductService) ListFeatured() ([]models.Product, error) {
	var products []models.Product
	err := s.db.Where("active = ? AND featured = ?", true, true).Order("name ASC").Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// SubmitProduct stores a public submission. Submissions land inactive and
// only enter the catalog after review.
func (s *ProductService) SubmitProduct(userID uint, req *models.SubmitProductRequest) (*models.Product, error) {
	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Country:     strings.TrimSpace(req.Country),
		Categories:  models.StringList(req.Categories),
		Description: strings.TrimSpace(req.Description),
		Website:     strings.TrimSpace(req.Website),
		LogoURL:     strings.TrimSpace(req.LogoURL),
		Active:      false,
		SubmittedBy: userID,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, err
	}

	s.cache.Delete("products:countries")
	s.cache.Delete("products:categories")

	return product, nil
}

// ListCountries returns the distinct countries across the active catalog,
// cached because the list powers the filter dropdowns on every page view.
func (s *ProductService) ListCountries() ([]string, error) {
	if cached, found := s.cache.Get("products:countries"); found {
		return cached.([]string), nil
	}

	var countries []string
	err := s.db.Model(&models.Product{}).
		Where("active = ?", true).
		Distinct("country").
		Order("country ASC").
		Pluck("country", &countries).Error
	if err != nil {
		return nil, err
	}

	s.cache.Set("products:countries", countries)
	return countries, nil
}

// ListCategories returns the distinct category tokens across the active catalog
func (s *ProductService) ListCategories() ([]string, error) {
	if cached, found := s.cache.Get("products:categories"); found {
		return cached.([]string), nil
	}

	var rows []models.Product
	if err := s.db.Select("categories").Where("active = ?", true).Find(&rows).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var categories []string
	for _, row := range rows {
		for _, c := range row.Categories {
			if !seen[c] {
				seen[c] = true
				categories = append(categories, c)
			}
		}
	}
	sort.Strings(categories)

	s.cache.Set("products:categories", categories)
	return categories, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// categoryTokenFilter matches a whole token inside the comma-joined
// categories column, so "ai" does not match "maintenance". Counts taken
// from the filtered query stay exact.
func categoryTokenFilter(db *gorm.DB, category string) *gorm.DB {
	return db.Where(
		"categories = ? OR categories LIKE ? OR categories LIKE ? OR categories LIKE ?",
		category,
		category+",%",
		"%,"+category,
		"%,"+category+",%",
	)
}
