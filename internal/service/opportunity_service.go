package service

import (
	"errors"
	"strings"

	"dira-directory/backend/internal/models"
	"dira-directory/backend/pkg/cache"

	"gorm.io/gorm"
)

// ErrOpportunityNotFound is returned when the target opportunity does not exist or is inactive
var ErrOpportunityNotFound = errors.New("opportunity not found")

// OpportunityList is one page of catalog results
type OpportunityList struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	Total         int64                `json:"total"`
	Page          int                  `json:"page"`
	Limit         int                  `json:"limit"`
}

// OpportunityService handles the opportunity side of the catalog
type OpportunityService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewOpportunityService creates a new opportunity service
func NewOpportunityService(db *gorm.DB, c *cache.Cache) *OpportunityService {
	return &OpportunityService{db: db, cache: c}
}

// ListOpportunities returns one page of active opportunities matching the query
func (s *OpportunityService) ListOpportunities(query models.OpportunityListQuery) (*OpportunityList, error) {
	page, limit := normalizePage(query.Page, query.Limit)

	db := s.db.Model(&models.Opportunity{}).Where("active = ?", true)

	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if query.Type != "" {
		db = db.Where("type = ?", query.Type)
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

	var opportunities []models.Opportunity
	err := db.Order("sponsored DESC, created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&opportunities).Error
	if err != nil {
		return nil, err
	}

	return &OpportunityList{Opportunities: opportunities, Total: total, Page: page, Limit: limit}, nil
}

// GetOpportunity returns one active opportunity by ID
func (s *OpportunityService) GetOpportunity(id uint) (*models.Opportunity, error) {
	var opportunity models.Opportunity
	err := s.db.Where("id = ? AND active = ?", id, true).First(&opportunity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOpportunityNotFound
		}
		return nil, err
	}
	return &opportunity, nil
}

// ListActiveOpportunities returns the whole active catalog, used to build
// the assistant's system prompt.
func (s *OpportunityService) ListActiveOpportunities() ([]models.Opportunity, error) {
	var opportunities []models.Opportunity
	err := s.db.Where("active = ?", true).Order("title ASC").Find(&opportunities).Error
	if err != nil {
		return nil, err
	}
	return opportunities, nil
}

// SubmitOpportunity stores a public submission, inactive until reviewed
func (s *OpportunityService) SubmitOpportunity(userID uint, req *models.SubmitOpportunityRequest) (*models.Opportunity, error) {
	opportunity := &models.Opportunity{
		Title:       strings.TrimSpace(req.Title),
		Type:        req.Type,
		Country:     strings.TrimSpace(req.Country),
		Categories:  models.StringList(req.Categories),
		Description: strings.TrimSpace(req.Description),
		Ministry:    strings.TrimSpace(req.Ministry),
		Email:       strings.TrimSpace(req.Email),
		Website:     strings.TrimSpace(req.Website),
		Active:      false,
		SubmittedBy: userID,
	}

	if err := s.db.Create(opportunity).Error; err != nil {
		return nil, err
	}

	s.cache.Delete("opportunities:countries")

	return opportunity, nil
}

// ListCountries returns the distinct countries across the active opportunities
func (s *OpportunityService) ListCountries() ([]string, error) {
	if cached, found := s.cache.Get("opportunities:countries"); found {
		return cached.([]string), nil
	}

	var countries []string
	err := s.db.Model(&models.Opportunity{}).
		Where("active = ?", true).
		Distinct("country").
		Order("country ASC").
		Pluck("country", &countries).Error
	if err != nil {
		return nil, err
	}

	s.cache.Set("opportunities:countries", countries)
	return countries, nil
}
