package models

import (
	"time"
)

// Opportunity types
const (
	OpportunityTypeProblem = "problem"
	OpportunityTypeJob     = "job"
)

// Opportunity is a catalog entry for an open problem statement or a role
type Opportunity struct {
	ID          uint       `json:"id" gorm:"primarykey"`
	Title       string     `json:"title" gorm:"not null"`
	Type        string     `json:"type" gorm:"not null;index"` // problem | job
	Country     string     `json:"country" gorm:"not null;index"`
	Categories  StringList `json:"categories" gorm:"type:text;not null"`
	Description string     `json:"description" gorm:"not null"`
	Ministry    string     `json:"ministry,omitempty"`
	Email       string     `json:"email,omitempty"`
	Website     string     `json:"website,omitempty"`
	Active      bool       `json:"active" gorm:"default:false;index"`
	Sponsored   bool       `json:"sponsored" gorm:"default:false"`
	SubmittedBy uint       `json:"submitted_by,omitempty" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SubmitOpportunityRequest is the payload for a public opportunity submission
type SubmitOpportunityRequest struct {
	Title       string   `json:"title" binding:"required"`
	Type        string   `json:"type" binding:"required,oneof=problem job"`
	Country     string   `json:"country" binding:"required"`
	Categories  []string `json:"categories" binding:"required,min=1"`
	Description string   `json:"description" binding:"required"`
	Ministry    string   `json:"ministry"`
	Email       string   `json:"email"`
	Website     string   `json:"website"`
}

// OpportunityListQuery captures the supported list filters
type OpportunityListQuery struct {
	Search   string
	Type     string
	Country  string
	Category string
	Page     int
	Limit    int
}
