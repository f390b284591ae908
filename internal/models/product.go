package models

import (
	"time"
)

// Product is a catalog entry for a tool or company
type Product struct {
	ID          uint       `json:"id" gorm:"primarykey"`
	Name        string     `json:"name" gorm:"not null"`
	Country     string     `json:"country" gorm:"not null;index"`
	Categories  StringList `json:"categories" gorm:"type:text;not null"`
	Description string     `json:"description" gorm:"not null"`
	Website     string     `json:"website" gorm:"not null"`
	LogoURL     string     `json:"logo_url,omitempty"`
	Active      bool       `json:"active" gorm:"default:false;index"` // Submissions stay inactive until reviewed
	Featured    bool       `json:"featured" gorm:"default:false"`
	SubmittedBy uint       `json:"submitted_by,omitempty" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SubmitProductRequest is the payload for a public product submission
type SubmitProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Country     string   `json:"country" binding:"required"`
	Categories  []string `json:"categories" binding:"required,min=1"`
	Description string   `json:"description" binding:"required"`
	Website     string   `json:"website" binding:"required"`
	LogoURL     string   `json:"logo_url"`
}

// ProductListQuery captures the supported list filters
type ProductListQuery struct {
	Search   string
	Country  string
	Category string
	Page     int
	Limit    int
}
