package models

import (
	"time"
)

// User statuses
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// User is a directory member, provisioned lazily from identity-provider
// claims on first authenticated request.
type User struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	ExternalID string    `json:"external_id" gorm:"uniqueIndex;not null"` // Subject claim from the identity provider
	Email      string    `json:"email" gorm:"uniqueIndex;not null"`
	Name       string    `json:"name"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	Status     string    `json:"status" gorm:"default:active"`
	Unlimited  bool      `json:"unlimited" gorm:"default:false"` // Exempt from the monthly chat quota
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
