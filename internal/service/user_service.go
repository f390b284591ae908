package service

import (
	"errors"

	"dira-directory/backend/internal/models"
	"dira-directory/backend/pkg/jwt"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserDisabled = errors.New("user account is disabled")
)

// UserService handles user provisioning and lookup
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ResolveFromClaims returns the local user for a set of verified identity
// claims, creating it on first sight. Profile fields are refreshed from the
// claims on every call so the directory tracks the identity provider.
func (s *UserService) ResolveFromClaims(claims *jwt.Claims) (*models.User, error) {
	var user models.User
	result := s.db.Where("external_id = ?", claims.Subject).First(&user)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, result.Error
		}

		user = models.User{
			ExternalID: claims.Subject,
			Email:      claims.Email,
			Name:       claims.Name,
			AvatarURL:  claims.AvatarURL,
			Status:     models.UserStatusActive,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}

	if user.Status == models.UserStatusDisabled {
		return nil, ErrUserDisabled
	}

	updates := map[string]interface{}{}
	if claims.Email != "" && claims.Email != user.Email {
		updates["email"] = claims.Email
	}
	if claims.Name != "" && claims.Name != user.Name {
		updates["name"] = claims.Name
	}
	if claims.AvatarURL != "" && claims.AvatarURL != user.AvatarURL {
		updates["avatar_url"] = claims.AvatarURL
	}
	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	result := s.db.First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// DeleteUser removes a user record and returns the deleted row. Catalog
// submissions and chat history are kept; they no longer resolve to a user.
func (s *UserService) DeleteUser(id uint) (*models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Delete(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}
