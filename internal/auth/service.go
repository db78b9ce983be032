// Package auth provides caller identity, the role/scope authorization gate
// and local account authentication.
package auth

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bandesk/bandesk/internal/db/models"
	"github.com/bandesk/bandesk/internal/roles"
)

// Service provides authentication against the local user database.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Authenticate authenticates a user against the local database.
func (s *Service) Authenticate(username, password string) (*models.User, error) {
	var user models.User

	err := s.db.Where("username = ?", username).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	user.UpdatedAt = time.Now()
	s.db.Save(&user)

	return &user, nil
}

// CreateUser creates a new local user account.
func (s *Service) CreateUser(
	username, email, password, firstName, lastName string,
	role roles.Role,
	assignedPlaceID *uint64,
) (*models.User, error) {
	var existingUser models.User

	err := s.db.Where("username = ? OR email = ?", username, email).First(&existingUser).Error
	if err == nil {
		return nil, ErrUserNameOrEmailExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := models.User{
		Active:          true,
		Username:        username,
		Email:           email,
		Password:        models.HashPassword(password),
		FirstName:       firstName,
		LastName:        lastName,
		Role:            role,
		AssignedPlaceID: assignedPlaceID,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// ChangePassword changes a user's password after verifying the old one.
func (s *Service) ChangePassword(userID uint64, oldPassword, newPassword string) error {
	var user models.User

	err := s.db.Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}

	if err != nil {
		return fmt.Errorf("failed to query user: %w", err)
	}

	if !user.VerifyPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	user.Password = models.HashPassword(newPassword)

	if err := s.db.Save(&user).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
