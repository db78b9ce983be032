// Package directory resolves person and place identifiers to display names.
// The ban engine only carries identifiers; everything shown to an operator
// goes through these lookups.
package directory

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bandesk/bandesk/internal/db/models"
)

var (
	// ErrPersonNotFound is returned when a person id resolves to nothing.
	ErrPersonNotFound = errors.New("person not found")
	// ErrPlaceNotFound is returned when a place id resolves to nothing.
	ErrPlaceNotFound = errors.New("place not found")
)

// Service provides directory lookups backed by the application database.
type Service struct {
	db *gorm.DB
}

// NewService creates a new directory service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// WithTx returns a service bound to the given transaction handle. Lookups
// made while a transaction is open must go through it, not through the base
// connection pool.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{db: tx}
}

// PersonName resolves a person id to a display name.
func (s *Service) PersonName(id uint64) (string, error) {
	var person models.Person

	err := s.db.First(&person, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrPersonNotFound
	}

	if err != nil {
		return "", err
	}

	return person.DisplayName(), nil
}

// PlaceName resolves a place id to its venue name.
func (s *Service) PlaceName(id uint64) (string, error) {
	var place models.Place

	err := s.db.First(&place, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrPlaceNotFound
	}

	if err != nil {
		return "", err
	}

	return place.Name, nil
}

// PlaceExists reports whether a place id is known.
func (s *Service) PlaceExists(id uint64) (bool, error) {
	var count int64

	err := s.db.Model(&models.Place{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// PersonExists reports whether a person id is known.
func (s *Service) PersonExists(id uint64) (bool, error) {
	var count int64

	err := s.db.Model(&models.Person{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
