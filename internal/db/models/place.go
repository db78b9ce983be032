package models

import "time"

// Place represents a venue that individuals can be banned from.
type Place struct {
	// ID is the unique identifier for the place.
	ID uint64 `gorm:"primaryKey"`
	// Name is the unique display name of the venue.
	Name string `gorm:"unique;size:255;not null"`
	// Address is the venue's street address.
	Address string `gorm:"size:255"`
	// Active indicates whether the venue is currently operated.
	Active bool `gorm:"default:true"`
	// CreatedAt is the timestamp when the place was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the place was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Place model.
func (Place) TableName() string {
	return "places"
}
