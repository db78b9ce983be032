package models

import "time"

// Person represents an individual a ban record can be issued against.
type Person struct {
	// ID is the unique identifier for the person.
	ID uint64 `gorm:"primaryKey"`
	// FirstName is the person's first or given name.
	FirstName string `gorm:"size:100;not null"`
	// LastName is the person's last or family name.
	LastName string `gorm:"size:100;not null"`
	// DateOfBirth is optional and used to disambiguate namesakes.
	DateOfBirth *time.Time
	// Notes holds free-form remarks about the person.
	Notes string `gorm:"type:text"`
	// CreatedAt is the timestamp when the person was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the person was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Person model.
func (Person) TableName() string {
	return "persons"
}

// DisplayName returns the person's full name for dashboard rendering.
func (p *Person) DisplayName() string {
	return p.FirstName + " " + p.LastName
}
