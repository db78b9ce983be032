package models

import "time"

// Violation is one timestamped entry of a ban's violation log. Rows are only
// ever appended; the owning ban's ViolationsCount is incremented in the same
// transaction that inserts the row.
type Violation struct {
	// ID is the unique identifier for the violation.
	ID uint64 `gorm:"primaryKey"`
	// BanID references the violated ban.
	BanID uint64 `gorm:"index;not null"`
	// RecordedByID references the user who recorded the violation.
	RecordedByID uint64 `gorm:"not null"`
	// OccurredAt is when the violation was recorded.
	OccurredAt time.Time `gorm:"not null"`
	// CreatedAt is the timestamp when the row was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the Violation model.
func (Violation) TableName() string {
	return "violations"
}
