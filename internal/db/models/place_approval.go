package models

import "time"

// PlaceApprovalStatus is the state of one per-place approval.
type PlaceApprovalStatus string

const (
	// PlaceApprovalPending means the place still awaits a decision.
	PlaceApprovalPending PlaceApprovalStatus = "pending"
	// PlaceApprovalApproved is the terminal approved state.
	PlaceApprovalApproved PlaceApprovalStatus = "approved"
)

// PlaceApproval is the per-(ban, place) approval sub-record. Its lifecycle is
// bounded by the owning ban. The only stored transition is pending to
// approved; a rejection deletes the row instead of marking it, so the place
// no longer counts toward the ban. The rejection itself survives in the audit
// history.
type PlaceApproval struct {
	// ID is the unique identifier for the approval.
	ID uint64 `gorm:"primaryKey"`
	// BanID references the owning ban record.
	BanID uint64 `gorm:"uniqueIndex:idx_ban_place;not null"`
	// PlaceID references the venue this approval is about.
	PlaceID uint64 `gorm:"uniqueIndex:idx_ban_place;not null"`
	// Place is the associated venue.
	Place Place `gorm:"foreignKey:PlaceID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE"`
	// Status is pending or approved.
	Status PlaceApprovalStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	// DecidedByID references the user who approved the place, nil while pending.
	DecidedByID *uint64
	// DecidedAt is when the approval decision was made, nil while pending.
	DecidedAt *time.Time
	// CreatedAt is the timestamp when the approval was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the PlaceApproval model.
func (PlaceApproval) TableName() string {
	return "place_approvals"
}
