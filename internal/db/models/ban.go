package models

import "time"

// Ban represents one banning decision against one person. The approval state
// of the ban is never stored on the record itself; it is derived from the
// attached place approvals.
type Ban struct {
	// ID is the unique identifier for the ban record.
	ID uint64 `gorm:"primaryKey"`
	// PersonID references the banned individual.
	PersonID uint64 `gorm:"index;not null"`
	// Person is the associated individual.
	Person Person `gorm:"foreignKey:PersonID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE"`
	// IncidentNumber is the caller-supplied report number; unique among the
	// person's active bans.
	IncidentNumber string `gorm:"size:100;not null;index"`
	// StartingDate is the first day the ban is in effect.
	StartingDate time.Time `gorm:"not null"`
	// EndingDate is the last day of the ban; nil means indefinite.
	EndingDate *time.Time
	// Motives is the free-text list of motives, one per line.
	Motives string `gorm:"type:text"`
	// IncidentReport is the narrative description of the incident.
	IncidentReport string `gorm:"type:text"`
	// ActionTaken describes what was done at the venue when the incident happened.
	ActionTaken string `gorm:"type:text"`
	// PeopleInvolved names further individuals involved in the incident.
	PeopleInvolved string `gorm:"type:text"`
	// PoliceNotified indicates whether the police were informed.
	PoliceNotified bool
	// PoliceReportNumber is the case number the police assigned, if any.
	PoliceReportNumber string `gorm:"size:100"`
	// PoliceNotifiedAt is when the police were informed.
	PoliceNotifiedAt *time.Time
	// IsActive indicates whether the ban is currently enforced.
	IsActive bool `gorm:"default:true;index"`
	// ViolationsCount equals the number of Violation rows at all times.
	ViolationsCount int `gorm:"not null;default:0"`
	// CreatedByID references the user who created the record.
	CreatedByID uint64 `gorm:"not null"`
	// UpdatedByID references the user who last modified the record.
	UpdatedByID uint64
	// Approvals are the per-place approval sub-records owned by this ban.
	Approvals []PlaceApproval `gorm:"foreignKey:BanID"`
	// Violations is the timestamped violation log of this ban.
	Violations []Violation `gorm:"foreignKey:BanID"`
	// CreatedAt is the timestamp when the ban was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the ban was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Ban model.
func (Ban) TableName() string {
	return "bans"
}

// ApprovalStatus is the derived overall approval state of a ban.
type ApprovalStatus string

const (
	// ApprovalStatusPending means no place has been approved yet.
	ApprovalStatusPending ApprovalStatus = "pending"
	// ApprovalStatusPartial means at least one place is approved while others are pending.
	ApprovalStatusPartial ApprovalStatus = "partial"
	// ApprovalStatusApproved means every remaining place is approved.
	ApprovalStatusApproved ApprovalStatus = "approved"
)

// OverallStatus derives the ban's approval state from its place approvals.
// Rejected approvals never appear here: rejection removes the row.
func (b *Ban) OverallStatus() ApprovalStatus {
	var approved, pending int

	for _, approval := range b.Approvals {
		switch approval.Status {
		case PlaceApprovalApproved:
			approved++
		case PlaceApprovalPending:
			pending++
		}
	}

	switch {
	case pending == 0 && approved > 0:
		return ApprovalStatusApproved
	case approved > 0:
		return ApprovalStatusPartial
	default:
		return ApprovalStatusPending
	}
}
