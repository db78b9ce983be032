package models

import (
	"time"

	"github.com/bandesk/bandesk/internal/roles"
)

// AuditAction is the kind of state change an audit entry documents.
type AuditAction string

const (
	// AuditCreated documents the creation of a ban record.
	AuditCreated AuditAction = "created"
	// AuditUpdated documents a field change that is not a date change.
	AuditUpdated AuditAction = "updated"
	// AuditApproved documents a place approval.
	AuditApproved AuditAction = "approved"
	// AuditRejected documents a place rejection.
	AuditRejected AuditAction = "rejected"
	// AuditPlaceAdded documents a place added after creation.
	AuditPlaceAdded AuditAction = "place_added"
	// AuditPlaceRemoved documents a place removal.
	AuditPlaceRemoved AuditAction = "place_removed"
	// AuditDatesChanged documents a change of the ban's date range.
	AuditDatesChanged AuditAction = "dates_changed"
	// AuditViolationRecorded documents a recorded violation.
	AuditViolationRecorded AuditAction = "violation_recorded"
)

// AuditEntry is an immutable record of one committed state transition of a
// ban. Entries are only ever appended; the autoincrement ID doubles as the
// monotonic tie-break when wall-clock timestamps collide under concurrent
// writers.
type AuditEntry struct {
	// ID is the monotonically increasing sequence number of the entry.
	ID uint64 `gorm:"primaryKey"`
	// BanID references the ban the entry belongs to.
	BanID uint64 `gorm:"index;not null"`
	// Action is the kind of state change.
	Action AuditAction `gorm:"type:varchar(30);not null"`
	// ActorID references the user who performed the action.
	ActorID uint64 `gorm:"not null"`
	// ActorRole is the actor's role at the time of the action.
	ActorRole roles.Role `gorm:"type:varchar(20);not null"`
	// PlaceID references the venue the action concerned, if any.
	PlaceID *uint64
	// Details is the JSON payload describing what changed, specific to Action.
	Details []byte `gorm:"type:text"`
	// CreatedAt is the timestamp of the action (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the AuditEntry model.
func (AuditEntry) TableName() string {
	return "audit_entries"
}
