// Package audit provides the append-only history log of ban state changes.
// Entries are written inside the same transaction as the transition they
// document and are never mutated or deleted afterwards.
package audit

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/bandesk/bandesk/internal/db/models"
	"github.com/bandesk/bandesk/internal/roles"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Entry describes one state transition to be appended.
type Entry struct {
	BanID     uint64
	Action    models.AuditAction
	ActorID   uint64
	ActorRole roles.Role
	PlaceID   *uint64
	// Details is marshaled to JSON; use a map or struct specific to Action.
	Details any
}

// Append writes one audit entry. Call it on the transaction handle of the
// state change it documents so the entry commits together with the change.
func Append(db *gorm.DB, e Entry) error {
	if db == nil {
		return ErrDBNil
	}

	var (
		payload []byte
		err     error
	)

	if e.Details != nil {
		if payload, err = json.Marshal(e.Details); err != nil {
			return err
		}
	}

	row := models.AuditEntry{
		BanID:     e.BanID,
		Action:    e.Action,
		ActorID:   e.ActorID,
		ActorRole: e.ActorRole,
		PlaceID:   e.PlaceID,
		Details:   payload,
	}

	return db.Create(&row).Error
}

// ListFor returns the audit entries of one ban in a stable total order.
// Ordering is by timestamp with the autoincrement ID as tie-break, oldest
// first unless newestFirst is set.
func ListFor(db *gorm.DB, banID uint64, newestFirst bool) ([]models.AuditEntry, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	order := "created_at ASC, id ASC"
	if newestFirst {
		order = "created_at DESC, id DESC"
	}

	var entries []models.AuditEntry

	result := db.Where("ban_id = ?", banID).Order(order).Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}
