package ban

import (
	"time"

	"gorm.io/gorm"

	"github.com/bandesk/bandesk/internal/apperr"
	"github.com/bandesk/bandesk/internal/audit"
	"github.com/bandesk/bandesk/internal/auth"
	"github.com/bandesk/bandesk/internal/db/models"
)

// RecordViolation appends a timestamped violation to the ban's log and
// increments the counter in the same transaction; the two can never diverge.
// Returns the recorded timestamp.
func (s *Service) RecordViolation(banID uint64, actor auth.Actor) (occurredAt time.Time, err error) {
	defer func() { observe("record_violation", err) }()

	if s.db == nil {
		return time.Time{}, ErrDBNil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, lockErr := lockBan(tx, banID); lockErr != nil {
			return lockErr
		}

		var placeIDs []uint64

		pluckErr := tx.Model(&models.PlaceApproval{}).
			Where("ban_id = ?", banID).
			Pluck("place_id", &placeIDs).Error
		if pluckErr != nil {
			return apperr.Unavailable(pluckErr)
		}

		if gateErr := auth.CanRecordViolation(actor, placeIDs); gateErr != nil {
			return gateErr
		}

		now := time.Now().UTC()

		row := models.Violation{
			BanID:        banID,
			RecordedByID: actor.UserID,
			OccurredAt:   now,
		}

		if createErr := tx.Create(&row).Error; createErr != nil {
			return apperr.Unavailable(createErr)
		}

		result := tx.Model(&models.Ban{}).
			Where("id = ?", banID).
			UpdateColumn("violations_count", gorm.Expr("violations_count + 1"))
		if result.Error != nil {
			return apperr.Unavailable(result.Error)
		}

		entry := audit.Entry{
			BanID:     banID,
			Action:    models.AuditViolationRecorded,
			ActorID:   actor.UserID,
			ActorRole: actor.Role,
			Details:   map[string]any{"occurredAt": now},
		}

		if auditErr := audit.Append(tx, entry); auditErr != nil {
			return apperr.Unavailable(auditErr)
		}

		occurredAt = now

		return nil
	})

	if err != nil {
		return time.Time{}, wrapTxErr(err)
	}

	return occurredAt, nil
}
