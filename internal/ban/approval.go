package ban

import (
	"time"

	"gorm.io/gorm"

	"github.com/bandesk/bandesk/internal/apperr"
	"github.com/bandesk/bandesk/internal/audit"
	"github.com/bandesk/bandesk/internal/auth"
	"github.com/bandesk/bandesk/internal/db/models"
)

// DecideApproval applies a one-shot approve or reject decision to a pending
// place approval. The transition is a compare-and-swap on the pending status:
// of two concurrent decisions exactly one wins, the loser observes "already
// decided". An approval is recorded with the decider and timestamp; a
// rejection removes the place from the ban entirely and survives only in the
// audit history.
func (s *Service) DecideApproval(banID, placeID uint64, approve bool, actor auth.Actor) (ban *models.Ban, err error) {
	defer func() { observe("decide_approval", err) }()

	if s.db == nil {
		return nil, ErrDBNil
	}

	if err = auth.CanDecideApproval(actor, placeID); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, lockErr := lockBan(tx, banID); lockErr != nil {
			return lockErr
		}

		if approve {
			return s.approvePlace(tx, banID, placeID, actor)
		}

		return s.rejectPlace(tx, banID, placeID, actor)
	})

	if err != nil {
		return nil, wrapTxErr(err)
	}

	return s.Get(banID)
}

// approvePlace flips the approval from pending to approved via a conditional
// update keyed on (ban, place, pending).
func (s *Service) approvePlace(tx *gorm.DB, banID, placeID uint64, actor auth.Actor) error {
	now := time.Now().UTC()

	result := tx.Model(&models.PlaceApproval{}).
		Where("ban_id = ? AND place_id = ? AND status = ?", banID, placeID, models.PlaceApprovalPending).
		Updates(map[string]any{
			"status":        models.PlaceApprovalApproved,
			"decided_by_id": actor.UserID,
			"decided_at":    now,
		})
	if result.Error != nil {
		return apperr.Unavailable(result.Error)
	}

	if result.RowsAffected == 0 {
		return decisionConflict(tx, banID, placeID)
	}

	entry := audit.Entry{
		BanID:     banID,
		Action:    models.AuditApproved,
		ActorID:   actor.UserID,
		ActorRole: actor.Role,
		PlaceID:   &placeID,
		Details:   map[string]any{"placeId": placeID},
	}

	if auditErr := audit.Append(tx, entry); auditErr != nil {
		return apperr.Unavailable(auditErr)
	}

	return nil
}

// rejectPlace removes the pending approval. The removal honors the last-place
// invariant: a rejection that would leave the ban placeless fails instead.
func (s *Service) rejectPlace(tx *gorm.DB, banID, placeID uint64, actor auth.Actor) error {
	var total int64

	if countErr := tx.Model(&models.PlaceApproval{}).
		Where("ban_id = ?", banID).
		Count(&total).Error; countErr != nil {
		return apperr.Unavailable(countErr)
	}

	if total <= 1 {
		return apperr.Conflict("cannot reject the last place of a ban")
	}

	result := tx.
		Where("ban_id = ? AND place_id = ? AND status = ?", banID, placeID, models.PlaceApprovalPending).
		Delete(&models.PlaceApproval{})
	if result.Error != nil {
		return apperr.Unavailable(result.Error)
	}

	if result.RowsAffected == 0 {
		return decisionConflict(tx, banID, placeID)
	}

	// The live record loses the place on rejection; the audit details keep
	// the id and name so history stays reconstructable. The name is resolved
	// through the transaction handle, a lookup on the base connection could
	// land on another pool connection, and a failed lookup fails the whole
	// rejection rather than committing a nameless audit entry.
	placeName, nameErr := s.dir.WithTx(tx).PlaceName(placeID)
	if nameErr != nil {
		return apperr.Unavailable(nameErr)
	}

	entry := audit.Entry{
		BanID:     banID,
		Action:    models.AuditRejected,
		ActorID:   actor.UserID,
		ActorRole: actor.Role,
		PlaceID:   &placeID,
		Details: map[string]any{
			"placeId":   placeID,
			"placeName": placeName,
		},
	}

	if auditErr := audit.Append(tx, entry); auditErr != nil {
		return apperr.Unavailable(auditErr)
	}

	return nil
}

// decisionConflict distinguishes a decision on a missing place from one on an
// already-terminal approval; both are conflicts, not validation errors.
func decisionConflict(tx *gorm.DB, banID, placeID uint64) error {
	var count int64

	if err := tx.Model(&models.PlaceApproval{}).
		Where("ban_id = ? AND place_id = ?", banID, placeID).
		Count(&count).Error; err != nil {
		return apperr.Unavailable(err)
	}

	if count == 0 {
		return apperr.Conflict("place is not on the ban")
	}

	return apperr.Conflict("approval already decided")
}
