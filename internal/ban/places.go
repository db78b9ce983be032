package ban

import (
	"time"

	"gorm.io/gorm"

	"github.com/bandesk/bandesk/internal/apperr"
	"github.com/bandesk/bandesk/internal/audit"
	"github.com/bandesk/bandesk/internal/auth"
	"github.com/bandesk/bandesk/internal/db/models"
)

// AddPlace attaches one more place to an existing ban. The approval starts
// pending unless the auto-approval conditions apply, in which case it is
// created approved directly and the audit entry records it as such.
func (s *Service) AddPlace(banID, placeID uint64, actor auth.Actor) (approval *models.PlaceApproval, err error) {
	defer func() { observe("add_place", err) }()

	if s.db == nil {
		return nil, ErrDBNil
	}

	if err = auth.CanAddPlace(actor, placeID); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, lockErr := lockBan(tx, banID); lockErr != nil {
			return lockErr
		}

		var existing int64

		countErr := tx.Model(&models.PlaceApproval{}).
			Where("ban_id = ? AND place_id = ?", banID, placeID).
			Count(&existing).Error
		if countErr != nil {
			return apperr.Unavailable(countErr)
		}

		if existing > 0 {
			return apperr.Conflict("place is already on the ban")
		}

		row := models.PlaceApproval{
			BanID:   banID,
			PlaceID: placeID,
			Status:  models.PlaceApprovalPending,
		}

		autoApproved := auth.AutoApproves(actor, placeID)
		if autoApproved {
			now := time.Now().UTC()
			row.Status = models.PlaceApprovalApproved
			row.DecidedByID = &actor.UserID
			row.DecidedAt = &now
		}

		if createErr := tx.Create(&row).Error; createErr != nil {
			return apperr.Unavailable(createErr)
		}

		entry := audit.Entry{
			BanID:     banID,
			Action:    models.AuditPlaceAdded,
			ActorID:   actor.UserID,
			ActorRole: actor.Role,
			PlaceID:   &placeID,
			Details: map[string]any{
				"placeId":      placeID,
				"autoApproved": autoApproved,
			},
		}

		if auditErr := audit.Append(tx, entry); auditErr != nil {
			return apperr.Unavailable(auditErr)
		}

		approval = &row

		return nil
	})

	if err != nil {
		return nil, wrapTxErr(err)
	}

	return approval, nil
}

// RemovePlace detaches a place from a ban. The ban can never end up
// placeless; removing the last place fails with a conflict and leaves the
// place set unchanged. A scoped actor additionally cannot remove the only
// approved place while other places are still pending, which would silently
// disapprove the whole ban.
func (s *Service) RemovePlace(banID, placeID uint64, actor auth.Actor) (err error) {
	defer func() { observe("remove_place", err) }()

	if s.db == nil {
		return ErrDBNil
	}

	if err = auth.CanRemovePlace(actor, placeID); err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// The FOR UPDATE lock on the ban row closes the check-then-act race
		// between the place-count check and the delete.
		if _, lockErr := lockBan(tx, banID); lockErr != nil {
			return lockErr
		}

		var approvals []models.PlaceApproval

		if findErr := tx.Where("ban_id = ?", banID).Find(&approvals).Error; findErr != nil {
			return apperr.Unavailable(findErr)
		}

		var (
			target        *models.PlaceApproval
			approvedCount int
			pendingCount  int
		)

		for i := range approvals {
			switch approvals[i].Status {
			case models.PlaceApprovalApproved:
				approvedCount++
			case models.PlaceApprovalPending:
				pendingCount++
			}

			if approvals[i].PlaceID == placeID {
				target = &approvals[i]
			}
		}

		if target == nil {
			return apperr.Conflict("place is not on the ban")
		}

		if len(approvals) <= 1 {
			return apperr.Conflict("cannot remove the last place of a ban")
		}

		scopedActor := !actor.HasGlobalScope()
		lastApproved := target.Status == models.PlaceApprovalApproved && approvedCount == 1

		if scopedActor && lastApproved && pendingCount > 0 {
			return apperr.Conflict("cannot remove the only approved place while others are pending")
		}

		if delErr := tx.Delete(&models.PlaceApproval{}, target.ID).Error; delErr != nil {
			return apperr.Unavailable(delErr)
		}

		// The lookup stays on the transaction handle; on the base connection
		// it could land on another pool connection and miss the place row.
		placeName, nameErr := s.dir.WithTx(tx).PlaceName(placeID)
		if nameErr != nil {
			return apperr.Unavailable(nameErr)
		}

		entry := audit.Entry{
			BanID:     banID,
			Action:    models.AuditPlaceRemoved,
			ActorID:   actor.UserID,
			ActorRole: actor.Role,
			PlaceID:   &placeID,
			Details: map[string]any{
				"placeId":   placeID,
				"placeName": placeName,
				"status":    target.Status,
			},
		}

		if auditErr := audit.Append(tx, entry); auditErr != nil {
			return apperr.Unavailable(auditErr)
		}

		return nil
	})

	return wrapTxErr(err)
}
