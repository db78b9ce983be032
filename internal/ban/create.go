package ban

import (
	"time"

	"gorm.io/gorm"

	"github.com/bandesk/bandesk/internal/apperr"
	"github.com/bandesk/bandesk/internal/audit"
	"github.com/bandesk/bandesk/internal/auth"
	"github.com/bandesk/bandesk/internal/db/models"
	"github.com/bandesk/bandesk/internal/duration"
)

// CreateInput carries the fields of a new ban record.
type CreateInput struct {
	PersonID           uint64
	IncidentNumber     string
	StartingDate       time.Time
	EndingDate         *time.Time
	Motives            string
	IncidentReport     string
	ActionTaken        string
	PeopleInvolved     string
	PoliceNotified     bool
	PoliceReportNumber string
	PoliceNotifiedAt   *time.Time
	PlaceIDs           []uint64
}

// Create files a new ban record with one place approval per place id. Places
// within the creating actor's own management scope start approved, everything
// else starts pending. One created audit entry captures the initial place set.
func (s *Service) Create(in CreateInput, actor auth.Actor) (ban *models.Ban, err error) {
	defer func() { observe("create", err) }()

	if s.db == nil {
		return nil, ErrDBNil
	}

	if err = auth.CanCreateBan(actor); err != nil {
		return nil, err
	}

	if err = validateCreate(in); err != nil {
		return nil, err
	}

	placeIDs := dedup(in.PlaceIDs)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Concurrent creates for the same person serialize on the person row;
		// there is no ban row to lock yet.
		if lockErr := lockPerson(tx, in.PersonID); lockErr != nil {
			return lockErr
		}

		// Duplicate incident numbers against the person's active bans are a
		// business conflict, not a field error.
		var collisions int64

		countErr := tx.Model(&models.Ban{}).
			Where("person_id = ? AND incident_number = ? AND is_active = ?",
				in.PersonID, in.IncidentNumber, true).
			Count(&collisions).Error
		if countErr != nil {
			return apperr.Unavailable(countErr)
		}

		if collisions > 0 {
			return apperr.Conflict("an active ban with this incident number already exists for this person")
		}

		record := models.Ban{
			PersonID:           in.PersonID,
			IncidentNumber:     in.IncidentNumber,
			StartingDate:       in.StartingDate,
			EndingDate:         in.EndingDate,
			Motives:            in.Motives,
			IncidentReport:     in.IncidentReport,
			ActionTaken:        in.ActionTaken,
			PeopleInvolved:     in.PeopleInvolved,
			PoliceNotified:     in.PoliceNotified,
			PoliceReportNumber: in.PoliceReportNumber,
			PoliceNotifiedAt:   in.PoliceNotifiedAt,
			IsActive:           true,
			CreatedByID:        actor.UserID,
			UpdatedByID:        actor.UserID,
		}

		if createErr := tx.Create(&record).Error; createErr != nil {
			return apperr.Unavailable(createErr)
		}

		now := time.Now().UTC()
		autoApproved := make([]uint64, 0, len(placeIDs))

		for _, placeID := range placeIDs {
			approval := models.PlaceApproval{
				BanID:   record.ID,
				PlaceID: placeID,
				Status:  models.PlaceApprovalPending,
			}

			if auth.AutoApproves(actor, placeID) {
				approval.Status = models.PlaceApprovalApproved
				approval.DecidedByID = &actor.UserID
				approval.DecidedAt = &now
				autoApproved = append(autoApproved, placeID)
			}

			if createErr := tx.Create(&approval).Error; createErr != nil {
				return apperr.Unavailable(createErr)
			}
		}

		entry := audit.Entry{
			BanID:     record.ID,
			Action:    models.AuditCreated,
			ActorID:   actor.UserID,
			ActorRole: actor.Role,
			Details: map[string]any{
				"incidentNumber":       in.IncidentNumber,
				"placeIds":             placeIDs,
				"autoApprovedPlaceIds": autoApproved,
			},
		}

		if auditErr := audit.Append(tx, entry); auditErr != nil {
			return apperr.Unavailable(auditErr)
		}

		ban = &record

		return nil
	})

	if err != nil {
		return nil, wrapTxErr(err)
	}

	return s.Get(ban.ID)
}

func validateCreate(in CreateInput) error {
	if in.PersonID == 0 {
		return apperr.Validation("personId", "person is required")
	}

	if in.IncidentNumber == "" {
		return apperr.Validation("incidentNumber", "incident number is required")
	}

	if in.StartingDate.IsZero() {
		return apperr.Validation("startingDate", "starting date is required")
	}

	if len(in.PlaceIDs) == 0 {
		return apperr.Validation("placeIds", "at least one place is required")
	}

	if in.EndingDate != nil {
		if err := duration.Validate(in.StartingDate, *in.EndingDate); err != nil {
			return err
		}
	}

	return nil
}

func dedup(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
