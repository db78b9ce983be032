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

// UpdateInput carries a partial ban edit; nil pointers leave the field
// untouched. ClearEndingDate turns the ban indefinite.
type UpdateInput struct {
	StartingDate       *time.Time
	EndingDate         *time.Time
	ClearEndingDate    bool
	Motives            *string
	IncidentReport     *string
	ActionTaken        *string
	PeopleInvolved     *string
	PoliceNotified     *bool
	PoliceReportNumber *string
	PoliceNotifiedAt   *time.Time
	IsActive           *bool
}

// Update edits a ban's fields. Date edits are re-validated against the
// minimum-span invariant; a violating edit is rejected whole and the prior
// range stays in place. Date changes and other field changes are documented
// by separate audit entries.
func (s *Service) Update(id uint64, in UpdateInput, actor auth.Actor) (ban *models.Ban, err error) {
	defer func() { observe("update", err) }()

	if s.db == nil {
		return nil, ErrDBNil
	}

	if err = auth.CanUpdateBan(actor); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		record, lockErr := lockBan(tx, id)
		if lockErr != nil {
			return lockErr
		}

		oldStart, oldEnd := record.StartingDate, record.EndingDate

		newStart := record.StartingDate
		if in.StartingDate != nil {
			newStart = *in.StartingDate
		}

		newEnd := record.EndingDate
		switch {
		case in.ClearEndingDate:
			newEnd = nil
		case in.EndingDate != nil:
			newEnd = in.EndingDate
		}

		if newEnd != nil {
			if validErr := duration.Validate(newStart, *newEnd); validErr != nil {
				return validErr
			}
		}

		datesChanged := !newStart.Equal(oldStart) || !equalDatePtr(newEnd, oldEnd)
		record.StartingDate = newStart
		record.EndingDate = newEnd

		otherChanged := applyFields(record, in)

		if !datesChanged && !otherChanged {
			ban = record
			return nil
		}

		record.UpdatedByID = actor.UserID

		if saveErr := tx.Save(record).Error; saveErr != nil {
			return apperr.Unavailable(saveErr)
		}

		if datesChanged {
			entry := audit.Entry{
				BanID:     record.ID,
				Action:    models.AuditDatesChanged,
				ActorID:   actor.UserID,
				ActorRole: actor.Role,
				Details: map[string]any{
					"oldStartingDate": oldStart,
					"oldEndingDate":   oldEnd,
					"newStartingDate": newStart,
					"newEndingDate":   newEnd,
				},
			}

			if auditErr := audit.Append(tx, entry); auditErr != nil {
				return apperr.Unavailable(auditErr)
			}
		}

		if otherChanged {
			entry := audit.Entry{
				BanID:     record.ID,
				Action:    models.AuditUpdated,
				ActorID:   actor.UserID,
				ActorRole: actor.Role,
				Details:   map[string]any{"fields": changedFields(in)},
			}

			if auditErr := audit.Append(tx, entry); auditErr != nil {
				return apperr.Unavailable(auditErr)
			}
		}

		ban = record

		return nil
	})

	if err != nil {
		return nil, wrapTxErr(err)
	}

	return s.Get(ban.ID)
}

// Delete removes a ban record with its approvals, violations and audit
// history. Irreversible.
func (s *Service) Delete(id uint64, actor auth.Actor) (err error) {
	defer func() { observe("delete", err) }()

	if s.db == nil {
		return ErrDBNil
	}

	if err = auth.CanDeleteBan(actor); err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, lockErr := lockBan(tx, id); lockErr != nil {
			return lockErr
		}

		for _, owned := range []any{
			&models.PlaceApproval{},
			&models.Violation{},
			&models.AuditEntry{},
		} {
			if delErr := tx.Where("ban_id = ?", id).Delete(owned).Error; delErr != nil {
				return apperr.Unavailable(delErr)
			}
		}

		if delErr := tx.Delete(&models.Ban{}, id).Error; delErr != nil {
			return apperr.Unavailable(delErr)
		}

		return nil
	})

	return wrapTxErr(err)
}

// applyFields copies the non-date field edits onto the record and reports
// whether anything changed.
func applyFields(record *models.Ban, in UpdateInput) bool {
	changed := false

	if in.Motives != nil && *in.Motives != record.Motives {
		record.Motives = *in.Motives
		changed = true
	}

	if in.IncidentReport != nil && *in.IncidentReport != record.IncidentReport {
		record.IncidentReport = *in.IncidentReport
		changed = true
	}

	if in.ActionTaken != nil && *in.ActionTaken != record.ActionTaken {
		record.ActionTaken = *in.ActionTaken
		changed = true
	}

	if in.PeopleInvolved != nil && *in.PeopleInvolved != record.PeopleInvolved {
		record.PeopleInvolved = *in.PeopleInvolved
		changed = true
	}

	if in.PoliceNotified != nil && *in.PoliceNotified != record.PoliceNotified {
		record.PoliceNotified = *in.PoliceNotified
		changed = true
	}

	if in.PoliceReportNumber != nil && *in.PoliceReportNumber != record.PoliceReportNumber {
		record.PoliceReportNumber = *in.PoliceReportNumber
		changed = true
	}

	if in.PoliceNotifiedAt != nil && !equalDatePtr(in.PoliceNotifiedAt, record.PoliceNotifiedAt) {
		record.PoliceNotifiedAt = in.PoliceNotifiedAt
		changed = true
	}

	if in.IsActive != nil && *in.IsActive != record.IsActive {
		record.IsActive = *in.IsActive
		changed = true
	}

	return changed
}

func changedFields(in UpdateInput) []string {
	var fields []string

	if in.Motives != nil {
		fields = append(fields, "motives")
	}

	if in.IncidentReport != nil {
		fields = append(fields, "incidentReport")
	}

	if in.ActionTaken != nil {
		fields = append(fields, "actionTaken")
	}

	if in.PeopleInvolved != nil {
		fields = append(fields, "peopleInvolved")
	}

	if in.PoliceNotified != nil {
		fields = append(fields, "policeNotified")
	}

	if in.PoliceReportNumber != nil {
		fields = append(fields, "policeReportNumber")
	}

	if in.PoliceNotifiedAt != nil {
		fields = append(fields, "policeNotifiedAt")
	}

	if in.IsActive != nil {
		fields = append(fields, "isActive")
	}

	return fields
}

func equalDatePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Equal(*b)
}
