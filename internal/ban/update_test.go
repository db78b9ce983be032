package ban

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandesk/bandesk/internal/apperr"
	"github.com/bandesk/bandesk/internal/db/models"
	"github.com/bandesk/bandesk/internal/duration"
)

func TestUpdateFields(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	head := headManagerActor()
	record := createBan(t, s, person.ID, []uint64{places[0].ID}, head)

	motives := "repeated trespassing"
	notified := true

	record, err := s.Update(record.ID, UpdateInput{
		Motives:        &motives,
		PoliceNotified: &notified,
	}, head)
	require.NoError(t, err)

	assert.Equal(t, motives, record.Motives)
	assert.True(t, record.PoliceNotified)
	assert.Equal(t, head.UserID, record.UpdatedByID)

	entries, err := s.History(record.ID, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.AuditUpdated, entries[1].Action)
	assert.Contains(t, string(entries[1].Details), "motives")
	assert.Contains(t, string(entries[1].Details), "policeNotified")
}

func TestUpdateDates(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	head := headManagerActor()
	record := createBan(t, s, person.ID, []uint64{places[0].ID}, head)

	end := day(2025, 3, 10)

	record, err := s.Update(record.ID, UpdateInput{EndingDate: &end}, head)
	require.NoError(t, err)
	require.NotNil(t, record.EndingDate)
	assert.True(t, end.Equal(*record.EndingDate))

	// the stored range now derives to one year
	derived, err := duration.Derive(record.StartingDate, *record.EndingDate)
	require.NoError(t, err)
	assert.Equal(t, duration.Duration{Years: 1}, derived)

	entries, err := s.History(record.ID, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.AuditDatesChanged, entries[1].Action)
	assert.Contains(t, string(entries[1].Details), "newEndingDate")
}

func TestUpdateRejectsInvalidRange(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	head := headManagerActor()
	record := createBan(t, s, person.ID, []uint64{places[0].ID}, head)

	end := day(2025, 3, 10)
	record, err := s.Update(record.ID, UpdateInput{EndingDate: &end}, head)
	require.NoError(t, err)

	// moving the start past the end violates the minimum-span invariant
	badStart := day(2025, 3, 10)

	_, err = s.Update(record.ID, UpdateInput{StartingDate: &badStart}, head)
	require.Error(t, err)

	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, duration.FieldEndingDate, ve.Field)

	// the previously valid range is untouched
	loaded, err := s.Get(record.ID)
	require.NoError(t, err)
	assert.True(t, day(2024, 3, 10).Equal(loaded.StartingDate))
	require.NotNil(t, loaded.EndingDate)
	assert.True(t, end.Equal(*loaded.EndingDate))
}

func TestUpdateClearEndingDate(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	head := headManagerActor()
	record := createBan(t, s, person.ID, []uint64{places[0].ID}, head)

	end := day(2025, 3, 10)
	record, err := s.Update(record.ID, UpdateInput{EndingDate: &end}, head)
	require.NoError(t, err)

	record, err = s.Update(record.ID, UpdateInput{ClearEndingDate: true}, head)
	require.NoError(t, err)
	assert.Nil(t, record.EndingDate, "the ban is indefinite again")
}

func TestUpdateNoopWritesNoAudit(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	head := headManagerActor()
	record := createBan(t, s, person.ID, []uint64{places[0].ID}, head)

	sameMotives := ""

	_, err := s.Update(record.ID, UpdateInput{Motives: &sameMotives}, head)
	require.NoError(t, err)

	entries, err := s.History(record.ID, false)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the creation entry exists")
}

func TestUpdateStaffDenied(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	record := createBan(t, s, person.ID, []uint64{places[0].ID}, headManagerActor())

	motives := "changed"

	_, err := s.Update(record.ID, UpdateInput{Motives: &motives}, staffActor())
	require.Error(t, err)
	assert.True(t, apperr.IsAuthorization(err))
}

func TestUpdateUnknownBan(t *testing.T) {
	s, _ := newTestService(t)

	motives := "changed"

	_, err := s.Update(999, UpdateInput{Motives: &motives}, headManagerActor())
	require.ErrorIs(t, err, ErrBanNotFound)
}

func TestDelete(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	head := headManagerActor()
	record := createBan(t, s, person.ID, []uint64{places[0].ID, places[1].ID}, head)

	_, err := s.RecordViolation(record.ID, head)
	require.NoError(t, err)

	require.NoError(t, s.Delete(record.ID, head))

	_, err = s.Get(record.ID)
	require.ErrorIs(t, err, ErrBanNotFound)

	// owned rows are gone with the record
	for _, owned := range []any{&models.PlaceApproval{}, &models.Violation{}, &models.AuditEntry{}} {
		var count int64
		require.NoError(t, db.Model(owned).Where("ban_id = ?", record.ID).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestDeleteManagerDenied(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	record := createBan(t, s, person.ID, []uint64{places[0].ID}, headManagerActor())

	err := s.Delete(record.ID, managerActor(places[0].ID))
	require.Error(t, err)
	assert.True(t, apperr.IsAuthorization(err))
}

func TestDeleteUnknownBan(t *testing.T) {
	s, _ := newTestService(t)

	err := s.Delete(999, headManagerActor())
	require.ErrorIs(t, err, ErrBanNotFound)
}
