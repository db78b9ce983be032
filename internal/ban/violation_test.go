package ban

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandesk/bandesk/internal/apperr"
	"github.com/bandesk/bandesk/internal/db/models"
)

func TestRecordViolation(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	head := headManagerActor()
	record := createBan(t, s, person.ID, []uint64{places[0].ID}, head)

	occurredAt, err := s.RecordViolation(record.ID, head)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), occurredAt, 5*time.Second)

	_, err = s.RecordViolation(record.ID, head)
	require.NoError(t, err)

	loaded, err := s.Get(record.ID)
	require.NoError(t, err)

	// the counter always equals the number of log entries
	assert.Equal(t, 2, loaded.ViolationsCount)
	assert.Len(t, loaded.Violations, 2)

	for _, violation := range loaded.Violations {
		assert.Equal(t, head.UserID, violation.RecordedByID)
		assert.False(t, violation.OccurredAt.IsZero())
	}
}

func TestRecordViolationScopedManager(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	record := createBan(t, s, person.ID, []uint64{places[0].ID, places[1].ID}, headManagerActor())

	// scope covers one of the ban's places
	_, err := s.RecordViolation(record.ID, managerActor(places[1].ID))
	require.NoError(t, err)

	// scope misses every ban place
	_, err = s.RecordViolation(record.ID, managerActor(places[2].ID))
	require.Error(t, err)
	assert.True(t, apperr.IsAuthorization(err))
}

func TestRecordViolationStaffDenied(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	record := createBan(t, s, person.ID, []uint64{places[0].ID}, headManagerActor())

	_, err := s.RecordViolation(record.ID, staffActor())
	require.Error(t, err)
	assert.True(t, apperr.IsAuthorization(err))

	loaded, err := s.Get(record.ID)
	require.NoError(t, err)
	assert.Zero(t, loaded.ViolationsCount)
	assert.Empty(t, loaded.Violations)
}

func TestRecordViolationUnknownBan(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.RecordViolation(999, headManagerActor())
	require.ErrorIs(t, err, ErrBanNotFound)
}

func TestRecordViolationWritesAuditEntry(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	head := headManagerActor()
	record := createBan(t, s, person.ID, []uint64{places[0].ID}, head)

	_, err := s.RecordViolation(record.ID, head)
	require.NoError(t, err)

	entries, err := s.History(record.ID, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, models.AuditViolationRecorded, entries[1].Action)
	assert.Contains(t, string(entries[1].Details), "occurredAt")
}
