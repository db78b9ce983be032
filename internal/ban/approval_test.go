package ban

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandesk/bandesk/internal/apperr"
	"github.com/bandesk/bandesk/internal/db/models"
)

func TestApprove(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	head := headManagerActor()
	record := createBan(t, s, person.ID, []uint64{places[0].ID, places[1].ID}, head)

	record, err := s.DecideApproval(record.ID, places[0].ID, true, head)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusPartial, record.OverallStatus())

	record, err = s.DecideApproval(record.ID, places[1].ID, true, head)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusApproved, record.OverallStatus())

	for _, approval := range record.Approvals {
		assert.Equal(t, models.PlaceApprovalApproved, approval.Status)
		require.NotNil(t, approval.DecidedByID)
		assert.Equal(t, head.UserID, *approval.DecidedByID)
		assert.NotNil(t, approval.DecidedAt)
	}
}

func TestApproveIsOneShot(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	head := headManagerActor()
	record := createBan(t, s, person.ID, []uint64{places[0].ID, places[1].ID}, head)

	_, err := s.DecideApproval(record.ID, places[0].ID, true, head)
	require.NoError(t, err)

	// the second decision loses the compare-and-swap
	_, err = s.DecideApproval(record.ID, places[0].ID, true, head)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
	assert.Contains(t, err.Error(), "already decided")

	_, err = s.DecideApproval(record.ID, places[0].ID, false, head)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
}

func TestDecideOnMissingPlace(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	head := headManagerActor()
	record := createBan(t, s, person.ID, []uint64{places[0].ID, places[1].ID}, head)

	_, err := s.DecideApproval(record.ID, places[2].ID, true, head)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
	assert.Contains(t, err.Error(), "not on the ban")
}

func TestDecideUnknownBan(t *testing.T) {
	s, db := newTestService(t)
	_, places := seedWorld(t, db)

	_, err := s.DecideApproval(999, places[0].ID, true, headManagerActor())
	require.ErrorIs(t, err, ErrBanNotFound)
}

func TestRejectRemovesPlace(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	head := headManagerActor()
	record := createBan(t, s, person.ID, []uint64{places[0].ID, places[1].ID}, head)

	record, err := s.DecideApproval(record.ID, places[1].ID, false, head)
	require.NoError(t, err)

	require.Len(t, record.Approvals, 1)
	assert.Equal(t, places[0].ID, record.Approvals[0].PlaceID)

	// the rejection survives in the audit history with the place name
	entries, err := s.History(record.ID, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.AuditRejected, entries[1].Action)
	assert.Contains(t, string(entries[1].Details), "South Club")
}

func TestRejectRollsBackWhenNameLookupFails(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	head := headManagerActor()
	record := createBan(t, s, person.ID, []uint64{places[0].ID, places[1].ID}, head)

	require.NoError(t, db.Delete(&models.Place{}, places[1].ID).Error)

	_, err := s.DecideApproval(record.ID, places[1].ID, false, head)
	require.Error(t, err)
	assert.True(t, apperr.IsUnavailable(err))

	// the approval survives and no audit entry was committed
	loaded, err := s.Get(record.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Approvals, 2)

	entries, err := s.History(record.ID, false)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRejectLastPlaceFails(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	head := headManagerActor()
	record := createBan(t, s, person.ID, []uint64{places[0].ID}, head)

	_, err := s.DecideApproval(record.ID, places[0].ID, false, head)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
	assert.Contains(t, err.Error(), "last place")

	// the place set is unchanged
	loaded, err := s.Get(record.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Approvals, 1)
}

func TestManagerDecidesOnlyOwnPlace(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	record := createBan(t, s, person.ID, []uint64{places[0].ID, places[1].ID}, headManagerActor())

	manager := managerActor(places[0].ID)

	_, err := s.DecideApproval(record.ID, places[0].ID, true, manager)
	require.NoError(t, err)

	_, err = s.DecideApproval(record.ID, places[1].ID, true, manager)
	require.Error(t, err)
	assert.True(t, apperr.IsAuthorization(err))
}

func TestStaffCannotDecide(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	record := createBan(t, s, person.ID, []uint64{places[0].ID, places[1].ID}, headManagerActor())

	_, err := s.DecideApproval(record.ID, places[0].ID, true, staffActor())
	require.Error(t, err)
	assert.True(t, apperr.IsAuthorization(err))
}

func TestApproveWritesAuditEntry(t *testing.T) {
	s, db := newTestService(t)
	person, places := seedWorld(t, db)

	head := headManagerActor()
	record := createBan(t, s, person.ID, []uint64{places[0].ID, places[1].ID}, head)

	_, err := s.DecideApproval(record.ID, places[0].ID, true, head)
	require.NoError(t, err)

	entries, err := s.History(record.ID, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entry := entries[1]
	assert.Equal(t, models.AuditApproved, entry.Action)
	require.NotNil(t, entry.PlaceID)
	assert.Equal(t, places[0].ID, *entry.PlaceID)
	assert.Equal(t, head.UserID, entry.ActorID)
}
