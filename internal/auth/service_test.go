package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bandesk/bandesk/internal/db/models"
	"github.com/bandesk/bandesk/internal/roles"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestCreateUserAndAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)

	place := uint64(7)

	user, err := s.CreateUser("jdoe", "jdoe@example.com", "correct horse battery",
		"John", "Doe", roles.RoleManager, &place)
	require.NoError(t, err)
	assert.Equal(t, roles.RoleManager, user.Role)
	require.NotNil(t, user.AssignedPlaceID)
	assert.Equal(t, place, *user.AssignedPlaceID)
	assert.NotEqual(t, "correct horse battery", user.Password, "password is stored hashed")

	authenticated, err := s.Authenticate("jdoe", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authenticated.ID)

	_, err = s.Authenticate("jdoe", "wrong password")
	require.ErrorIs(t, err, ErrInvalidPassword)

	_, err = s.Authenticate("nobody", "correct horse battery")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateUserDuplicate(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)

	_, err := s.CreateUser("jdoe", "jdoe@example.com", "pw", "", "", roles.RoleStaff, nil)
	require.NoError(t, err)

	_, err = s.CreateUser("jdoe", "other@example.com", "pw", "", "", roles.RoleStaff, nil)
	require.ErrorIs(t, err, ErrUserNameOrEmailExists)

	_, err = s.CreateUser("other", "jdoe@example.com", "pw", "", "", roles.RoleStaff, nil)
	require.ErrorIs(t, err, ErrUserNameOrEmailExists)
}

func TestAuthenticateDisabledAccount(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)

	user, err := s.CreateUser("jdoe", "jdoe@example.com", "pw", "", "", roles.RoleStaff, nil)
	require.NoError(t, err)

	user.Active = false
	require.NoError(t, db.Save(user).Error)

	_, err = s.Authenticate("jdoe", "pw")
	require.ErrorIs(t, err, ErrUserAccountDisabled)
}

func TestChangePassword(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)

	user, err := s.CreateUser("jdoe", "jdoe@example.com", "old password", "", "", roles.RoleStaff, nil)
	require.NoError(t, err)

	require.ErrorIs(t, s.ChangePassword(user.ID, "not the old one", "new password"), ErrInvalidOldPassword)
	require.ErrorIs(t, s.ChangePassword(999, "old password", "new password"), ErrUserNotFound)

	require.NoError(t, s.ChangePassword(user.ID, "old password", "new password"))

	_, err = s.Authenticate("jdoe", "new password")
	require.NoError(t, err)

	_, err = s.Authenticate("jdoe", "old password")
	require.ErrorIs(t, err, ErrInvalidPassword)
}

func TestActorForUser(t *testing.T) {
	place := uint64(7)
	user := &models.User{ID: 42, Role: roles.RoleManager, AssignedPlaceID: &place}

	actor := ActorForUser(user)
	assert.Equal(t, uint64(42), actor.UserID)
	assert.Equal(t, roles.RoleManager, actor.Role)
	require.NotNil(t, actor.AssignedPlaceID)
	assert.Equal(t, place, *actor.AssignedPlaceID)
}
