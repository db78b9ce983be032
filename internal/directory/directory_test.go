package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bandesk/bandesk/internal/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Person{}, &models.Place{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestPersonName(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)

	person := models.Person{FirstName: "John", LastName: "Doe"}
	require.NoError(t, db.Create(&person).Error)

	name, err := s.PersonName(person.ID)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", name)

	_, err = s.PersonName(999)
	require.ErrorIs(t, err, ErrPersonNotFound)
}

func TestPlaceName(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)

	place := models.Place{Name: "North Club"}
	require.NoError(t, db.Create(&place).Error)

	name, err := s.PlaceName(place.ID)
	require.NoError(t, err)
	assert.Equal(t, "North Club", name)

	_, err = s.PlaceName(999)
	require.ErrorIs(t, err, ErrPlaceNotFound)
}

func TestExists(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)

	person := models.Person{FirstName: "John", LastName: "Doe"}
	require.NoError(t, db.Create(&person).Error)

	place := models.Place{Name: "North Club"}
	require.NoError(t, db.Create(&place).Error)

	ok, err := s.PersonExists(person.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.PersonExists(999)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.PlaceExists(place.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.PlaceExists(999)
	require.NoError(t, err)
	assert.False(t, ok)
}
