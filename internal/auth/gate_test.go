package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bandesk/bandesk/internal/apperr"
	"github.com/bandesk/bandesk/internal/roles"
)

func placeID(id uint64) *uint64 {
	return &id
}

func TestCanCreateBan(t *testing.T) {
	for _, role := range roles.All() {
		assert.NoError(t, CanCreateBan(Actor{UserID: 1, Role: role}), "role %q", role)
	}

	err := CanCreateBan(Actor{UserID: 1, Role: roles.Role("superuser")})
	assert.True(t, apperr.IsAuthorization(err), "unknown roles fail closed")
}

func TestCanUpdateBan(t *testing.T) {
	testCases := []struct {
		role    roles.Role
		allowed bool
	}{
		{roles.RoleAdmin, true},
		{roles.RoleHeadManager, true},
		{roles.RoleManager, true},
		{roles.RoleStaff, false},
	}

	for _, tc := range testCases {
		err := CanUpdateBan(Actor{UserID: 1, Role: tc.role})
		if tc.allowed {
			assert.NoError(t, err, "role %q", tc.role)
		} else {
			assert.True(t, apperr.IsAuthorization(err), "role %q", tc.role)
		}
	}
}

func TestCanDeleteBan(t *testing.T) {
	testCases := []struct {
		role    roles.Role
		allowed bool
	}{
		{roles.RoleAdmin, true},
		{roles.RoleHeadManager, true},
		{roles.RoleManager, false},
		{roles.RoleStaff, false},
	}

	for _, tc := range testCases {
		err := CanDeleteBan(Actor{UserID: 1, Role: tc.role})
		if tc.allowed {
			assert.NoError(t, err, "role %q", tc.role)
		} else {
			assert.True(t, apperr.IsAuthorization(err), "role %q", tc.role)
		}
	}
}

func TestPlaceScopedGates(t *testing.T) {
	gates := map[string]func(Actor, uint64) error{
		"CanAddPlace":       CanAddPlace,
		"CanRemovePlace":    CanRemovePlace,
		"CanDecideApproval": CanDecideApproval,
	}

	testCases := []struct {
		name    string
		actor   Actor
		place   uint64
		allowed bool
	}{
		{
			name:    "admin acts on any place",
			actor:   Actor{UserID: 1, Role: roles.RoleAdmin},
			place:   7,
			allowed: true,
		},
		{
			name:    "head-manager acts on any place",
			actor:   Actor{UserID: 1, Role: roles.RoleHeadManager},
			place:   7,
			allowed: true,
		},
		{
			name:    "manager acts on own assigned place",
			actor:   Actor{UserID: 1, Role: roles.RoleManager, AssignedPlaceID: placeID(7)},
			place:   7,
			allowed: true,
		},
		{
			name:    "manager denied on a foreign place",
			actor:   Actor{UserID: 1, Role: roles.RoleManager, AssignedPlaceID: placeID(7)},
			place:   8,
			allowed: false,
		},
		{
			name:    "manager without assigned place denied",
			actor:   Actor{UserID: 1, Role: roles.RoleManager},
			place:   7,
			allowed: false,
		},
		{
			name:    "staff denied even on own assigned place",
			actor:   Actor{UserID: 1, Role: roles.RoleStaff, AssignedPlaceID: placeID(7)},
			place:   7,
			allowed: false,
		},
	}

	for gateName, gate := range gates {
		for _, tc := range testCases {
			t.Run(gateName+"/"+tc.name, func(t *testing.T) {
				err := gate(tc.actor, tc.place)
				if tc.allowed {
					assert.NoError(t, err)
				} else {
					assert.True(t, apperr.IsAuthorization(err))
				}
			})
		}
	}
}

func TestCanRecordViolation(t *testing.T) {
	banPlaces := []uint64{3, 7}

	testCases := []struct {
		name    string
		actor   Actor
		allowed bool
	}{
		{
			name:    "head-manager records on any ban",
			actor:   Actor{UserID: 1, Role: roles.RoleHeadManager},
			allowed: true,
		},
		{
			name:    "manager records when scope covers a ban place",
			actor:   Actor{UserID: 1, Role: roles.RoleManager, AssignedPlaceID: placeID(7)},
			allowed: true,
		},
		{
			name:    "manager denied when scope misses every ban place",
			actor:   Actor{UserID: 1, Role: roles.RoleManager, AssignedPlaceID: placeID(9)},
			allowed: false,
		},
		{
			name:    "staff denied",
			actor:   Actor{UserID: 1, Role: roles.RoleStaff, AssignedPlaceID: placeID(7)},
			allowed: false,
		},
		{
			name:    "admin without management duty denied",
			actor:   Actor{UserID: 1, Role: roles.RoleAdmin},
			allowed: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CanRecordViolation(tc.actor, banPlaces)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperr.IsAuthorization(err))
			}
		})
	}
}

func TestAutoApproves(t *testing.T) {
	testCases := []struct {
		name     string
		actor    Actor
		place    uint64
		expected bool
	}{
		{
			name:     "manager on own assigned place",
			actor:    Actor{UserID: 1, Role: roles.RoleManager, AssignedPlaceID: placeID(7)},
			place:    7,
			expected: true,
		},
		{
			name:     "head-manager on own assigned place",
			actor:    Actor{UserID: 1, Role: roles.RoleHeadManager, AssignedPlaceID: placeID(7)},
			place:    7,
			expected: true,
		},
		{
			name:     "manager on a foreign place",
			actor:    Actor{UserID: 1, Role: roles.RoleManager, AssignedPlaceID: placeID(7)},
			place:    8,
			expected: false,
		},
		{
			name:     "head-manager without assigned place never auto-approves",
			actor:    Actor{UserID: 1, Role: roles.RoleHeadManager},
			place:    7,
			expected: false,
		},
		{
			name:     "staff on own assigned place",
			actor:    Actor{UserID: 1, Role: roles.RoleStaff, AssignedPlaceID: placeID(7)},
			place:    7,
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, AutoApproves(tc.actor, tc.place))
		})
	}
}

func TestActorScopes(t *testing.T) {
	manager := Actor{UserID: 1, Role: roles.RoleManager, AssignedPlaceID: placeID(7)}

	assert.False(t, manager.HasGlobalScope())
	assert.True(t, manager.ManagesPlace(7))
	assert.False(t, manager.ManagesPlace(8))
	assert.True(t, manager.ScopeCovers(7))
	assert.False(t, manager.ScopeCovers(8))

	staff := Actor{UserID: 2, Role: roles.RoleStaff, AssignedPlaceID: placeID(7)}

	assert.False(t, staff.ManagesPlace(7), "scope without management authority")
	assert.True(t, staff.ScopeCovers(7))

	head := Actor{UserID: 3, Role: roles.RoleHeadManager}

	assert.True(t, head.HasGlobalScope())
	assert.True(t, head.ManagesPlace(7))
	assert.True(t, head.ScopeCovers(7))
}
