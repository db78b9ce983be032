package auth

import (
	"github.com/bandesk/bandesk/internal/db/models"
	"github.com/bandesk/bandesk/internal/roles"
)

// Actor is the caller identity every engine operation is checked against:
// the user, their role and the optional place their scope is bound to.
// Identity is passed explicitly per call; there is no ambient session state
// inside the engine.
type Actor struct {
	UserID          uint64
	Role            roles.Role
	AssignedPlaceID *uint64
}

// ActorForUser builds the Actor for a user account.
func ActorForUser(u *models.User) Actor {
	return Actor{
		UserID:          u.ID,
		Role:            u.Role,
		AssignedPlaceID: u.AssignedPlaceID,
	}
}

// HasGlobalScope reports whether the actor may act on any place.
// Head-managers and admins are not bound to an assigned place.
func (a Actor) HasGlobalScope() bool {
	return roles.HasRoleOrAbove(a.Role, roles.RoleHeadManager)
}

// ManagesPlace reports whether the actor holds management authority over the
// given place: global scope, or a manager whose assigned place it is.
func (a Actor) ManagesPlace(placeID uint64) bool {
	if a.HasGlobalScope() {
		return true
	}

	if !roles.HasRoleOrAbove(a.Role, roles.RoleManager) {
		return false
	}

	return a.AssignedPlaceID != nil && *a.AssignedPlaceID == placeID
}

// ScopeCovers reports whether the place lies within the actor's scope,
// regardless of management authority.
func (a Actor) ScopeCovers(placeID uint64) bool {
	if a.HasGlobalScope() {
		return true
	}

	return a.AssignedPlaceID != nil && *a.AssignedPlaceID == placeID
}
