package auth

import (
	"github.com/bandesk/bandesk/internal/apperr"
	"github.com/bandesk/bandesk/internal/roles"
)

// The gate functions below decide, per operation, whether an actor may
// proceed. They are pure: role and scope only, no persistence. Denials are
// AuthorizationErrors and deliberately do not say which rule blocked the
// action.

// CanCreateBan permits any known role to file a ban record; it starts
// pending unless auto-approval applies.
func CanCreateBan(actor Actor) error {
	if !roles.Valid(actor.Role) {
		return apperr.Authorization()
	}

	return nil
}

// CanUpdateBan permits managers and above to edit ban fields.
func CanUpdateBan(actor Actor) error {
	if !roles.HasRoleOrAbove(actor.Role, roles.RoleManager) {
		return apperr.Authorization()
	}

	return nil
}

// CanDeleteBan permits head-managers and admins to delete a ban record.
func CanDeleteBan(actor Actor) error {
	if !roles.HasRoleOrAbove(actor.Role, roles.RoleHeadManager) {
		return apperr.Authorization()
	}

	return nil
}

// CanAddPlace permits adding a place when the actor holds management
// authority over that place. A manager bound to one place may only add that
// place.
func CanAddPlace(actor Actor, placeID uint64) error {
	if !actor.ManagesPlace(placeID) {
		return apperr.Authorization()
	}

	return nil
}

// CanRemovePlace mirrors CanAddPlace for removals.
func CanRemovePlace(actor Actor, placeID uint64) error {
	if !actor.ManagesPlace(placeID) {
		return apperr.Authorization()
	}

	return nil
}

// CanDecideApproval permits approve/reject decisions on a place approval.
// Cross-place decisions are reserved to head-managers and admins; a manager
// may only decide on their own assigned place.
func CanDecideApproval(actor Actor, placeID uint64) error {
	if !actor.ManagesPlace(placeID) {
		return apperr.Authorization()
	}

	return nil
}

// CanRecordViolation permits recording a violation. Only managers and
// head-managers carry this duty, and the actor's scope must cover at least
// one place of the ban.
func CanRecordViolation(actor Actor, banPlaceIDs []uint64) error {
	if actor.Role != roles.RoleManager && actor.Role != roles.RoleHeadManager {
		return apperr.Authorization()
	}

	for _, placeID := range banPlaceIDs {
		if actor.ScopeCovers(placeID) {
			return nil
		}
	}

	return apperr.Authorization()
}

// AutoApproves reports whether a place approval created by this actor starts
// approved instead of pending: the place is the actor's own assigned place
// and the actor holds management authority over it.
func AutoApproves(actor Actor, placeID uint64) bool {
	if actor.AssignedPlaceID == nil || *actor.AssignedPlaceID != placeID {
		return false
	}

	return roles.HasRoleOrAbove(actor.Role, roles.RoleManager) && actor.ManagesPlace(placeID)
}
