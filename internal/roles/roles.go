// Package roles defines the fixed role hierarchy used for every authorization
// decision in bandesk.
package roles

// Role identifies one of the four operator roles.
type Role string

const (
	// RoleAdmin has every permission in the system.
	RoleAdmin Role = "admin"
	// RoleHeadManager manages all places and supersedes managers.
	RoleHeadManager Role = "head-manager"
	// RoleManager manages a single assigned place.
	RoleManager Role = "manager"
	// RoleStaff can view records but not decide on them.
	RoleStaff Role = "staff"
)

// subsumed is the direct adjacency between roles. AccessibleRoles closes it
// under transitivity, so inserting an intermediate role later only needs its
// direct edges added here.
var subsumed = map[Role][]Role{ //nolint:gochecknoglobals
	RoleAdmin:       {RoleHeadManager, RoleManager, RoleStaff},
	RoleHeadManager: {RoleManager, RoleStaff},
	RoleManager:     {RoleStaff},
	RoleStaff:       {},
}

// All lists every known role, highest privilege first.
func All() []Role {
	return []Role{RoleAdmin, RoleHeadManager, RoleManager, RoleStaff}
}

// Valid reports whether r is a known role.
func Valid(r Role) bool {
	_, ok := subsumed[r]
	return ok
}

// AccessibleRoles returns the role itself plus every role it transitively
// subsumes. An unknown role yields an empty set, so authorization fails
// closed.
func AccessibleRoles(r Role) map[Role]struct{} {
	accessible := make(map[Role]struct{})

	if _, ok := subsumed[r]; !ok {
		return accessible
	}

	// graph closure over the adjacency map
	queue := []Role{r}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if _, seen := accessible[current]; seen {
			continue
		}

		accessible[current] = struct{}{}
		queue = append(queue, subsumed[current]...)
	}

	return accessible
}

// HasRoleOrAbove reports whether role satisfies the required role, i.e. the
// required role is within the set of roles the actor's role subsumes.
func HasRoleOrAbove(role, required Role) bool {
	_, ok := AccessibleRoles(role)[required]
	return ok
}
