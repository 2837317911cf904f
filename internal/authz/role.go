package authz

// Role is one of the five fixed application roles.
type Role string

const (
	RoleSuperadmin  Role = "superadmin"
	RoleAdmin       Role = "admin"
	RoleCreateur    Role = "createur"
	RoleManagerReps Role = "manager_reps"
	RoleRep         Role = "rep"
)

// roleLevels ranks the roles; a lower level outranks a higher one. The
// hierarchy is fixed in code and never read from the database.
var roleLevels = map[Role]int{
	RoleSuperadmin:  1,
	RoleAdmin:       2,
	RoleCreateur:    3,
	RoleManagerReps: 4,
	RoleRep:         5,
}

// AllRoles returns every role ordered from most to least privileged.
func AllRoles() []Role {
	return []Role{RoleSuperadmin, RoleAdmin, RoleCreateur, RoleManagerReps, RoleRep}
}

// Valid reports whether r is one of the five known roles.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the hierarchy rank of the role. Unknown roles rank below
// every known role so they never gain management rights by accident.
func (r Role) Level() int {
	if lvl, ok := roleLevels[r]; ok {
		return lvl
	}
	return len(roleLevels) + 1
}

// CanManage reports whether r may manage target: the target must rank
// strictly below r in the hierarchy.
func (r Role) CanManage(target Role) bool {
	if !r.Valid() || !target.Valid() {
		return false
	}
	return target.Level() > r.Level()
}

// ManageableRoles returns every role that r may manage, ordered from most
// to least privileged.
func ManageableRoles(r Role) []Role {
	var roles []Role
	for _, candidate := range AllRoles() {
		if r.CanManage(candidate) {
			roles = append(roles, candidate)
		}
	}
	return roles
}
