package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleLevels(t *testing.T) {
	require.Equal(t, 1, RoleSuperadmin.Level())
	require.Equal(t, 2, RoleAdmin.Level())
	require.Equal(t, 3, RoleCreateur.Level())
	require.Equal(t, 4, RoleManagerReps.Level())
	require.Equal(t, 5, RoleRep.Level())

	// Unknown roles rank below everything.
	require.Greater(t, Role("intern").Level(), RoleRep.Level())
	require.False(t, Role("intern").Valid())
}

func TestCanManage(t *testing.T) {
	cases := []struct {
		actor  Role
		target Role
		want   bool
	}{
		{RoleSuperadmin, RoleSuperadmin, false},
		{RoleSuperadmin, RoleAdmin, true},
		{RoleSuperadmin, RoleCreateur, true},
		{RoleSuperadmin, RoleManagerReps, true},
		{RoleSuperadmin, RoleRep, true},
		{RoleAdmin, RoleSuperadmin, false},
		{RoleAdmin, RoleAdmin, false},
		{RoleAdmin, RoleCreateur, true},
		{RoleAdmin, RoleManagerReps, true},
		{RoleAdmin, RoleRep, true},
		{RoleCreateur, RoleSuperadmin, false},
		{RoleCreateur, RoleAdmin, false},
		{RoleCreateur, RoleCreateur, false},
		{RoleCreateur, RoleManagerReps, true},
		{RoleCreateur, RoleRep, true},
		{RoleManagerReps, RoleSuperadmin, false},
		{RoleManagerReps, RoleAdmin, false},
		{RoleManagerReps, RoleCreateur, false},
		{RoleManagerReps, RoleManagerReps, false},
		{RoleManagerReps, RoleRep, true},
		{RoleRep, RoleSuperadmin, false},
		{RoleRep, RoleAdmin, false},
		{RoleRep, RoleCreateur, false},
		{RoleRep, RoleManagerReps, false},
		{RoleRep, RoleRep, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.actor.CanManage(tc.target),
			"%s manages %s", tc.actor, tc.target)
	}
}

func TestCanManageUnknownRole(t *testing.T) {
	// An unknown role never manages and is never manageable, even though
	// it ranks below rep.
	require.False(t, Role("ghost").CanManage(RoleRep))
	require.False(t, RoleSuperadmin.CanManage(Role("ghost")))
}

func TestManageableRoles(t *testing.T) {
	require.Equal(t, []Role{RoleAdmin, RoleCreateur, RoleManagerReps, RoleRep}, ManageableRoles(RoleSuperadmin))
	require.Equal(t, []Role{RoleCreateur, RoleManagerReps, RoleRep}, ManageableRoles(RoleAdmin))
	require.Equal(t, []Role{RoleManagerReps, RoleRep}, ManageableRoles(RoleCreateur))
	require.Equal(t, []Role{RoleRep}, ManageableRoles(RoleManagerReps))
	require.Empty(t, ManageableRoles(RoleRep))
	require.Empty(t, ManageableRoles(Role("ghost")))
}
