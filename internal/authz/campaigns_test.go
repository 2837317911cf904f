package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func newCampaignResolver(store *stubStore) *CampaignResolver {
	catalog := NewCatalog(store, nil, testLogger())
	return NewCampaignResolver(store, catalog, testLogger())
}

func TestCampaignCanViewBackOffice(t *testing.T) {
	store := &stubStore{}
	r := newCampaignResolver(store)
	ctx := context.Background()

	require.True(t, r.CanView(ctx, Principal{Role: RoleSuperadmin}, 1))
	require.True(t, r.CanView(ctx, Principal{Role: RoleAdmin}, 1))
}

func TestCampaignCanViewCreateurNeedsAssignment(t *testing.T) {
	store := &stubStore{campaigns: map[int64]string{10: CampaignStatusActive}}
	store.assign(10, 7, AssignmentRoleOwner)
	r := newCampaignResolver(store)
	ctx := context.Background()

	require.True(t, r.CanView(ctx, Principal{ID: 7, Role: RoleCreateur}, 10))
	require.False(t, r.CanView(ctx, Principal{ID: 8, Role: RoleCreateur}, 10))
}

func TestCampaignCanViewFieldForceNeedsActiveStatus(t *testing.T) {
	store := &stubStore{campaigns: map[int64]string{
		10: CampaignStatusActive,
		11: "draft",
		12: "archived",
	}}
	r := newCampaignResolver(store)
	ctx := context.Background()

	for _, role := range []Role{RoleManagerReps, RoleRep} {
		p := Principal{ID: 3, Role: role}
		require.True(t, r.CanView(ctx, p, 10), "%s sees active", role)
		require.False(t, r.CanView(ctx, p, 11), "%s blind to draft", role)
		require.False(t, r.CanView(ctx, p, 12), "%s blind to archived", role)
		require.False(t, r.CanView(ctx, p, 404), "%s blind to missing", role)
	}
}

func TestCampaignCanViewFailsClosedOnStoreError(t *testing.T) {
	store := &stubStore{assignErr: errors.New("db down"), statusErr: errors.New("db down")}
	r := newCampaignResolver(store)
	ctx := context.Background()

	require.False(t, r.CanView(ctx, Principal{ID: 7, Role: RoleCreateur}, 10))
	require.False(t, r.CanView(ctx, Principal{ID: 7, Role: RoleRep}, 10))
}

func TestCampaignCanEdit(t *testing.T) {
	store := &stubStore{
		perms: catalogPerms(),
		grants: []RoleGrant{
			{Role: RoleCreateur, Code: PermCampaignsEdit, Granted: true},
			{Role: RoleAdmin, Code: PermCampaignsEdit, Granted: true},
			{Role: RoleAdmin, Code: PermCampaignsEditAll, Granted: true},
		},
	}
	store.assign(10, 7, "collaborator")
	r := newCampaignResolver(store)
	ctx := context.Background()

	// Assigned createur with the base permission.
	require.True(t, r.CanEdit(ctx, Principal{ID: 7, Role: RoleCreateur}, 10))
	// Unassigned createur, same permission.
	require.False(t, r.CanEdit(ctx, Principal{ID: 8, Role: RoleCreateur}, 10))
	// edit_all widens to unassigned campaigns.
	require.True(t, r.CanEdit(ctx, Principal{ID: 9, Role: RoleAdmin}, 10))
	// Without the base permission nothing else matters.
	require.False(t, r.CanEdit(ctx, Principal{ID: 3, Role: RoleRep}, 10))
}

func TestCampaignCanAssign(t *testing.T) {
	store := &stubStore{
		perms: catalogPerms(),
		grants: []RoleGrant{
			{Role: RoleCreateur, Code: PermCampaignsAssign, Granted: true},
			{Role: RoleAdmin, Code: PermCampaignsAssign, Granted: true},
		},
	}
	store.assign(10, 7, AssignmentRoleOwner)
	store.assign(10, 8, "collaborator")
	r := newCampaignResolver(store)
	ctx := context.Background()

	require.True(t, r.CanAssign(ctx, Principal{ID: 1, Role: RoleAdmin}, 10))
	// Owner createur qualifies, a plain collaborator does not.
	require.True(t, r.CanAssign(ctx, Principal{ID: 7, Role: RoleCreateur}, 10))
	require.False(t, r.CanAssign(ctx, Principal{ID: 8, Role: RoleCreateur}, 10))
}

func TestCampaignAccessibleIDs(t *testing.T) {
	store := &stubStore{
		assignedTo: map[int64][]int64{7: {3, 1, 3}},
		activeIDs:  []int64{5, 2},
	}
	r := newCampaignResolver(store)
	ctx := context.Background()

	require.True(t, r.AccessibleIDs(ctx, Principal{Role: RoleAdmin}).IsUnrestricted())

	createur := r.AccessibleIDs(ctx, Principal{ID: 7, Role: RoleCreateur})
	require.Equal(t, []int64{1, 3}, createur.IDs())

	rep := r.AccessibleIDs(ctx, Principal{ID: 3, Role: RoleRep})
	require.Equal(t, []int64{2, 5}, rep.IDs())

	// A createur with no assignments gets the empty scope, not everything.
	none := r.AccessibleIDs(ctx, Principal{ID: 99, Role: RoleCreateur})
	require.True(t, none.IsEmpty())
}

func TestCampaignAccessibleIDsFailsClosed(t *testing.T) {
	store := &stubStore{assignErr: errors.New("db down"), activeErr: errors.New("db down")}
	r := newCampaignResolver(store)
	ctx := context.Background()

	require.True(t, r.AccessibleIDs(ctx, Principal{ID: 7, Role: RoleCreateur}).IsEmpty())
	require.True(t, r.AccessibleIDs(ctx, Principal{ID: 7, Role: RoleRep}).IsEmpty())
}
