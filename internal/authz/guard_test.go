package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGuardOrderScopeFilterPerRole(t *testing.T) {
	store := &stubStore{
		assignedTo: map[int64][]int64{7: {3, 1}},
		reps:       map[int64][]RepRef{9: {{RepID: "R-1", Country: "BE"}}},
	}
	dir := &stubDirectory{portfolios: map[string][]string{
		"R-1/BE": {"C-200", "C-100"},
		"R-5/BE": {"C-300"},
	}}
	svc := newTestService(t, store, dir)
	ctx := context.Background()

	admin := svc.For(Principal{Role: RoleAdmin}).OrderScopeFilter(ctx, "o", "cu", 1)
	require.Equal(t, "1=1", admin.Predicate)

	createur := svc.For(Principal{ID: 7, Role: RoleCreateur}).OrderScopeFilter(ctx, "o", "cu", 1)
	require.Equal(t, "o.campaign_id IN ($1,$2)", createur.Predicate)
	require.Equal(t, []any{int64(1), int64(3)}, createur.Args)

	manager := svc.For(Principal{ID: 9, Role: RoleManagerReps}).OrderScopeFilter(ctx, "o", "cu", 1)
	require.Equal(t, "cu.customer_number IN ($1,$2)", manager.Predicate)
	require.Equal(t, []any{"C-100", "C-200"}, manager.Args)

	rep := svc.For(Principal{ID: 5, Role: RoleRep, RepID: "R-5", Country: "BE"}).OrderScopeFilter(ctx, "o", "cu", 2)
	require.Equal(t, "cu.customer_number IN ($2)", rep.Predicate)

	unknown := svc.For(Principal{Role: Role("ghost")}).OrderScopeFilter(ctx, "o", "cu", 1)
	require.Equal(t, "1=0", unknown.Predicate)
}

func TestGuardMemoizesCustomerScope(t *testing.T) {
	dir := &stubDirectory{portfolios: map[string][]string{"R-5/BE": {"C-100"}}}
	svc := newTestService(t, &stubStore{}, dir)
	ctx := context.Background()

	g := svc.For(Principal{ID: 5, Role: RoleRep, RepID: "R-5", Country: "BE"})
	g.AccessibleCustomerNumbers(ctx)
	g.AccessibleCustomerNumbers(ctx)
	g.OrderScopeFilter(ctx, "o", "cu", 1)
	require.Equal(t, 1, dir.calls)

	// A fresh guard resolves again.
	svc.For(Principal{ID: 5, Role: RoleRep, RepID: "R-5", Country: "BE"}).AccessibleCustomerNumbers(ctx)
	require.Equal(t, 2, dir.calls)
}

func TestGuardAccessibleCustomerNumbersOnly(t *testing.T) {
	dir := &stubDirectory{portfolios: map[string][]string{"R-5/BE": {"C-100"}}}
	svc := newTestService(t, &stubStore{}, dir)
	ctx := context.Background()

	numbers, restricted := svc.For(Principal{Role: RoleAdmin}).AccessibleCustomerNumbersOnly(ctx)
	require.False(t, restricted)
	require.Nil(t, numbers)

	numbers, restricted = svc.For(Principal{ID: 5, Role: RoleRep, RepID: "R-5", Country: "BE"}).AccessibleCustomerNumbersOnly(ctx)
	require.True(t, restricted)
	require.Equal(t, []string{"C-100"}, numbers)

	numbers, restricted = svc.For(Principal{ID: 6, Role: RoleRep}).AccessibleCustomerNumbersOnly(ctx)
	require.True(t, restricted)
	require.Empty(t, numbers)
}

func TestGuardRoleHelpers(t *testing.T) {
	svc := newTestService(t, &stubStore{}, &stubDirectory{})
	g := svc.For(Principal{ID: 1, Role: RoleAdmin})

	require.True(t, g.HasRole(RoleAdmin, RoleSuperadmin))
	require.False(t, g.HasRole(RoleRep))
	require.True(t, g.CanManageRole(RoleCreateur))
	require.False(t, g.CanManageRole(RoleAdmin))
	require.Equal(t, []Role{RoleCreateur, RoleManagerReps, RoleRep}, g.ManageableRoles())
}
