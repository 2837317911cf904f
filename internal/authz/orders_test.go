package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func newOrderResolver(store *stubStore, dir Directory) *OrderResolver {
	catalog := NewCatalog(store, nil, testLogger())
	campaigns := NewCampaignResolver(store, catalog, testLogger())
	customers := NewCustomerResolver(store, dir, testLogger())
	return NewOrderResolver(store, campaigns, customers, testLogger())
}

func TestOrderCanViewBackOfficeSkipsLookup(t *testing.T) {
	store := &stubStore{orderErr: errors.New("db down")}
	r := newOrderResolver(store, &stubDirectory{})
	ctx := context.Background()

	require.True(t, r.CanView(ctx, Principal{Role: RoleSuperadmin}, 1))
	require.True(t, r.CanView(ctx, Principal{Role: RoleAdmin}, 1))
}

func TestOrderCanViewCreateurFollowsCampaign(t *testing.T) {
	store := &stubStore{
		orderKeys: map[int64]OrderKey{
			100: {CampaignID: 10, CustomerNumber: "C-100", Country: "BE"},
			101: {CampaignID: 11, CustomerNumber: "C-100", Country: "BE"},
		},
	}
	store.assign(10, 7, AssignmentRoleOwner)
	r := newOrderResolver(store, &stubDirectory{})
	ctx := context.Background()

	p := Principal{ID: 7, Role: RoleCreateur}
	require.True(t, r.CanView(ctx, p, 100))
	require.False(t, r.CanView(ctx, p, 101))
}

func TestOrderCanViewFieldForceFollowsPortfolio(t *testing.T) {
	store := &stubStore{
		orderKeys: map[int64]OrderKey{
			100: {CampaignID: 10, CustomerNumber: "C-100", Country: "BE"},
			101: {CampaignID: 10, CustomerNumber: "C-999", Country: "BE"},
		},
	}
	dir := &stubDirectory{portfolios: map[string][]string{"R-5/BE": {"C-100"}}}
	r := newOrderResolver(store, dir)
	ctx := context.Background()

	p := Principal{ID: 5, Role: RoleRep, RepID: "R-5", Country: "BE"}
	require.True(t, r.CanView(ctx, p, 100))
	require.False(t, r.CanView(ctx, p, 101))
}

func TestOrderCanViewMissingOrderDenied(t *testing.T) {
	r := newOrderResolver(&stubStore{}, &stubDirectory{})
	require.False(t, r.CanView(context.Background(), Principal{ID: 5, Role: RoleRep, RepID: "R-5", Country: "BE"}, 404))
}

func TestOrderCanViewFailsClosedOnLookupError(t *testing.T) {
	store := &stubStore{orderErr: errors.New("db down")}
	r := newOrderResolver(store, &stubDirectory{})
	require.False(t, r.CanView(context.Background(), Principal{ID: 7, Role: RoleCreateur}, 100))
}
