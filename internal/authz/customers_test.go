package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCustomerScopeBackOfficeUnrestricted(t *testing.T) {
	r := NewCustomerResolver(&stubStore{}, &stubDirectory{}, testLogger())
	ctx := context.Background()

	for _, role := range []Role{RoleSuperadmin, RoleAdmin, RoleCreateur} {
		require.True(t, r.AccessibleCustomerNumbers(ctx, Principal{Role: role}).IsUnrestricted(), string(role))
	}
}

func TestCustomerScopeRepOwnPortfolio(t *testing.T) {
	dir := &stubDirectory{portfolios: map[string][]string{
		"R-12/BE": {"C-200", "C-100", "C-200"},
	}}
	r := NewCustomerResolver(&stubStore{}, dir, testLogger())

	scope := r.AccessibleCustomerNumbers(context.Background(), Principal{ID: 5, Role: RoleRep, RepID: "R-12", Country: "BE"})
	require.Equal(t, []string{"C-100", "C-200"}, scope.IDs())
}

func TestCustomerScopeRepMissingKeysIsEmpty(t *testing.T) {
	r := NewCustomerResolver(&stubStore{}, &stubDirectory{}, testLogger())
	ctx := context.Background()

	require.True(t, r.AccessibleCustomerNumbers(ctx, Principal{ID: 5, Role: RoleRep, Country: "BE"}).IsEmpty())
	require.True(t, r.AccessibleCustomerNumbers(ctx, Principal{ID: 5, Role: RoleRep, RepID: "R-12"}).IsEmpty())
}

func TestCustomerScopeManagerUnionsPortfolios(t *testing.T) {
	store := &stubStore{reps: map[int64][]RepRef{
		9: {{RepID: "R-1", Country: "BE"}, {RepID: "R-2", Country: "LU"}},
	}}
	dir := &stubDirectory{portfolios: map[string][]string{
		"R-1/BE": {"C-300", "C-100"},
		"R-2/LU": {"C-100", "C-500"},
	}}
	r := NewCustomerResolver(store, dir, testLogger())

	scope := r.AccessibleCustomerNumbers(context.Background(), Principal{ID: 9, Role: RoleManagerReps})
	require.Equal(t, []string{"C-100", "C-300", "C-500"}, scope.IDs())
}

func TestCustomerScopeManagerWithoutRepsIsEmpty(t *testing.T) {
	r := NewCustomerResolver(&stubStore{}, &stubDirectory{}, testLogger())
	scope := r.AccessibleCustomerNumbers(context.Background(), Principal{ID: 9, Role: RoleManagerReps})
	require.True(t, scope.IsEmpty())
}

func TestCustomerScopeDirectoryFailureFailsClosed(t *testing.T) {
	store := &stubStore{reps: map[int64][]RepRef{
		9: {{RepID: "R-1", Country: "BE"}, {RepID: "R-2", Country: "LU"}},
	}}
	dir := &stubDirectory{
		portfolios: map[string][]string{"R-1/BE": {"C-100"}},
		errs:       map[string]error{"R-2/LU": errors.New("timeout")},
	}
	r := NewCustomerResolver(store, dir, testLogger())
	ctx := context.Background()

	// One failing country empties the whole scope; a partial union would
	// silently hide customers the manager is entitled to.
	require.True(t, r.AccessibleCustomerNumbers(ctx, Principal{ID: 9, Role: RoleManagerReps}).IsEmpty())

	repDir := &stubDirectory{errs: map[string]error{"R-7/BE": errors.New("timeout")}}
	repResolver := NewCustomerResolver(&stubStore{}, repDir, testLogger())
	require.True(t, repResolver.AccessibleCustomerNumbers(ctx, Principal{ID: 5, Role: RoleRep, RepID: "R-7", Country: "BE"}).IsEmpty())
}

func TestManagedRepIDs(t *testing.T) {
	store := &stubStore{reps: map[int64][]RepRef{
		9: {{RepID: "R-1", Country: "BE"}},
	}}
	r := NewCustomerResolver(store, &stubDirectory{}, testLogger())
	ctx := context.Background()

	require.Equal(t, []RepRef{{RepID: "R-1", Country: "BE"}}, r.ManagedRepIDs(ctx, Principal{ID: 9, Role: RoleManagerReps}))
	require.Nil(t, r.ManagedRepIDs(ctx, Principal{ID: 9, Role: RoleAdmin}))
}

func TestAccessibleCountries(t *testing.T) {
	store := &stubStore{reps: map[int64][]RepRef{
		9: {{RepID: "R-1", Country: "LU"}, {RepID: "R-2", Country: "BE"}, {RepID: "R-3", Country: "BE"}},
	}}
	dir := &stubDirectory{countries: []string{"BE", "LU"}}
	r := NewCustomerResolver(store, dir, testLogger())
	ctx := context.Background()

	require.Equal(t, []string{"BE", "LU"}, r.AccessibleCountries(ctx, Principal{Role: RoleAdmin}))
	require.Equal(t, []string{"BE", "LU"}, r.AccessibleCountries(ctx, Principal{ID: 9, Role: RoleManagerReps}))
	require.Equal(t, []string{"BE"}, r.AccessibleCountries(ctx, Principal{Role: RoleRep, Country: "BE"}))
	require.Nil(t, r.AccessibleCountries(ctx, Principal{Role: RoleRep}))
}
