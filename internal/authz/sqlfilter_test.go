package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopeFilterUnrestricted(t *testing.T) {
	f := ScopeFilter(Unrestricted[int64](), "c.id", 1)
	require.Equal(t, "1=1", f.Predicate)
	require.Empty(t, f.Args)
}

func TestScopeFilterEmpty(t *testing.T) {
	f := ScopeFilter(Empty[int64](), "c.id", 1)
	require.Equal(t, "1=0", f.Predicate)
	require.Empty(t, f.Args)
}

func TestScopeFilterIDs(t *testing.T) {
	scope := IDSet([]string{"C-200", "C-100"})
	f := ScopeFilter(scope, "cu.customer_number", 1)
	require.Equal(t, "cu.customer_number IN ($1,$2)", f.Predicate)
	require.Equal(t, []any{"C-100", "C-200"}, f.Args)
}

func TestScopeFilterStartArgComposes(t *testing.T) {
	scope := IDSet([]int64{5, 9})
	f := ScopeFilter(scope, "o.campaign_id", 3)
	require.Equal(t, "o.campaign_id IN ($3,$4)", f.Predicate)
	require.Equal(t, []any{int64(5), int64(9)}, f.Args)
}

func TestScopeFilterNeverInterpolatesValues(t *testing.T) {
	hostile := "'; DROP TABLE orders; --"
	f := ScopeFilter(IDSet([]string{hostile}), "cu.customer_number", 1)
	require.Equal(t, "cu.customer_number IN ($1)", f.Predicate)
	require.NotContains(t, f.Predicate, hostile)
	require.Equal(t, []any{hostile}, f.Args)
}
