package authz

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Filter is a SQL predicate fragment with its bound arguments. The caller
// embeds Predicate into its own WHERE clause and appends Args to its own
// argument list. Values never appear in the predicate text.
type Filter struct {
	Predicate string
	Args      []any
}

// FilterAll matches every row.
func FilterAll() Filter { return Filter{Predicate: "1=1"} }

// FilterNone matches no rows.
func FilterNone() Filter { return Filter{Predicate: "1=0"} }

// ScopeFilter renders scope as a parameterized IN predicate on column.
// Placeholders are numbered from startArg so the fragment can be spliced
// into a query that already carries its own arguments.
func ScopeFilter[T cmp.Ordered](scope Scope[T], column string, startArg int) Filter {
	switch scope.Kind() {
	case ScopeUnrestricted:
		return FilterAll()
	case ScopeIDs:
		ids := scope.IDs()
		placeholders := make([]string, len(ids))
		args := make([]any, len(ids))
		for i, id := range ids {
			placeholders[i] = "$" + strconv.Itoa(startArg+i)
			args[i] = id
		}
		return Filter{
			Predicate: fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")),
			Args:      args,
		}
	default:
		return FilterNone()
	}
}
