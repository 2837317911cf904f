package authz

import (
	"cmp"
	"slices"
)

// ScopeKind tags the three cases of a Scope.
type ScopeKind int

const (
	// ScopeEmpty denies access to every entity of the type.
	ScopeEmpty ScopeKind = iota
	// ScopeIDs grants access to an explicit identifier set.
	ScopeIDs
	// ScopeUnrestricted grants access to every entity of the type.
	ScopeUnrestricted
)

// Scope is the computed visibility for one entity type: everything, an
// explicit identifier set, or nothing. "Everything" is a tagged case, never
// a nil collection, so callers must branch on it explicitly.
type Scope[T cmp.Ordered] struct {
	kind ScopeKind
	ids  []T
}

// Unrestricted returns the scope that matches every entity.
func Unrestricted[T cmp.Ordered]() Scope[T] {
	return Scope[T]{kind: ScopeUnrestricted}
}

// Empty returns the scope that matches nothing.
func Empty[T cmp.Ordered]() Scope[T] {
	return Scope[T]{kind: ScopeEmpty}
}

// IDSet returns a scope over an explicit identifier set. Identifiers are
// deduplicated and sorted; an empty input collapses to the Empty scope so
// that a zero-element set can never be mistaken for "everything".
func IDSet[T cmp.Ordered](ids []T) Scope[T] {
	if len(ids) == 0 {
		return Empty[T]()
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return Scope[T]{kind: ScopeIDs, ids: sorted}
}

// Kind returns the scope tag.
func (s Scope[T]) Kind() ScopeKind { return s.kind }

// IsUnrestricted reports whether the scope matches everything.
func (s Scope[T]) IsUnrestricted() bool { return s.kind == ScopeUnrestricted }

// IsEmpty reports whether the scope matches nothing.
func (s Scope[T]) IsEmpty() bool { return s.kind == ScopeEmpty }

// IDs returns a copy of the identifier set. It is nil unless Kind is
// ScopeIDs.
func (s Scope[T]) IDs() []T {
	if s.kind != ScopeIDs {
		return nil
	}
	return slices.Clone(s.ids)
}

// Contains reports whether id falls inside the scope.
func (s Scope[T]) Contains(id T) bool {
	switch s.kind {
	case ScopeUnrestricted:
		return true
	case ScopeIDs:
		_, found := slices.BinarySearch(s.ids, id)
		return found
	default:
		return false
	}
}
