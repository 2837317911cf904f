package authz

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// MatrixView is the grant matrix shaped for the administrative settings
// screen: the catalog grouped by category with the editable roles.
type MatrixView struct {
	Roles      []Role               `json:"roles"`
	Categories []PermissionCategory `json:"categories"`
	Grants     Matrix               `json:"grants"`
}

// PermissionCategory groups catalog entries under one display heading.
type PermissionCategory struct {
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// Catalog labels are French; plain byte order missorts accented names.
var displayCollator = collate.New(language.French)

func newMatrixView(matrix Matrix, perms []Permission) MatrixView {
	grouped := make(map[string][]Permission)
	for _, p := range perms {
		grouped[p.Category] = append(grouped[p.Category], p)
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	slices.SortFunc(names, displayCollator.CompareString)

	categories := make([]PermissionCategory, 0, len(names))
	for _, name := range names {
		entries := grouped[name]
		slices.SortFunc(entries, func(a, b Permission) int {
			if a.SortOrder != b.SortOrder {
				return a.SortOrder - b.SortOrder
			}
			return displayCollator.CompareString(a.Name, b.Name)
		})
		categories = append(categories, PermissionCategory{Name: name, Permissions: entries})
	}

	// Superadmin is implicit and protected; it never appears as a column.
	roles := make([]Role, 0, len(AllRoles())-1)
	for _, role := range AllRoles() {
		if role != ProtectedRole {
			roles = append(roles, role)
		}
	}

	grants := make(Matrix, len(matrix))
	for role, cells := range matrix {
		for code, granted := range cells {
			grants.Set(role, code, granted)
		}
	}
	return MatrixView{Roles: roles, Categories: categories, Grants: grants}
}
