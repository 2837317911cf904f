package authz

import (
	"fmt"
	"slices"
)

// ProtectedRole can never be edited through the matrix API; its grants are
// implicit and total.
const ProtectedRole = RoleSuperadmin

// MutationResult reports the per-cell outcome of a matrix change request.
// Denied cells carry a reason in Errors; callers apply Allowed and surface
// the rest, so a partially valid request still partially succeeds.
type MutationResult struct {
	Allowed []RoleGrant `json:"allowed"`
	Denied  []RoleGrant `json:"denied"`
	Errors  []string    `json:"errors"`
}

// ValidateMatrixChanges filters a requested change set down to the cells
// the actor may apply. held is the actor's own permission set; an actor may
// neither grant nor revoke a code it does not hold itself, so the matrix
// can never be used for privilege escalation.
func ValidateMatrixChanges(actor Principal, held map[string]struct{}, requested Matrix) MutationResult {
	var result MutationResult

	roles := make([]Role, 0, len(requested))
	for role := range requested {
		roles = append(roles, role)
	}
	slices.Sort(roles)

	for _, role := range roles {
		cells := requested[role]
		codes := make([]string, 0, len(cells))
		for code := range cells {
			codes = append(codes, code)
		}
		slices.Sort(codes)

		if role == ProtectedRole {
			for _, code := range codes {
				result.Denied = append(result.Denied, RoleGrant{Role: role, Code: code, Granted: cells[code]})
			}
			result.Errors = append(result.Errors,
				fmt.Sprintf("role %q is protected and cannot be modified", role))
			continue
		}
		if !actor.Role.CanManage(role) {
			for _, code := range codes {
				result.Denied = append(result.Denied, RoleGrant{Role: role, Code: code, Granted: cells[code]})
			}
			result.Errors = append(result.Errors,
				fmt.Sprintf("role %q is not manageable by %q", role, actor.Role))
			continue
		}

		for _, code := range codes {
			grant := RoleGrant{Role: role, Code: code, Granted: cells[code]}
			if actor.Role != RoleSuperadmin {
				if _, ok := held[code]; !ok {
					result.Denied = append(result.Denied, grant)
					result.Errors = append(result.Errors,
						fmt.Sprintf("permission %q is not held by the current user", code))
					continue
				}
			}
			result.Allowed = append(result.Allowed, grant)
		}
	}
	return result
}
