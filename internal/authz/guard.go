package authz

import (
	"context"
	"fmt"
)

// Guard evaluates authorization questions for one principal. It memoizes
// computed scopes for the request it serves; build a fresh Guard per
// request and do not share one across goroutines.
type Guard struct {
	svc       *Service
	principal Principal

	campaignScope *Scope[int64]
	customerScope *Scope[string]
}

// Principal returns the bound principal.
func (g *Guard) Principal() Principal { return g.principal }

// Role returns the bound principal's role.
func (g *Guard) Role() Role { return g.principal.Role }

// HasRole reports whether the principal holds any of the given roles.
func (g *Guard) HasRole(roles ...Role) bool {
	for _, role := range roles {
		if g.principal.Role == role {
			return true
		}
	}
	return false
}

// ManageableRoles returns the roles the principal may administer.
func (g *Guard) ManageableRoles() []Role {
	return ManageableRoles(g.principal.Role)
}

// CanManageRole reports whether the principal may administer target.
func (g *Guard) CanManageRole(target Role) bool {
	return g.principal.Role.CanManage(target)
}

// Can reports whether the principal holds the named permission.
func (g *Guard) Can(ctx context.Context, code string) bool {
	return g.svc.decision(g.svc.catalog.Can(ctx, g.principal, code))
}

// Cannot is the negation of Can.
func (g *Guard) Cannot(ctx context.Context, code string) bool {
	return !g.Can(ctx, code)
}

// Permissions returns the set of permission codes granted to the principal.
func (g *Guard) Permissions(ctx context.Context) map[string]struct{} {
	return g.svc.catalog.PermissionsFor(ctx, g.principal)
}

// CanViewCampaign reports whether the principal may see one campaign.
func (g *Guard) CanViewCampaign(ctx context.Context, campaignID int64) bool {
	return g.svc.decision(g.svc.campaigns.CanView(ctx, g.principal, campaignID))
}

// CanEditCampaign reports whether the principal may modify one campaign.
func (g *Guard) CanEditCampaign(ctx context.Context, campaignID int64) bool {
	return g.svc.decision(g.svc.campaigns.CanEdit(ctx, g.principal, campaignID))
}

// CanAssignToCampaign reports whether the principal may manage the
// collaborators of one campaign.
func (g *Guard) CanAssignToCampaign(ctx context.Context, campaignID int64) bool {
	return g.svc.decision(g.svc.campaigns.CanAssign(ctx, g.principal, campaignID))
}

// AccessibleCampaignIDs returns the campaign scope, computed once per Guard.
func (g *Guard) AccessibleCampaignIDs(ctx context.Context) Scope[int64] {
	if g.campaignScope == nil {
		scope := g.svc.campaigns.AccessibleIDs(ctx, g.principal)
		g.campaignScope = &scope
	}
	return *g.campaignScope
}

// CanViewOrder reports whether the principal may see one order.
func (g *Guard) CanViewOrder(ctx context.Context, orderID int64) bool {
	return g.svc.decision(g.svc.orders.CanView(ctx, g.principal, orderID))
}

// AccessibleCustomerNumbers returns the customer scope, computed once per
// Guard.
func (g *Guard) AccessibleCustomerNumbers(ctx context.Context) Scope[string] {
	if g.customerScope == nil {
		scope := g.svc.customers.AccessibleCustomerNumbers(ctx, g.principal)
		g.customerScope = &scope
	}
	return *g.customerScope
}

// AccessibleCustomerNumbersOnly returns the explicit customer-number list
// when the scope is restricted. restricted is false for the unrestricted
// scope; an Empty scope yields restricted true with no numbers.
func (g *Guard) AccessibleCustomerNumbersOnly(ctx context.Context) (numbers []string, restricted bool) {
	scope := g.AccessibleCustomerNumbers(ctx)
	if scope.IsUnrestricted() {
		return nil, false
	}
	return scope.IDs(), true
}

// AccessibleCountries derives the distinct countries the principal works in.
func (g *Guard) AccessibleCountries(ctx context.Context) []string {
	return g.svc.customers.AccessibleCountries(ctx, g.principal)
}

// ManagedRepIDs returns the representatives the principal manages.
func (g *Guard) ManagedRepIDs(ctx context.Context) []RepRef {
	return g.svc.customers.ManagedRepIDs(ctx, g.principal)
}

// OrderScopeFilter renders the principal's order visibility as a bound
// parameter SQL predicate. Back-office roles see everything, createurs are
// filtered on the order's campaign, field-force roles on the customer
// number. Placeholders are numbered from startArg so the fragment composes
// with the caller's own query.
func (g *Guard) OrderScopeFilter(ctx context.Context, orderAlias, customerAlias string, startArg int) Filter {
	switch g.principal.Role {
	case RoleSuperadmin, RoleAdmin:
		return FilterAll()
	case RoleCreateur:
		scope := g.AccessibleCampaignIDs(ctx)
		return ScopeFilter(scope, fmt.Sprintf("%s.campaign_id", orderAlias), startArg)
	case RoleManagerReps, RoleRep:
		scope := g.AccessibleCustomerNumbers(ctx)
		return ScopeFilter(scope, fmt.Sprintf("%s.customer_number", customerAlias), startArg)
	default:
		return FilterNone()
	}
}
