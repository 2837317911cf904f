package authz

import (
	"context"
	"errors"
	"log/slog"
)

// OrderResolver computes order-level visibility by delegating to the
// campaign or customer scope depending on the principal's role.
type OrderResolver struct {
	store     Store
	campaigns *CampaignResolver
	customers *CustomerResolver
	logger    *slog.Logger
}

// NewOrderResolver constructs an OrderResolver.
func NewOrderResolver(store Store, campaigns *CampaignResolver, customers *CustomerResolver, logger *slog.Logger) *OrderResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderResolver{store: store, campaigns: campaigns, customers: customers, logger: logger}
}

// CanView reports whether the principal may see one order. The order's
// identifying keys are loaded in a single lookup; createurs delegate to the
// campaign scope, field-force roles to customer-number membership.
func (r *OrderResolver) CanView(ctx context.Context, p Principal, orderID int64) bool {
	switch p.Role {
	case RoleSuperadmin, RoleAdmin:
		return true
	}

	key, err := r.store.OrderKey(ctx, orderID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Error("authz: order key lookup", slog.Int64("order_id", orderID), slog.Any("error", err))
		}
		return false
	}

	switch p.Role {
	case RoleCreateur:
		return r.campaigns.CanView(ctx, p, key.CampaignID)
	case RoleManagerReps, RoleRep:
		return r.customers.AccessibleCustomerNumbers(ctx, p).Contains(key.CustomerNumber)
	default:
		return false
	}
}
