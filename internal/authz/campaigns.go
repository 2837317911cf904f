package authz

import (
	"context"
	"errors"
	"log/slog"
)

// Campaign lifecycle statuses the engine cares about. Field-force roles see
// every active campaign regardless of country.
const CampaignStatusActive = "active"

// AssignmentRoleOwner marks the collaborator who created the campaign.
const AssignmentRoleOwner = "owner"

// CampaignResolver computes campaign-level visibility per role.
type CampaignResolver struct {
	store   Store
	catalog *Catalog
	logger  *slog.Logger
}

// NewCampaignResolver constructs a CampaignResolver.
func NewCampaignResolver(store Store, catalog *Catalog, logger *slog.Logger) *CampaignResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &CampaignResolver{store: store, catalog: catalog, logger: logger}
}

// CanView reports whether the principal may see one campaign. Store
// failures read as a denial, never as access.
func (r *CampaignResolver) CanView(ctx context.Context, p Principal, campaignID int64) bool {
	switch p.Role {
	case RoleSuperadmin, RoleAdmin:
		return true
	case RoleCreateur:
		_, assigned, err := r.store.CampaignAssignment(ctx, campaignID, p.ID)
		if err != nil {
			r.logger.Error("authz: campaign assignment lookup", slog.Int64("campaign_id", campaignID), slog.Any("error", err))
			return false
		}
		return assigned
	case RoleManagerReps, RoleRep:
		status, err := r.store.CampaignStatus(ctx, campaignID)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				r.logger.Error("authz: campaign status lookup", slog.Int64("campaign_id", campaignID), slog.Any("error", err))
			}
			return false
		}
		return status == CampaignStatusActive
	default:
		return false
	}
}

// CanEdit reports whether the principal may modify one campaign. The base
// permission gates everything; campaigns.edit_all widens it to any
// campaign, otherwise assignment membership is required.
func (r *CampaignResolver) CanEdit(ctx context.Context, p Principal, campaignID int64) bool {
	if !r.catalog.Can(ctx, p, PermCampaignsEdit) {
		return false
	}
	if r.catalog.Can(ctx, p, PermCampaignsEditAll) {
		return true
	}
	_, assigned, err := r.store.CampaignAssignment(ctx, campaignID, p.ID)
	if err != nil {
		r.logger.Error("authz: campaign assignment lookup", slog.Int64("campaign_id", campaignID), slog.Any("error", err))
		return false
	}
	return assigned
}

// CanAssign reports whether the principal may manage collaborators on one
// campaign. Createurs only qualify on campaigns they own.
func (r *CampaignResolver) CanAssign(ctx context.Context, p Principal, campaignID int64) bool {
	if !r.catalog.Can(ctx, p, PermCampaignsAssign) {
		return false
	}
	switch p.Role {
	case RoleSuperadmin, RoleAdmin:
		return true
	case RoleCreateur:
		role, assigned, err := r.store.CampaignAssignment(ctx, campaignID, p.ID)
		if err != nil {
			r.logger.Error("authz: campaign assignment lookup", slog.Int64("campaign_id", campaignID), slog.Any("error", err))
			return false
		}
		return assigned && role == AssignmentRoleOwner
	default:
		return false
	}
}

// AccessibleIDs computes the campaign scope for the principal.
func (r *CampaignResolver) AccessibleIDs(ctx context.Context, p Principal) Scope[int64] {
	switch p.Role {
	case RoleSuperadmin, RoleAdmin:
		return Unrestricted[int64]()
	case RoleCreateur:
		ids, err := r.store.AssignedCampaignIDs(ctx, p.ID)
		if err != nil {
			r.logger.Error("authz: assigned campaigns", slog.Int64("user_id", p.ID), slog.Any("error", err))
			return Empty[int64]()
		}
		return IDSet(ids)
	case RoleManagerReps, RoleRep:
		ids, err := r.store.ActiveCampaignIDs(ctx)
		if err != nil {
			r.logger.Error("authz: active campaigns", slog.Any("error", err))
			return Empty[int64]()
		}
		return IDSet(ids)
	default:
		return Empty[int64]()
	}
}
