package authz

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/meridian-crm/meridian-crm/internal/observability"
)

// Service is the long-lived authorization engine. It holds the injected
// store handles and caches; per-request state lives on the Guard returned
// by For.
type Service struct {
	store     Store
	catalog   *Catalog
	campaigns *CampaignResolver
	customers *CustomerResolver
	orders    *OrderResolver
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewService wires the engine. cache and metrics may be nil.
func NewService(store Store, directory Directory, cache *redis.Client, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	catalog := NewCatalog(store, cache, logger)
	campaigns := NewCampaignResolver(store, catalog, logger)
	customers := NewCustomerResolver(store, directory, logger)
	return &Service{
		store:     store,
		catalog:   catalog,
		campaigns: campaigns,
		customers: customers,
		orders:    NewOrderResolver(store, campaigns, customers, logger),
		logger:    logger,
		metrics:   metrics,
	}
}

// For binds the engine to one principal for the lifetime of a request.
func (s *Service) For(p Principal) *Guard {
	return &Guard{svc: s, principal: p}
}

// Catalog exposes the permission catalog for warmup jobs.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// PermissionMatrix returns the full grant matrix and catalog for the
// administrative settings screen.
func (s *Service) PermissionMatrix(ctx context.Context) MatrixView {
	matrix, perms := s.catalog.Matrix(ctx)
	return newMatrixView(matrix, perms)
}

// SavePermissionMatrix validates and applies a requested change set. Cells
// addressed to the protected role or to codes absent from the persisted
// catalog are skipped; everything actually written is upserted per
// (role, code) and the cache is invalidated before returning, so no
// subsequent read in this process observes stale grants.
func (s *Service) SavePermissionMatrix(ctx context.Context, actor Principal, requested Matrix) (MutationResult, error) {
	held := s.catalog.PermissionsFor(ctx, actor)
	result := ValidateMatrixChanges(actor, held, requested)
	if len(result.Allowed) == 0 {
		return result, nil
	}

	known := s.catalog.KnownCodes(ctx)
	applied := false
	for _, grant := range result.Allowed {
		if _, ok := known[grant.Code]; !ok {
			// Tolerate catalog drift between deployed code and store.
			continue
		}
		if err := s.store.UpsertGrant(ctx, grant); err != nil {
			if applied {
				s.catalog.Invalidate(ctx)
			}
			return result, fmt.Errorf("authz: save grant %s/%s: %w", grant.Role, grant.Code, err)
		}
		applied = true
	}
	if applied {
		s.catalog.Invalidate(ctx)
	}
	return result, nil
}

// ClearCache drops every cached matrix. Intended for tests and the
// administrative reset endpoint.
func (s *Service) ClearCache(ctx context.Context) {
	s.catalog.Invalidate(ctx)
}

func (s *Service) decision(allowed bool) bool {
	s.metrics.AuthzDecision(allowed)
	return allowed
}
