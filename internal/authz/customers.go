package authz

import (
	"context"
	"log/slog"
	"slices"
)

// CustomerResolver computes customer-number scopes from the external
// rep-to-customer directory. All directory and store failures fail closed
// to the Empty scope.
type CustomerResolver struct {
	store     Store
	directory Directory
	logger    *slog.Logger
}

// NewCustomerResolver constructs a CustomerResolver.
func NewCustomerResolver(store Store, directory Directory, logger *slog.Logger) *CustomerResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomerResolver{store: store, directory: directory, logger: logger}
}

// AccessibleCustomerNumbers computes the customer scope for the principal.
// Managers union the portfolios of every rep they manage, each fetched from
// the directory of that rep's own country. Createurs keep unrestricted
// customer browsing; their order visibility is constrained through the
// campaign scope instead.
func (r *CustomerResolver) AccessibleCustomerNumbers(ctx context.Context, p Principal) Scope[string] {
	switch p.Role {
	case RoleSuperadmin, RoleAdmin, RoleCreateur:
		return Unrestricted[string]()
	case RoleManagerReps:
		reps, err := r.store.ManagedReps(ctx, p.ID)
		if err != nil {
			r.logger.Error("authz: managed reps lookup", slog.Int64("user_id", p.ID), slog.Any("error", err))
			return Empty[string]()
		}
		var numbers []string
		for _, rep := range reps {
			portfolio, err := r.directory.CustomerNumbers(ctx, rep.RepID, rep.Country)
			if err != nil {
				r.logger.Error("authz: directory lookup",
					slog.String("rep_id", rep.RepID),
					slog.String("country", rep.Country),
					slog.Any("error", err))
				return Empty[string]()
			}
			numbers = append(numbers, portfolio...)
		}
		return IDSet(numbers)
	case RoleRep:
		if p.RepID == "" || p.Country == "" {
			r.logger.Warn("authz: rep principal missing directory keys", slog.Int64("user_id", p.ID))
			return Empty[string]()
		}
		numbers, err := r.directory.CustomerNumbers(ctx, p.RepID, p.Country)
		if err != nil {
			r.logger.Error("authz: directory lookup",
				slog.String("rep_id", p.RepID),
				slog.String("country", p.Country),
				slog.Any("error", err))
			return Empty[string]()
		}
		return IDSet(numbers)
	default:
		return Empty[string]()
	}
}

// ManagedRepIDs returns the representatives reporting to a manager. It is
// only meaningful for the manager_reps role.
func (r *CustomerResolver) ManagedRepIDs(ctx context.Context, p Principal) []RepRef {
	if p.Role != RoleManagerReps {
		return nil
	}
	reps, err := r.store.ManagedReps(ctx, p.ID)
	if err != nil {
		r.logger.Error("authz: managed reps lookup", slog.Int64("user_id", p.ID), slog.Any("error", err))
		return nil
	}
	return reps
}

// AccessibleCountries derives the distinct countries the principal works
// in: those of their managed reps, their own, or every directory country
// for the back-office roles.
func (r *CustomerResolver) AccessibleCountries(ctx context.Context, p Principal) []string {
	switch p.Role {
	case RoleSuperadmin, RoleAdmin, RoleCreateur:
		return r.directory.Countries()
	case RoleManagerReps:
		reps, err := r.store.ManagedReps(ctx, p.ID)
		if err != nil {
			r.logger.Error("authz: managed reps lookup", slog.Int64("user_id", p.ID), slog.Any("error", err))
			return nil
		}
		var countries []string
		for _, rep := range reps {
			if rep.Country != "" && !slices.Contains(countries, rep.Country) {
				countries = append(countries, rep.Country)
			}
		}
		slices.Sort(countries)
		return countries
	case RoleRep:
		if p.Country == "" {
			return nil
		}
		return []string{p.Country}
	default:
		return nil
	}
}
