package authz

import "context"

// Principal is the authenticated, possibly impersonated, actor whose
// permissions are evaluated. It is immutable for the duration of a request.
type Principal struct {
	ID      int64
	Role    Role
	RepID   string
	Country string
}

// Permission is one grantable capability from the persisted catalog.
type Permission struct {
	Code      string
	Name      string
	Category  string
	SortOrder int
}

// RoleGrant is one cell of the role/permission matrix.
type RoleGrant struct {
	Role    Role   `json:"role"`
	Code    string `json:"code"`
	Granted bool   `json:"granted"`
}

// Matrix maps role to permission code to granted flag.
type Matrix map[Role]map[string]bool

// Granted reports whether the matrix grants code to role. Any miss, an
// unknown role or an unknown code, reads as false.
func (m Matrix) Granted(role Role, code string) bool {
	if m == nil {
		return false
	}
	return m[role][code]
}

// Set records a grant cell, allocating the inner map as needed.
func (m Matrix) Set(role Role, code string, granted bool) {
	if m[role] == nil {
		m[role] = make(map[string]bool)
	}
	m[role][code] = granted
}

// OrderKey carries the identifying keys of one order needed for scoping.
type OrderKey struct {
	CampaignID     int64
	CustomerNumber string
	Country        string
}

// RepRef identifies a sales representative and the country whose directory
// holds their customer portfolio.
type RepRef struct {
	RepID   string
	Country string
}

// Store is the primary-schema access the engine depends on.
type Store interface {
	ListPermissions(ctx context.Context) ([]Permission, error)
	ListGrants(ctx context.Context) ([]RoleGrant, error)
	UpsertGrant(ctx context.Context, grant RoleGrant) error

	CampaignStatus(ctx context.Context, campaignID int64) (string, error)
	CampaignAssignment(ctx context.Context, campaignID, userID int64) (role string, assigned bool, err error)
	AssignedCampaignIDs(ctx context.Context, userID int64) ([]int64, error)
	ActiveCampaignIDs(ctx context.Context) ([]int64, error)

	OrderKey(ctx context.Context, orderID int64) (OrderKey, error)
	ManagedReps(ctx context.Context, managerID int64) ([]RepRef, error)
}

// Directory is the externally owned, read-only mapping from representatives
// to the customers they serve, partitioned by country.
type Directory interface {
	CustomerNumbers(ctx context.Context, repID, country string) ([]string, error)
	Countries() []string
}

// PrincipalProvider resolves the authenticated principal for a request.
// A nil principal with a nil error means the request is anonymous.
type PrincipalProvider interface {
	Current(ctx context.Context) (*Principal, error)
}
