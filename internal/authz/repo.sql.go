package authz

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("authz: not found")

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PGStore implements Store against the primary PostgreSQL schema.
type PGStore struct {
	db dbtx
}

// NewPGStore constructs a PGStore backed by the provided pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{db: pool}
}

// ListPermissions returns the full permission catalog ordered for display.
func (s *PGStore) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := s.db.Query(ctx, `
		SELECT code, name, category, sort_order
		FROM permissions
		ORDER BY category, sort_order, code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.Code, &p.Name, &p.Category, &p.SortOrder); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// ListGrants returns every grant cell joined against the catalog so that
// rows pointing at deleted permissions are dropped.
func (s *PGStore) ListGrants(ctx context.Context) ([]RoleGrant, error) {
	rows, err := s.db.Query(ctx, `
		SELECT rp.role, rp.permission_code, rp.granted
		FROM role_permissions rp
		JOIN permissions p ON p.code = rp.permission_code
		ORDER BY rp.role, rp.permission_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var grants []RoleGrant
	for rows.Next() {
		var g RoleGrant
		var role string
		if err := rows.Scan(&role, &g.Code, &g.Granted); err != nil {
			return nil, err
		}
		g.Role = Role(role)
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// UpsertGrant writes one grant cell, last write wins per (role, code).
func (s *PGStore) UpsertGrant(ctx context.Context, grant RoleGrant) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO role_permissions (role, permission_code, granted)
		VALUES ($1, $2, $3)
		ON CONFLICT (role, permission_code)
		DO UPDATE SET granted = EXCLUDED.granted`,
		string(grant.Role), grant.Code, grant.Granted)
	return err
}

// CampaignStatus returns the lifecycle status of one campaign.
func (s *PGStore) CampaignStatus(ctx context.Context, campaignID int64) (string, error) {
	var status string
	err := s.db.QueryRow(ctx,
		`SELECT status FROM campaigns WHERE id = $1`, campaignID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return status, nil
}

// CampaignAssignment looks up the collaborator role of userID on a campaign.
func (s *PGStore) CampaignAssignment(ctx context.Context, campaignID, userID int64) (string, bool, error) {
	var role string
	err := s.db.QueryRow(ctx, `
		SELECT assignment_role FROM campaign_assignees
		WHERE campaign_id = $1 AND user_id = $2`, campaignID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return role, true, nil
}

// AssignedCampaignIDs returns every campaign userID collaborates on.
func (s *PGStore) AssignedCampaignIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.db.Query(ctx, `
		SELECT ca.campaign_id
		FROM campaign_assignees ca
		JOIN campaigns c ON c.id = ca.campaign_id
		WHERE ca.user_id = $1
		ORDER BY ca.campaign_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInt64s(rows)
}

// ActiveCampaignIDs returns every campaign currently in the active status.
func (s *PGStore) ActiveCampaignIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id FROM campaigns WHERE status = $1 ORDER BY id`, CampaignStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInt64s(rows)
}

// OrderKey loads the identifying keys of one order in a single lookup.
func (s *PGStore) OrderKey(ctx context.Context, orderID int64) (OrderKey, error) {
	var key OrderKey
	err := s.db.QueryRow(ctx, `
		SELECT o.campaign_id, o.customer_number, o.country
		FROM orders o
		WHERE o.id = $1`, orderID).Scan(&key.CampaignID, &key.CustomerNumber, &key.Country)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OrderKey{}, ErrNotFound
		}
		return OrderKey{}, err
	}
	return key, nil
}

// ManagedReps returns the active representatives reporting to managerID.
func (s *PGStore) ManagedReps(ctx context.Context, managerID int64) ([]RepRef, error) {
	rows, err := s.db.Query(ctx, `
		SELECT rep_id, country
		FROM users
		WHERE role = $1 AND manager_id = $2 AND is_active
		ORDER BY rep_id`, string(RoleRep), managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var reps []RepRef
	for rows.Next() {
		var rep RepRef
		if err := rows.Scan(&rep.RepID, &rep.Country); err != nil {
			return nil, err
		}
		reps = append(reps, rep)
	}
	return reps, rows.Err()
}

func scanInt64s(rows pgx.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ Store = (*PGStore)(nil)
