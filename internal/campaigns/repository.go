package campaigns

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian-crm/internal/authz"
)

// Repository provides PostgreSQL backed campaign reads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns the campaigns falling inside scope, newest first.
func (r *Repository) List(ctx context.Context, scope authz.Scope[int64], limit, offset int) ([]Campaign, error) {
	filter := authz.ScopeFilter(scope, "c.id", 1)
	argPos := len(filter.Args) + 1
	query := fmt.Sprintf(`
		SELECT c.id, c.name, c.status, c.country, c.starts_at, c.ends_at, c.created_at
		FROM campaigns c
		WHERE %s
		ORDER BY c.starts_at DESC, c.id DESC
		LIMIT $%d OFFSET $%d`, filter.Predicate, argPos, argPos+1)

	args := append(filter.Args, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []Campaign
	for rows.Next() {
		var (
			c        Campaign
			startsAt pgtype.Timestamptz
			endsAt   pgtype.Timestamptz
			created  pgtype.Timestamptz
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Status, &c.Country, &startsAt, &endsAt, &created); err != nil {
			return nil, err
		}
		if startsAt.Valid {
			c.StartsAt = startsAt.Time
		}
		if endsAt.Valid {
			c.EndsAt = endsAt.Time
		}
		if created.Valid {
			c.CreatedAt = created.Time
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// ListAssignees returns the collaborators of one campaign.
func (r *Repository) ListAssignees(ctx context.Context, campaignID int64) ([]Assignee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT campaign_id, user_id, assignment_role
		FROM campaign_assignees
		WHERE campaign_id = $1
		ORDER BY user_id`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignees []Assignee
	for rows.Next() {
		var a Assignee
		if err := rows.Scan(&a.CampaignID, &a.UserID, &a.AssignmentRole); err != nil {
			return nil, err
		}
		assignees = append(assignees, a)
	}
	return assignees, rows.Err()
}
