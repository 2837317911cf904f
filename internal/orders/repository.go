package orders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian-crm/internal/authz"
)

// Repository provides PostgreSQL backed order reads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns the orders matching the caller's scope filter, newest
// first. The filter fragment is produced by the authorization engine with
// placeholders starting at $1; this query appends its own arguments after
// the filter's.
func (r *Repository) List(ctx context.Context, filter authz.Filter, limit, offset int) ([]Order, error) {
	argPos := len(filter.Args) + 1
	query := fmt.Sprintf(`
		SELECT o.id, o.campaign_id, o.customer_number, cu.name, o.country,
		       o.status, o.total_amount, o.created_at
		FROM orders o
		JOIN customers cu ON cu.customer_number = o.customer_number AND cu.country = o.country
		WHERE %s
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $%d OFFSET $%d`, filter.Predicate, argPos, argPos+1)

	args := append(filter.Args, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var (
			o       Order
			total   pgtype.Numeric
			created pgtype.Timestamptz
		)
		if err := rows.Scan(&o.ID, &o.CampaignID, &o.CustomerNumber, &o.CustomerName,
			&o.Country, &o.Status, &total, &created); err != nil {
			return nil, err
		}
		if total.Valid {
			f, _ := total.Float64Value()
			o.TotalAmount = f.Float64
		}
		if created.Valid {
			o.CreatedAt = created.Time
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
