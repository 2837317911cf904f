package customers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian-crm/internal/authz"
)

// Repository provides PostgreSQL backed customer reads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns the customers falling inside scope, ordered by number.
func (r *Repository) List(ctx context.Context, scope authz.Scope[string], limit, offset int) ([]Customer, error) {
	filter := authz.ScopeFilter(scope, "cu.customer_number", 1)
	argPos := len(filter.Args) + 1
	query := fmt.Sprintf(`
		SELECT cu.customer_number, cu.name, cu.country, cu.city, cu.created_at
		FROM customers cu
		WHERE %s
		ORDER BY cu.customer_number
		LIMIT $%d OFFSET $%d`, filter.Predicate, argPos, argPos+1)

	args := append(filter.Args, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var (
			c       Customer
			city    pgtype.Text
			created pgtype.Timestamptz
		)
		if err := rows.Scan(&c.CustomerNumber, &c.Name, &c.Country, &city, &created); err != nil {
			return nil, err
		}
		if city.Valid {
			c.City = city.String
		}
		if created.Valid {
			c.CreatedAt = created.Time
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
