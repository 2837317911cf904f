// Package directory adapts the externally owned, read-only store mapping
// sales representatives to the customers they serve. The schema is split
// into one table per country; this package owns the country lookup so
// adding a country is additive.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian-crm/internal/observability"
)

// ErrUnknownCountry indicates a country code with no directory table.
var ErrUnknownCountry = errors.New("directory: unknown country")

// DefaultTimeout bounds every directory query. The upstream store has no
// SLA; expiry is treated like any other failure and fails closed upstream.
const DefaultTimeout = 3 * time.Second

// countryTables maps ISO country codes to their directory table. Table
// names come exclusively from this map, never from request input.
var countryTables = map[string]string{
	"BE": "rep_customers_be",
	"LU": "rep_customers_lu",
}

// Client reads the per-country directory over its own connection pool.
type Client struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClient constructs a Client. timeout <= 0 falls back to DefaultTimeout;
// metrics may be nil.
func NewClient(pool *pgxpool.Pool, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{pool: pool, timeout: timeout, logger: logger, metrics: metrics}
}

// Countries returns every country code the directory covers, sorted.
func (c *Client) Countries() []string {
	countries := make([]string, 0, len(countryTables))
	for code := range countryTables {
		countries = append(countries, code)
	}
	sort.Strings(countries)
	return countries
}

// CustomerNumbers returns the customer portfolio of one representative from
// the directory table of the given country.
func (c *Client) CustomerNumbers(ctx context.Context, repID, country string) ([]string, error) {
	table, ok := countryTables[strings.ToUpper(strings.TrimSpace(country))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, country)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	query := fmt.Sprintf(
		`SELECT customer_number FROM %s WHERE rep_id = $1 ORDER BY customer_number`, table)
	rows, err := c.pool.Query(ctx, query, repID)
	if err != nil {
		c.metrics.DirectoryLookup(country, time.Since(start), err)
		return nil, fmt.Errorf("directory: query %s: %w", table, err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			c.metrics.DirectoryLookup(country, time.Since(start), err)
			return nil, fmt.Errorf("directory: scan %s: %w", table, err)
		}
		numbers = append(numbers, number)
	}
	if err := rows.Err(); err != nil {
		c.metrics.DirectoryLookup(country, time.Since(start), err)
		return nil, fmt.Errorf("directory: read %s: %w", table, err)
	}
	c.metrics.DirectoryLookup(country, time.Since(start), nil)
	return numbers, nil
}
