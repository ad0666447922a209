// Package catalog resolves assistance item ids against the catalog_items
// table. Requests may only reference items that are active here.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yardimagi/backend-api-go/requests"
)

const queryTimeout = time.Second * 5

type Catalog struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

// Validate maps each known active id to its category and collects the rest
// as invalid. A lookup with no ids is trivially valid.
func (c *Catalog) Validate(ctx context.Context, ids []string) (map[string]requests.Category, []string, error) {
	categories := make(map[string]requests.Category, len(ids))
	if len(ids) == 0 {
		return categories, nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := c.pool.Query(ctx,
		"SELECT id, category FROM catalog_items WHERE is_active AND id = ANY($1)", ids)
	if err != nil {
		return nil, nil, fmt.Errorf("could not query catalog items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var category requests.Category
		if err := rows.Scan(&id, &category); err != nil {
			return nil, nil, fmt.Errorf("could not scan catalog item: %w", err)
		}
		categories[id] = category
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var invalid []string
	for _, id := range ids {
		if _, ok := categories[id]; !ok {
			invalid = append(invalid, id)
		}
	}
	return categories, invalid, nil
}

var _ requests.Catalog = (*Catalog)(nil)
