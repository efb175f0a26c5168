// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/stackrec/internal/core"
)

const productColumns = `
	id, name, brand, category, price_cents, rating, review_count,
	url, image_url, goal_tags, health_tags, evidence_level, available,
	commission_rate, third_party_tested, allergen_free, vegan, gluten_free,
	non_gmo, updated_at`

type Repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListProducts(
	ctx context.Context,
	filter Filter,
) ([]Product, error) {
	var conditions []string
	var args []any

	if filter.AvailableOnly {
		conditions = append(conditions, "available = TRUE")
	}

	if len(filter.Categories) > 0 {
		conditions = append(conditions, "category IN (?)")
		args = append(args, filter.Categories)
	}

	if len(filter.ExcludeIDs) > 0 {
		conditions = append(conditions, "id NOT IN (?)")
		args = append(args, filter.ExcludeIDs)
	}

	query := "SELECT" + productColumns + "\n\tFROM products"
	if len(conditions) > 0 {
		query += "\n\tWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\n\tORDER BY id"

	if len(args) > 0 {
		expanded, expandedArgs, err := sqlx.In(query, args...)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		query, args = expanded, expandedArgs
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	var products []Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	out := products[:0]
	for i := range products {
		if err := products[i].Validate(); err != nil {
			slog.Warn("skipping invalid catalog row",
				"product_id", products[i].ID,
				"error", err,
			)
			continue
		}
		out = append(out, products[i])
	}

	return out, nil
}

func (r *Repository) MarkUnavailable(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`
		UPDATE products
		SET available = FALSE, updated_at = NOW()
		WHERE id IN (?) AND available = TRUE`, ids)
	if err != nil {
		return fmt.Errorf("mark unavailable: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		return fmt.Errorf("mark unavailable: %w", err)
	}

	return nil
}

var (
	_ Provider           = (*Repository)(nil)
	_ AvailabilityMarker = (*Repository)(nil)
)
