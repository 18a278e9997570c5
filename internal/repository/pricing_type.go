package repository

import (
	"context"
	"database/sql"

	"insurance-pricing-service/internal/entity"
)

// PricingTypeRepository stores the pricing type catalog. The catalog is
// small and global, so it always lives on a single database.
type PricingTypeRepository struct {
	db *sql.DB
}

func NewPricingTypeRepository(db *sql.DB) *PricingTypeRepository {
	return &PricingTypeRepository{db}
}

// ListPricingTypes returns all pricing types in catalog order.
func (r *PricingTypeRepository) ListPricingTypes(ctx context.Context) ([]entity.PricingTypeCategory, error) {
	query := `SELECT id, name, description, strategy FROM pricing_types ORDER BY sort_order, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []entity.PricingTypeCategory
	for rows.Next() {
		var (
			category entity.PricingTypeCategory
			strategy string
		)
		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &strategy); err != nil {
			return nil, err
		}
		category.Strategy = entity.Strategy(strategy)
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// UpsertPricingType inserts the category or updates it in place.
// inserted reports which of the two happened.
func (r *PricingTypeRepository) UpsertPricingType(ctx context.Context, category entity.PricingTypeCategory, sortOrder int) (inserted bool, err error) {
	query := `INSERT INTO pricing_types (id, name, description, strategy, sort_order) VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE name = VALUES(name), description = VALUES(description), strategy = VALUES(strategy), sort_order = VALUES(sort_order)`
	res, err := r.db.ExecContext(ctx, query, category.ID, category.Name, category.Description, string(category.Strategy), sortOrder)
	if err != nil {
		return false, err
	}

	// MySQL reports 1 affected row for an insert, 2 for an update and 0 for an unchanged row.
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
