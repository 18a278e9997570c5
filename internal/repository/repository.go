package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"insurance-pricing-service/internal/entity"
	"insurance-pricing-service/internal/sharding"
)

// PricingRepository stores pricing configurations, sharded by company.
type PricingRepository struct {
	dbShards []*sql.DB
	router   *sharding.ShardRouter
}

func NewPricingRepository(dbShards []*sql.DB, router *sharding.ShardRouter) *PricingRepository {
	return &PricingRepository{dbShards, router}
}

func (r *PricingRepository) shard(companyID string) *sql.DB {
	return r.dbShards[r.router.GetShard(companyID)]
}

// UpsertConfiguration replaces the configuration for its (company, pricing type) key.
// Rules of a previous configuration never survive.
func (r *PricingRepository) UpsertConfiguration(ctx context.Context, config *entity.PricingConfiguration) error {
	db := r.shard(config.CompanyID)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	configQuery := `INSERT INTO pricing_configurations (company_id, pricing_type_id, strategy, fixed_amount, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE strategy = VALUES(strategy), fixed_amount = VALUES(fixed_amount), updated_at = VALUES(updated_at)`
	_, err = tx.ExecContext(ctx, configQuery, config.CompanyID, config.PricingTypeID, string(config.Pricing.Strategy()), entity.FixedAmountOf(config.Pricing), config.UpdatedAt)
	if err != nil {
		tx.Rollback()
		return err
	}

	deleteQuery := `DELETE FROM pricing_rules WHERE company_id = ? AND pricing_type_id = ?`
	_, err = tx.ExecContext(ctx, deleteQuery, config.CompanyID, config.PricingTypeID)
	if err != nil {
		tx.Rollback()
		return err
	}

	if rules := config.Rules(); len(rules) > 0 {
		// Insert rules with batch
		ruleQuery := `INSERT INTO pricing_rules (company_id, pricing_type_id, position, vehicle_type, driver_age_group, offer_amount_min, offer_amount_max, price) VALUES `
		placeholders := make([]string, len(rules))
		values := make([]interface{}, 0, len(rules)*8)
		for i, rule := range rules {
			placeholders[i] = "(?, ?, ?, ?, ?, ?, ?, ?)"
			values = append(values, config.CompanyID, config.PricingTypeID, i, string(rule.VehicleType), string(rule.DriverAgeGroup), rule.OfferAmountMin, rule.OfferAmountMax, rule.Price)
		}
		_, err = tx.ExecContext(ctx, ruleQuery+strings.Join(placeholders, ","), values...)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// DeleteConfiguration removes a configuration. Deleting a missing one is not an error.
func (r *PricingRepository) DeleteConfiguration(ctx context.Context, companyID, pricingTypeID string) error {
	db := r.shard(companyID)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM pricing_rules WHERE company_id = ? AND pricing_type_id = ?`, companyID, pricingTypeID)
	if err != nil {
		tx.Rollback()
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM pricing_configurations WHERE company_id = ? AND pricing_type_id = ?`, companyID, pricingTypeID)
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// GetConfiguration fetches one configuration. found is false when the
// company has not configured the pricing type.
func (r *PricingRepository) GetConfiguration(ctx context.Context, companyID, pricingTypeID string) (*entity.PricingConfiguration, bool, error) {
	db := r.shard(companyID)

	query := `SELECT strategy, fixed_amount, updated_at FROM pricing_configurations WHERE company_id = ? AND pricing_type_id = ?`
	var (
		strategy    string
		fixedAmount decimal.NullDecimal
		updatedAt   time.Time
	)
	err := db.QueryRowContext(ctx, query, companyID, pricingTypeID).Scan(&strategy, &fixedAmount, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rules []entity.PricingRule
	if entity.Strategy(strategy) == entity.StrategyMatrix {
		ruleQuery := `SELECT pricing_type_id, vehicle_type, driver_age_group, offer_amount_min, offer_amount_max, price
			FROM pricing_rules WHERE company_id = ? AND pricing_type_id = ? ORDER BY position`
		byType, err := queryRules(ctx, db, ruleQuery, companyID, pricingTypeID)
		if err != nil {
			return nil, false, err
		}
		rules = byType[pricingTypeID]
	}

	pricing, err := entity.NewPricing(entity.Strategy(strategy), fixedAmount, rules)
	if err != nil {
		return nil, false, err
	}
	return &entity.PricingConfiguration{
		CompanyID:     companyID,
		PricingTypeID: pricingTypeID,
		Pricing:       pricing,
		UpdatedAt:     updatedAt,
	}, true, nil
}

// ListConfigurations returns every configuration of a company ordered by pricing type.
func (r *PricingRepository) ListConfigurations(ctx context.Context, companyID string) ([]*entity.PricingConfiguration, error) {
	db := r.shard(companyID)

	query := `SELECT pricing_type_id, strategy, fixed_amount, updated_at FROM pricing_configurations WHERE company_id = ? ORDER BY pricing_type_id`
	rows, err := db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type header struct {
		pricingTypeID string
		strategy      string
		fixedAmount   decimal.NullDecimal
		updatedAt     time.Time
	}
	var headers []header
	for rows.Next() {
		var h header
		if err := rows.Scan(&h.pricingTypeID, &h.strategy, &h.fixedAmount, &h.updatedAt); err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return []*entity.PricingConfiguration{}, nil
	}

	ruleQuery := `SELECT pricing_type_id, vehicle_type, driver_age_group, offer_amount_min, offer_amount_max, price
		FROM pricing_rules WHERE company_id = ? ORDER BY pricing_type_id, position`
	byType, err := queryRules(ctx, db, ruleQuery, companyID)
	if err != nil {
		return nil, err
	}

	configs := make([]*entity.PricingConfiguration, 0, len(headers))
	for _, h := range headers {
		pricing, err := entity.NewPricing(entity.Strategy(h.strategy), h.fixedAmount, byType[h.pricingTypeID])
		if err != nil {
			return nil, err
		}
		configs = append(configs, &entity.PricingConfiguration{
			CompanyID:     companyID,
			PricingTypeID: h.pricingTypeID,
			Pricing:       pricing,
			UpdatedAt:     h.updatedAt,
		})
	}
	return configs, nil
}

func queryRules(ctx context.Context, db *sql.DB, query string, args ...interface{}) (map[string][]entity.PricingRule, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byType := make(map[string][]entity.PricingRule)
	for rows.Next() {
		var (
			pricingTypeID string
			rule          entity.PricingRule
			vehicleType   string
			ageGroup      string
		)
		if err := rows.Scan(&pricingTypeID, &vehicleType, &ageGroup, &rule.OfferAmountMin, &rule.OfferAmountMax, &rule.Price); err != nil {
			return nil, err
		}
		rule.VehicleType = entity.VehicleType(vehicleType)
		rule.DriverAgeGroup = entity.DriverAgeGroup(ageGroup)
		byType[pricingTypeID] = append(byType[pricingTypeID], rule)
	}
	return byType, rows.Err()
}
