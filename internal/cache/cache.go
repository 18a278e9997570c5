package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"

	"insurance-pricing-service/internal/entity"
)

// ConfigurationCache keeps pricing configurations in Redis.
type ConfigurationCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewConfigurationCache(rdb *redis.Client, ttl time.Duration) *ConfigurationCache {
	return &ConfigurationCache{rdb: rdb, ttl: ttl}
}

// cachedConfiguration is the JSON form of entity.PricingConfiguration.
type cachedConfiguration struct {
	CompanyID     string               `json:"company_id"`
	PricingTypeID string               `json:"pricing_type_id"`
	Strategy      entity.Strategy      `json:"strategy"`
	FixedAmount   decimal.NullDecimal  `json:"fixed_amount"`
	Rules         []entity.PricingRule `json:"rules,omitempty"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func Key(companyID, pricingTypeID string) string {
	return fmt.Sprintf("pricing:%s:%s", companyID, pricingTypeID)
}

// Get returns found false on a cache miss.
func (c *ConfigurationCache) Get(ctx context.Context, companyID, pricingTypeID string) (*entity.PricingConfiguration, bool, error) {
	data, err := c.rdb.Get(ctx, Key(companyID, pricingTypeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	config, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return config, true, nil
}

func (c *ConfigurationCache) Set(ctx context.Context, config *entity.PricingConfiguration) error {
	data, err := encode(config)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, Key(config.CompanyID, config.PricingTypeID), data, c.ttl).Err()
}

// Add stores config only when the key is absent, so a read-through fill never
// overwrites a newer configuration written by Set.
func (c *ConfigurationCache) Add(ctx context.Context, config *entity.PricingConfiguration) error {
	data, err := encode(config)
	if err != nil {
		return err
	}
	return c.rdb.SetNX(ctx, Key(config.CompanyID, config.PricingTypeID), data, c.ttl).Err()
}

func (c *ConfigurationCache) Delete(ctx context.Context, companyID, pricingTypeID string) error {
	return c.rdb.Del(ctx, Key(companyID, pricingTypeID)).Err()
}

func encode(config *entity.PricingConfiguration) ([]byte, error) {
	return json.Marshal(cachedConfiguration{
		CompanyID:     config.CompanyID,
		PricingTypeID: config.PricingTypeID,
		Strategy:      config.Pricing.Strategy(),
		FixedAmount:   entity.FixedAmountOf(config.Pricing),
		Rules:         config.Rules(),
		UpdatedAt:     config.UpdatedAt,
	})
}

func decode(data []byte) (*entity.PricingConfiguration, error) {
	var cached cachedConfiguration
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("could not unmarshal cached pricing: %w", err)
	}
	pricing, err := entity.NewPricing(cached.Strategy, cached.FixedAmount, cached.Rules)
	if err != nil {
		return nil, err
	}
	return &entity.PricingConfiguration{
		CompanyID:     cached.CompanyID,
		PricingTypeID: cached.PricingTypeID,
		Pricing:       pricing,
		UpdatedAt:     cached.UpdatedAt,
	}, nil
}
