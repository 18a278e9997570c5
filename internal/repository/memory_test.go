package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance-pricing-service/internal/entity"
)

func TestMemoryStoreDoesNotShareRules(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	rules := []entity.PricingRule{{VehicleType: entity.VehicleCar, Price: d(1)}}

	require.NoError(t, s.UpsertConfiguration(ctx, &entity.PricingConfiguration{
		CompanyID: "acme", PricingTypeID: "third_party", Pricing: entity.Matrix{Rules: rules},
	}))
	rules[0].Price = d(999)

	config, found, err := s.GetConfiguration(ctx, "acme", "third_party")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, config.Rules()[0].Price.Equal(d(1)))
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.GetConfiguration(ctx, "acme", "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStorePricingTypes(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	inserted, err := s.UpsertPricingType(ctx, entity.PricingTypeCategory{ID: "b", Strategy: entity.StrategyMatrix}, 1)
	require.NoError(t, err)
	assert.True(t, inserted)
	_, err = s.UpsertPricingType(ctx, entity.PricingTypeCategory{ID: "a", Strategy: entity.StrategyMatrix}, 0)
	require.NoError(t, err)
	inserted, err = s.UpsertPricingType(ctx, entity.PricingTypeCategory{ID: "b", Strategy: entity.StrategyFixedAmount}, 1)
	require.NoError(t, err)
	assert.False(t, inserted)

	categories, err := s.ListPricingTypes(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "a", categories[0].ID)
	assert.Equal(t, entity.StrategyFixedAmount, categories[1].Strategy)
}
