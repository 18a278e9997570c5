package service

import (
	"context"

	"insurance-pricing-service/internal/catalog"
	"insurance-pricing-service/internal/entity"
	"insurance-pricing-service/internal/events"
)

// InitializeResult counts what the seed operation did.
type InitializeResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Total    int `json:"total"`
}

// PricingTypeService keeps the stored pricing types and the in-memory catalog in step.
type PricingTypeService struct {
	store     PricingTypeStore
	catalog   *catalog.Catalog
	seeds     []entity.PricingTypeCategory
	publisher EventPublisher
}

func NewPricingTypeService(store PricingTypeStore, catalog *catalog.Catalog, seeds []entity.PricingTypeCategory, publisher EventPublisher) *PricingTypeService {
	return &PricingTypeService{store: store, catalog: catalog, seeds: seeds, publisher: publisher}
}

// List returns the categories currently loaded in the catalog.
func (s *PricingTypeService) List(ctx context.Context) []entity.PricingTypeCategory {
	return s.catalog.ListCategories()
}

// Initialize inserts missing seed categories and updates existing ones.
// Running it again changes nothing but the counts.
func (s *PricingTypeService) Initialize(ctx context.Context) (InitializeResult, error) {
	var result InitializeResult
	for i, category := range s.seeds {
		inserted, err := s.store.UpsertPricingType(ctx, category, i)
		if err != nil {
			logger.Error().Err(err).Msgf("Error seeding pricing type %s", category.ID)
			return result, err
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	if err := s.Reload(ctx); err != nil {
		return result, err
	}
	result.Total = len(s.catalog.ListCategories())

	logger.Info().Msgf("Pricing types initialized: %d inserted, %d updated, %d total", result.Inserted, result.Updated, result.Total)
	publish(ctx, s.publisher, events.Event{Type: events.PricingTypeInitialized})
	return result, nil
}

// Reload replaces the catalog with what is stored.
func (s *PricingTypeService) Reload(ctx context.Context) error {
	categories, err := s.store.ListPricingTypes(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing pricing types")
		return err
	}
	if len(categories) == 0 {
		logger.Warn().Msg("No pricing types stored, keeping current catalog")
		return nil
	}
	if err := s.catalog.Replace(categories); err != nil {
		logger.Error().Err(err).Msg("Error reloading pricing type catalog")
		return err
	}
	return nil
}
