package service

import (
	"context"
	"time"

	"insurance-pricing-service/internal/catalog"
	"insurance-pricing-service/internal/entity"
	"insurance-pricing-service/internal/events"
	"insurance-pricing-service/internal/resolver"
	"insurance-pricing-service/internal/validator"
)

// PricingService manages company pricing configurations and prices quotes.
type PricingService struct {
	store     ConfigurationStore
	cache     ConfigurationCache
	catalog   *catalog.Catalog
	resolver  *resolver.Resolver
	publisher EventPublisher
	now       func() time.Time
}

// NewPricingService creates a new instance of PricingService. cache and publisher may be nil.
func NewPricingService(store ConfigurationStore, cache ConfigurationCache, catalog *catalog.Catalog, resolver *resolver.Resolver, publisher EventPublisher) *PricingService {
	return &PricingService{
		store:     store,
		cache:     cache,
		catalog:   catalog,
		resolver:  resolver,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Upsert validates the draft and replaces the whole configuration for the key.
func (s *PricingService) Upsert(ctx context.Context, companyID, pricingTypeID string, draft entity.Draft) (*entity.PricingConfiguration, error) {
	strategy, err := s.catalog.StrategyFor(pricingTypeID)
	if err != nil {
		return nil, err
	}

	pricing, err := validator.Build(strategy, draft)
	if err != nil {
		logger.Warn().Err(err).Msgf("Rejected pricing for company %s, pricing type %s", companyID, pricingTypeID)
		return nil, err
	}

	config := &entity.PricingConfiguration{
		CompanyID:     companyID,
		PricingTypeID: pricingTypeID,
		Pricing:       pricing,
		UpdatedAt:     s.now().Truncate(time.Second),
	}
	if err := s.store.UpsertConfiguration(ctx, config); err != nil {
		logger.Error().Err(err).Msgf("Error saving pricing for company %s, pricing type %s", companyID, pricingTypeID)
		return nil, err
	}

	s.refresh(ctx, config)
	publish(ctx, s.publisher, events.Event{Type: events.PricingUpserted, CompanyID: companyID, PricingTypeID: pricingTypeID})
	return config, nil
}

// Remove deletes the configuration. Removing a missing configuration succeeds.
func (s *PricingService) Remove(ctx context.Context, companyID, pricingTypeID string) error {
	if err := s.store.DeleteConfiguration(ctx, companyID, pricingTypeID); err != nil {
		logger.Error().Err(err).Msgf("Error deleting pricing for company %s, pricing type %s", companyID, pricingTypeID)
		return err
	}

	s.invalidate(ctx, companyID, pricingTypeID)
	publish(ctx, s.publisher, events.Event{Type: events.PricingRemoved, CompanyID: companyID, PricingTypeID: pricingTypeID})
	return nil
}

// Fetch returns found false when the company has not configured the pricing type yet.
func (s *PricingService) Fetch(ctx context.Context, companyID, pricingTypeID string) (*entity.PricingConfiguration, bool, error) {
	if s.cache != nil {
		config, found, err := s.cache.Get(ctx, companyID, pricingTypeID)
		if err != nil {
			logger.Warn().Err(err).Msgf("Error reading pricing %s/%s from cache", companyID, pricingTypeID)
		} else if found {
			return config, true, nil
		}
	}

	config, found, err := s.store.GetConfiguration(ctx, companyID, pricingTypeID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting pricing for company %s, pricing type %s", companyID, pricingTypeID)
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	if s.cache != nil {
		if err := s.cache.Add(ctx, config); err != nil {
			logger.Warn().Err(err).Msgf("Error setting pricing %s/%s in cache", companyID, pricingTypeID)
		}
	}
	return config, true, nil
}

func (s *PricingService) ListByCompany(ctx context.Context, companyID string) ([]*entity.PricingConfiguration, error) {
	configs, err := s.store.ListConfigurations(ctx, companyID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error listing pricing for company %s", companyID)
		return nil, err
	}
	return configs, nil
}

// Calculate prices a quote against the company's stored configuration.
func (s *PricingService) Calculate(ctx context.Context, req entity.QuoteRequest) (entity.Resolution, error) {
	strategy, err := s.catalog.StrategyFor(req.PricingTypeID)
	if err != nil {
		return entity.Resolution{}, err
	}

	// These two never read a stored configuration.
	if strategy == entity.StrategyManualEntry || strategy == entity.StrategyExternalComputation {
		return s.resolver.ResolveUnconfigured(ctx, req)
	}

	config, found, err := s.Fetch(ctx, req.CompanyID, req.PricingTypeID)
	if err != nil {
		return entity.Resolution{}, err
	}
	if !found {
		return s.resolver.ResolveUnconfigured(ctx, req)
	}

	resolution, err := s.resolver.Resolve(ctx, config, req)
	if err != nil {
		logger.Error().Err(err).Msgf("Error resolving price for company %s, pricing type %s", req.CompanyID, req.PricingTypeID)
		return entity.Resolution{}, err
	}
	return resolution, nil
}

// refresh overwrites the cached entry with a just-stored configuration.
func (s *PricingService) refresh(ctx context.Context, config *entity.PricingConfiguration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, config); err != nil {
		logger.Error().Err(err).Msgf("Error caching pricing %s/%s", config.CompanyID, config.PricingTypeID)
		s.invalidate(ctx, config.CompanyID, config.PricingTypeID)
	}
}

func (s *PricingService) invalidate(ctx context.Context, companyID, pricingTypeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, companyID, pricingTypeID); err != nil {
		logger.Error().Err(err).Msgf("Error deleting pricing %s/%s from cache", companyID, pricingTypeID)
	}
}
