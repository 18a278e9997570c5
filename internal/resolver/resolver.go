package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"insurance-pricing-service/internal/entity"
)

// StrategySource maps pricing types to strategies. *catalog.Catalog satisfies it.
type StrategySource interface {
	StrategyFor(pricingTypeID string) (entity.Strategy, error)
}

// RoadServicePricer prices road service add-ons. It returns
// entity.ErrRoadServiceNotFound when the company has no such service.
type RoadServicePricer interface {
	RoadServicePrice(ctx context.Context, companyID, roadServiceID string, manufactureYear int) (decimal.Decimal, error)
}

type Resolver struct {
	strategies StrategySource
	roads      RoadServicePricer
}

func New(strategies StrategySource, roads RoadServicePricer) *Resolver {
	return &Resolver{strategies: strategies, roads: roads}
}

// Resolve prices a quote against a stored configuration. A quote nothing
// applies to is a Resolution with Matched false, not an error.
func (r *Resolver) Resolve(ctx context.Context, config *entity.PricingConfiguration, req entity.QuoteRequest) (entity.Resolution, error) {
	strategy, err := r.strategies.StrategyFor(config.PricingTypeID)
	if err != nil {
		return entity.Resolution{}, err
	}

	switch strategy {
	case entity.StrategyManualEntry:
		return entity.NoMatch(entity.ReasonRequiresManualEntry), nil
	case entity.StrategyExternalComputation:
		return r.roadService(ctx, config.CompanyID, req)
	}

	if config.Pricing == nil || config.Pricing.Strategy() != strategy {
		return entity.Resolution{}, fmt.Errorf("%w: %s/%s", entity.ErrStrategyMismatch, config.CompanyID, config.PricingTypeID)
	}

	switch p := config.Pricing.(type) {
	case entity.FixedAmount:
		return entity.ResolvedPrice(p.Amount, -1), nil
	case entity.Matrix:
		return resolveMatrix(p.Rules, req), nil
	}
	return entity.Resolution{}, fmt.Errorf("%w: %q", entity.ErrUnknownStrategy, strategy)
}

// ResolveUnconfigured prices a quote for a company that has no stored
// configuration for the pricing type.
func (r *Resolver) ResolveUnconfigured(ctx context.Context, req entity.QuoteRequest) (entity.Resolution, error) {
	strategy, err := r.strategies.StrategyFor(req.PricingTypeID)
	if err != nil {
		return entity.Resolution{}, err
	}
	switch strategy {
	case entity.StrategyManualEntry:
		return entity.NoMatch(entity.ReasonRequiresManualEntry), nil
	case entity.StrategyExternalComputation:
		return r.roadService(ctx, req.CompanyID, req)
	}
	return entity.NoMatch(entity.ReasonNotConfigured), nil
}

// First matching rule in stored order wins.
func resolveMatrix(rules []entity.PricingRule, req entity.QuoteRequest) entity.Resolution {
	for i, rule := range rules {
		if rule.Covers(req.VehicleType, req.DriverAgeGroup, req.OfferAmount) {
			return entity.ResolvedPrice(rule.Price, i)
		}
	}
	return entity.NoBandCovers(req.OfferAmount)
}

func (r *Resolver) roadService(ctx context.Context, companyID string, req entity.QuoteRequest) (entity.Resolution, error) {
	if r.roads == nil || req.RoadServiceID == "" {
		return entity.NoMatch(entity.ReasonNoRoadService), nil
	}
	// The price depends on the vehicle's age, so there is nothing to price without it.
	if req.ManufactureYear <= 0 {
		return entity.NoMatch(entity.ReasonManufactureYear), nil
	}
	price, err := r.roads.RoadServicePrice(ctx, companyID, req.RoadServiceID, req.ManufactureYear)
	if errors.Is(err, entity.ErrRoadServiceNotFound) {
		return entity.NoMatch(entity.ReasonNoRoadService), nil
	}
	if err != nil {
		return entity.Resolution{}, err
	}
	return entity.ResolvedPrice(price, -1), nil
}
