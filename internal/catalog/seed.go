package catalog

import "insurance-pricing-service/internal/entity"

// DefaultCategories are the standard pricing types every installation starts with.
func DefaultCategories() []entity.PricingTypeCategory {
	return []entity.PricingTypeCategory{
		{
			ID:          "compulsory",
			Name:        "Compulsory Insurance",
			Description: "Mandatory motor insurance charged at a single fixed amount",
			Strategy:    entity.StrategyFixedAmount,
		},
		{
			ID:          "third_party",
			Name:        "Third Party Insurance",
			Description: "Third party liability priced by vehicle type, driver age and vehicle value",
			Strategy:    entity.StrategyMatrix,
		},
		{
			ID:          "comprehensive",
			Name:        "Comprehensive Insurance",
			Description: "Full coverage priced by vehicle type, driver age and vehicle value",
			Strategy:    entity.StrategyMatrix,
		},
		{
			ID:          "road_service",
			Name:        "Road Service",
			Description: "Towing and roadside assistance priced by vehicle manufacture year",
			Strategy:    entity.StrategyExternalComputation,
		},
		{
			ID:          "accident_fee_waiver",
			Name:        "Accident Fee Waiver",
			Description: "Waiver of the accident fee, priced manually per policy",
			Strategy:    entity.StrategyManualEntry,
		},
	}
}
