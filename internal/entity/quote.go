package entity

import "github.com/shopspring/decimal"

// QuoteRequest asks for the premium of one pricing type at one company.
// ManufactureYear and RoadServiceID are only read for road service pricing.
type QuoteRequest struct {
	CompanyID       string          `json:"company_id"`
	PricingTypeID   string          `json:"pricing_type_id"`
	VehicleType     VehicleType     `json:"vehicle_type"`
	DriverAgeGroup  DriverAgeGroup  `json:"driver_age_group"`
	OfferAmount     decimal.Decimal `json:"offer_amount"`
	ManufactureYear int             `json:"manufacture_year,omitempty"`
	RoadServiceID   string          `json:"road_service_id,omitempty"`
}

type NoMatchReason string

const (
	ReasonRequiresManualEntry NoMatchReason = "requires_manual_entry"
	ReasonNoBandCovers        NoMatchReason = "no_band_covers"
	ReasonNotConfigured       NoMatchReason = "not_configured"
	ReasonNoRoadService       NoMatchReason = "no_road_service"
	ReasonManufactureYear     NoMatchReason = "manufacture_year_required"
)

// Resolution is the outcome of pricing a quote. When Matched is false,
// Reason says why no price applies.
type Resolution struct {
	Matched     bool
	Price       decimal.Decimal
	RuleIndex   int
	Reason      NoMatchReason
	OfferAmount *decimal.Decimal
}

// ResolvedPrice is a matched resolution. ruleIndex is -1 when no matrix rule was involved.
func ResolvedPrice(price decimal.Decimal, ruleIndex int) Resolution {
	return Resolution{Matched: true, Price: price, RuleIndex: ruleIndex}
}

func NoMatch(reason NoMatchReason) Resolution {
	return Resolution{Reason: reason, RuleIndex: -1}
}

// NoBandCovers records the offer amount no matrix band matched.
func NoBandCovers(offerAmount decimal.Decimal) Resolution {
	r := NoMatch(ReasonNoBandCovers)
	r.OfferAmount = &offerAmount
	return r
}
