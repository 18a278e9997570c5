package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money goes over the wire as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type VehicleType string

const (
	VehicleCar               VehicleType = "car"
	VehicleBus               VehicleType = "bus"
	VehicleCommercialUnder4t VehicleType = "commercial_under_4t"
	VehicleCommercialOver4t  VehicleType = "commercial_over_4t"
	VehicleTaxi              VehicleType = "taxi"
)

func (v VehicleType) Valid() bool {
	switch v {
	case VehicleCar, VehicleBus, VehicleCommercialUnder4t, VehicleCommercialOver4t, VehicleTaxi:
		return true
	}
	return false
}

type DriverAgeGroup string

const (
	DriverUnder24 DriverAgeGroup = "under_24"
	DriverAbove24 DriverAgeGroup = "above_24"
)

func (g DriverAgeGroup) Valid() bool {
	return g == DriverUnder24 || g == DriverAbove24
}

// PricingRule is one row of a matrix configuration.
type PricingRule struct {
	VehicleType    VehicleType     `json:"vehicle_type"`
	DriverAgeGroup DriverAgeGroup  `json:"driver_age_group"`
	OfferAmountMin decimal.Decimal `json:"offer_amount_min"`
	OfferAmountMax decimal.Decimal `json:"offer_amount_max"`
	Price          decimal.Decimal `json:"price"`
}

// Covers reports whether the rule applies. Both band ends are inclusive.
func (r PricingRule) Covers(vehicleType VehicleType, ageGroup DriverAgeGroup, offerAmount decimal.Decimal) bool {
	return r.VehicleType == vehicleType &&
		r.DriverAgeGroup == ageGroup &&
		r.OfferAmountMin.LessThanOrEqual(offerAmount) &&
		offerAmount.LessThanOrEqual(r.OfferAmountMax)
}

// Pricing is the stored shape of a configuration. Exactly one of
// ManualEntry, FixedAmount, Matrix or ExternalComputation.
type Pricing interface {
	Strategy() Strategy
}

type ManualEntry struct{}

func (ManualEntry) Strategy() Strategy { return StrategyManualEntry }

type FixedAmount struct {
	Amount decimal.Decimal
}

func (FixedAmount) Strategy() Strategy { return StrategyFixedAmount }

type Matrix struct {
	Rules []PricingRule
}

func (Matrix) Strategy() Strategy { return StrategyMatrix }

type ExternalComputation struct{}

func (ExternalComputation) Strategy() Strategy { return StrategyExternalComputation }

// NewPricing rebuilds stored pricing from its flat form.
func NewPricing(strategy Strategy, fixedAmount decimal.NullDecimal, rules []PricingRule) (Pricing, error) {
	switch strategy {
	case StrategyManualEntry:
		return ManualEntry{}, nil
	case StrategyFixedAmount:
		return FixedAmount{Amount: fixedAmount.Decimal}, nil
	case StrategyMatrix:
		return Matrix{Rules: rules}, nil
	case StrategyExternalComputation:
		return ExternalComputation{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
}

// FixedAmountOf returns the stored amount of fixed pricing.
func FixedAmountOf(p Pricing) decimal.NullDecimal {
	if f, ok := p.(FixedAmount); ok {
		return decimal.NewNullDecimal(f.Amount)
	}
	return decimal.NullDecimal{}
}

// PricingConfiguration is the pricing a company holds for one pricing type.
// (CompanyID, PricingTypeID) is unique.
type PricingConfiguration struct {
	CompanyID     string
	PricingTypeID string
	Pricing       Pricing
	UpdatedAt     time.Time
}

// Rules returns the matrix rules, or nil for any other strategy.
func (c *PricingConfiguration) Rules() []PricingRule {
	if m, ok := c.Pricing.(Matrix); ok {
		return m.Rules
	}
	return nil
}

// RuleDraft is a rule as submitted by a client; any field may be missing.
type RuleDraft struct {
	VehicleType    VehicleType
	DriverAgeGroup DriverAgeGroup
	OfferAmountMin decimal.NullDecimal
	OfferAmountMax decimal.NullDecimal
	Price          decimal.NullDecimal
}

// Complete reports whether every field is present.
func (r RuleDraft) Complete() bool {
	return r.VehicleType != "" && r.DriverAgeGroup != "" &&
		r.OfferAmountMin.Valid && r.OfferAmountMax.Valid && r.Price.Valid
}

func (r RuleDraft) Rule() PricingRule {
	return PricingRule{
		VehicleType:    r.VehicleType,
		DriverAgeGroup: r.DriverAgeGroup,
		OfferAmountMin: r.OfferAmountMin.Decimal,
		OfferAmountMax: r.OfferAmountMax.Decimal,
		Price:          r.Price.Decimal,
	}
}

// Draft is an unvalidated configuration.
type Draft struct {
	FixedAmount decimal.NullDecimal
	Rules       []RuleDraft
}

/*
Mysql Schema:
CREATE TABLE pricing_configurations (
	company_id VARCHAR(64) NOT NULL,
	pricing_type_id VARCHAR(64) NOT NULL,
	strategy VARCHAR(32) NOT NULL,
	fixed_amount DECIMAL(15,2) NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (company_id, pricing_type_id)
);

CREATE TABLE pricing_rules (
	company_id VARCHAR(64) NOT NULL,
	pricing_type_id VARCHAR(64) NOT NULL,
	position INT NOT NULL,
	vehicle_type VARCHAR(32) NOT NULL,
	driver_age_group VARCHAR(16) NOT NULL,
	offer_amount_min DECIMAL(15,2) NOT NULL,
	offer_amount_max DECIMAL(15,2) NOT NULL,
	price DECIMAL(15,2) NOT NULL,
	PRIMARY KEY (company_id, pricing_type_id, position)
);
*/
