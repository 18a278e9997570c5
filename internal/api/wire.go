package api

import (
	"time"

	"github.com/shopspring/decimal"

	"insurance-pricing-service/internal/entity"
)

// Wire shapes. The dashboard sends snake_case rules wrapped in
// {"rules": {"matrix": [...]}} or {"rules": {"fixedAmount": n}}; an empty
// {"rules": {}} means manual entry.

type RuleJSON struct {
	VehicleType    string           `json:"vehicle_type"`
	DriverAgeGroup string           `json:"driver_age_group"`
	OfferAmountMin *decimal.Decimal `json:"offer_amount_min"`
	OfferAmountMax *decimal.Decimal `json:"offer_amount_max"`
	Price          *decimal.Decimal `json:"price"`
}

type RulesJSON struct {
	Matrix      []RuleJSON       `json:"matrix,omitempty"`
	FixedAmount *decimal.Decimal `json:"fixedAmount,omitempty"`
}

type UpsertPricingRequest struct {
	PricingTypeID string    `json:"pricing_type_id"`
	Rules         RulesJSON `json:"rules"`
}

type PricingJSON struct {
	CompanyID     string          `json:"company_id"`
	PricingTypeID string          `json:"pricing_type_id"`
	Strategy      entity.Strategy `json:"strategy"`
	Rules         RulesJSON       `json:"rules"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type PricingTypeJSON struct {
	ID                   string          `json:"_id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	RequiresPricingTable bool            `json:"requiresPricingTable"`
	Strategy             entity.Strategy `json:"strategy"`
}

type ResolutionJSON struct {
	Matched     bool                 `json:"matched"`
	Price       *decimal.Decimal     `json:"price,omitempty"`
	RuleIndex   *int                 `json:"rule_index,omitempty"`
	Reason      entity.NoMatchReason `json:"reason,omitempty"`
	OfferAmount *decimal.Decimal     `json:"offer_amount,omitempty"`
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

// Draft converts the request body into an unvalidated draft.
func (r RulesJSON) Draft() entity.Draft {
	draft := entity.Draft{FixedAmount: nullDecimal(r.FixedAmount)}
	if r.Matrix != nil {
		draft.Rules = make([]entity.RuleDraft, len(r.Matrix))
		for i, rule := range r.Matrix {
			draft.Rules[i] = entity.RuleDraft{
				VehicleType:    entity.VehicleType(rule.VehicleType),
				DriverAgeGroup: entity.DriverAgeGroup(rule.DriverAgeGroup),
				OfferAmountMin: nullDecimal(rule.OfferAmountMin),
				OfferAmountMax: nullDecimal(rule.OfferAmountMax),
				Price:          nullDecimal(rule.Price),
			}
		}
	}
	return draft
}

func NewRulesJSON(p entity.Pricing) RulesJSON {
	switch v := p.(type) {
	case entity.FixedAmount:
		amount := v.Amount
		return RulesJSON{FixedAmount: &amount}
	case entity.Matrix:
		rules := make([]RuleJSON, len(v.Rules))
		for i, rule := range v.Rules {
			rules[i] = RuleJSON{
				VehicleType:    string(rule.VehicleType),
				DriverAgeGroup: string(rule.DriverAgeGroup),
				OfferAmountMin: &rule.OfferAmountMin,
				OfferAmountMax: &rule.OfferAmountMax,
				Price:          &rule.Price,
			}
		}
		return RulesJSON{Matrix: rules}
	}
	return RulesJSON{}
}

func NewPricingJSON(c *entity.PricingConfiguration) PricingJSON {
	return PricingJSON{
		CompanyID:     c.CompanyID,
		PricingTypeID: c.PricingTypeID,
		Strategy:      c.Pricing.Strategy(),
		Rules:         NewRulesJSON(c.Pricing),
		UpdatedAt:     c.UpdatedAt,
	}
}

// Configuration converts a wire configuration back into the domain type.
func (p PricingJSON) Configuration() (*entity.PricingConfiguration, error) {
	draft := p.Rules.Draft()
	rules := make([]entity.PricingRule, len(draft.Rules))
	for i, r := range draft.Rules {
		rules[i] = r.Rule()
	}
	pricing, err := entity.NewPricing(p.Strategy, draft.FixedAmount, rules)
	if err != nil {
		return nil, err
	}
	return &entity.PricingConfiguration{
		CompanyID:     p.CompanyID,
		PricingTypeID: p.PricingTypeID,
		Pricing:       pricing,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

func NewPricingTypeJSON(c entity.PricingTypeCategory) PricingTypeJSON {
	return PricingTypeJSON{
		ID:                   c.ID,
		Name:                 c.Name,
		Description:          c.Description,
		RequiresPricingTable: c.RequiresPricingTable(),
		Strategy:             c.Strategy,
	}
}

func NewResolutionJSON(r entity.Resolution) ResolutionJSON {
	if !r.Matched {
		return ResolutionJSON{Reason: r.Reason, OfferAmount: r.OfferAmount}
	}
	out := ResolutionJSON{Matched: true, Price: &r.Price}
	if r.RuleIndex >= 0 {
		index := r.RuleIndex
		out.RuleIndex = &index
	}
	return out
}

// Resolution converts a wire result back into the domain type.
func (r ResolutionJSON) Resolution() entity.Resolution {
	if !r.Matched {
		return entity.Resolution{Reason: r.Reason, RuleIndex: -1, OfferAmount: r.OfferAmount}
	}
	res := entity.Resolution{Matched: true, RuleIndex: -1}
	if r.Price != nil {
		res.Price = *r.Price
	}
	if r.RuleIndex != nil {
		res.RuleIndex = *r.RuleIndex
	}
	return res
}
