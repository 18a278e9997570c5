package validator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"insurance-pricing-service/internal/entity"
)

const (
	MsgRequiredPositive = "required positive value"
	MsgRuleRequired     = "at least one rule required"
	MsgAllFields        = "all fields required"
	MsgVehicleType      = "invalid vehicle type"
	MsgDriverAgeGroup   = "invalid driver age group"
	MsgNegativePrice    = "price must not be negative"
	MsgMinBelowMax      = "min must be less than max"
	MsgPrecision        = "at most two decimal places"
)

// Amounts are stored as DECIMAL(15,2).
const amountPlaces = 2

func withinPrecision(amounts ...decimal.Decimal) bool {
	for _, a := range amounts {
		if !a.Equal(a.Round(amountPlaces)) {
			return false
		}
	}
	return true
}

// FieldError points at the part of a draft that was rejected.
// Index is the rule position for rule errors and -1 otherwise.
type FieldError struct {
	Field   string `json:"field"`
	Index   int    `json:"index"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Result is Valid when it carries no field errors.
type Result struct {
	Errors []FieldError
}

func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Fields: r.Errors}
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "invalid pricing configuration: " + strings.Join(msgs, "; ")
}

func invalid(field string, index int, msg string) Result {
	return Result{Errors: []FieldError{{Field: field, Index: index, Message: msg}}}
}

// Validate checks a draft against the rules of its strategy. Matrix drafts
// stop at the first bad rule. A non-nil error means the draft cannot be
// validated here at all.
func Validate(strategy entity.Strategy, draft entity.Draft) (Result, error) {
	switch strategy {
	case entity.StrategyManualEntry:
		return Result{}, nil
	case entity.StrategyExternalComputation:
		return Result{}, entity.ErrWrongSubsystem
	case entity.StrategyFixedAmount:
		if !draft.FixedAmount.Valid || !draft.FixedAmount.Decimal.IsPositive() {
			return invalid("fixedAmount", -1, MsgRequiredPositive), nil
		}
		if !withinPrecision(draft.FixedAmount.Decimal) {
			return invalid("fixedAmount", -1, MsgPrecision), nil
		}
		return Result{}, nil
	case entity.StrategyMatrix:
		return validateMatrix(draft.Rules), nil
	}
	return Result{}, fmt.Errorf("%w: %q", entity.ErrUnknownStrategy, strategy)
}

func validateMatrix(rules []entity.RuleDraft) Result {
	if len(rules) == 0 {
		return invalid("rules", -1, MsgRuleRequired)
	}
	for i, rule := range rules {
		field := fmt.Sprintf("rule[%d]", i)
		switch {
		case !rule.Complete():
			return invalid(field, i, MsgAllFields)
		case !rule.VehicleType.Valid():
			return invalid(field, i, MsgVehicleType)
		case !rule.DriverAgeGroup.Valid():
			return invalid(field, i, MsgDriverAgeGroup)
		case rule.Price.Decimal.IsNegative():
			return invalid(field, i, MsgNegativePrice)
		case !withinPrecision(rule.OfferAmountMin.Decimal, rule.OfferAmountMax.Decimal, rule.Price.Decimal):
			return invalid(field, i, MsgPrecision)
		case rule.OfferAmountMin.Decimal.GreaterThanOrEqual(rule.OfferAmountMax.Decimal):
			return invalid(field, i, MsgMinBelowMax)
		}
	}
	return Result{}
}

// Build validates the draft and turns it into stored pricing.
// Rules or amounts attached to a manual entry draft are dropped.
func Build(strategy entity.Strategy, draft entity.Draft) (entity.Pricing, error) {
	result, err := Validate(strategy, draft)
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	switch strategy {
	case entity.StrategyFixedAmount:
		return entity.FixedAmount{Amount: draft.FixedAmount.Decimal}, nil
	case entity.StrategyMatrix:
		rules := make([]entity.PricingRule, len(draft.Rules))
		for i, r := range draft.Rules {
			rules[i] = r.Rule()
		}
		return entity.Matrix{Rules: rules}, nil
	default:
		return entity.ManualEntry{}, nil
	}
}
