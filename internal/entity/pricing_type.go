package entity

// Strategy decides how a pricing type is configured and resolved.
type Strategy string

const (
	StrategyManualEntry         Strategy = "manual_entry"         // price typed by hand per transaction
	StrategyFixedAmount         Strategy = "fixed_amount"         // single stored amount
	StrategyMatrix              Strategy = "matrix"               // range rules by vehicle and driver age
	StrategyExternalComputation Strategy = "external_computation" // priced by the road service subsystem
)

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyManualEntry, StrategyFixedAmount, StrategyMatrix, StrategyExternalComputation:
		return true
	}
	return false
}

// PricingTypeCategory describes one kind of coverage a company can price.
type PricingTypeCategory struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Strategy    Strategy `json:"strategy"`
}

// RequiresPricingTable is true when the category is edited as a rule matrix.
func (c PricingTypeCategory) RequiresPricingTable() bool {
	return c.Strategy == StrategyMatrix
}

/*
Mysql Schema:
CREATE TABLE pricing_types (
	id VARCHAR(64) PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	strategy VARCHAR(32) NOT NULL,
	sort_order INT NOT NULL
);
*/
