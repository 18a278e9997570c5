package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RoadService is a company add-on (towing etc.) priced by vehicle age.
type RoadService struct {
	ID          uuid.UUID       `json:"_id"`
	CompanyID   string          `json:"company_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	NormalPrice decimal.Decimal `json:"normal_price"`
	OldCarPrice decimal.Decimal `json:"old_car_price"`
	CutoffYear  int             `json:"cutoff_year"` // cars built before this year pay OldCarPrice
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PriceFor picks the price for a vehicle manufactured in manufactureYear.
func (r RoadService) PriceFor(manufactureYear int) decimal.Decimal {
	if manufactureYear < r.CutoffYear {
		return r.OldCarPrice
	}
	return r.NormalPrice
}

/*
Mysql Schema:
CREATE TABLE road_services (
	id CHAR(36) PRIMARY KEY,
	company_id VARCHAR(64) NOT NULL,
	name VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	normal_price DECIMAL(15,2) NOT NULL,
	old_car_price DECIMAL(15,2) NOT NULL,
	cutoff_year INT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	INDEX company_idx (company_id)
);
*/
