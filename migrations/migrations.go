package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

var tables = []struct {
	name  string
	query string
}{
	{"pricing_types", `
		CREATE TABLE IF NOT EXISTS pricing_types (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			strategy VARCHAR(32) NOT NULL,
			sort_order INT NOT NULL
		);
	`},
	{"pricing_configurations", `
		CREATE TABLE IF NOT EXISTS pricing_configurations (
			company_id VARCHAR(64) NOT NULL,
			pricing_type_id VARCHAR(64) NOT NULL,
			strategy VARCHAR(32) NOT NULL,
			fixed_amount DECIMAL(15,2) NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (company_id, pricing_type_id)
		);
	`},
	{"pricing_rules", `
		CREATE TABLE IF NOT EXISTS pricing_rules (
			company_id VARCHAR(64) NOT NULL,
			pricing_type_id VARCHAR(64) NOT NULL,
			position INT NOT NULL,
			vehicle_type VARCHAR(32) NOT NULL,
			driver_age_group VARCHAR(16) NOT NULL,
			offer_amount_min DECIMAL(15,2) NOT NULL,
			offer_amount_max DECIMAL(15,2) NOT NULL,
			price DECIMAL(15,2) NOT NULL,
			PRIMARY KEY (company_id, pricing_type_id, position),
			FOREIGN KEY (company_id, pricing_type_id)
				REFERENCES pricing_configurations(company_id, pricing_type_id) ON DELETE CASCADE
		);
	`},
	{"road_services", `
		CREATE TABLE IF NOT EXISTS road_services (
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
	`},
}

// AutoMigrate creates every table on every shard if it does not exist.
// pricing_types is created on all shards but only the first one is used.
func AutoMigrate(retries int, dbs ...*sql.DB) error {
	for i, db := range dbs {
		for _, table := range tables {
			if err := execWithRetry(db, table.query, retries); err != nil {
				return fmt.Errorf("shard %d: create %s: %w", i, table.name, err)
			}
		}
	}
	return nil
}

func execWithRetry(db *sql.DB, query string, retries int) error {
	_, err := db.Exec(query)
	for i := 0; err != nil && i < retries; i++ {
		time.Sleep(1 * time.Second)
		_, err = db.Exec(query)
	}
	return err
}
