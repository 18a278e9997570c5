package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"insurance-pricing-service/internal/entity"
	"insurance-pricing-service/internal/sharding"
)

// RoadServiceRepository stores road service add-ons, sharded by company.
type RoadServiceRepository struct {
	dbShards []*sql.DB
	router   *sharding.ShardRouter
}

func NewRoadServiceRepository(dbShards []*sql.DB, router *sharding.ShardRouter) *RoadServiceRepository {
	return &RoadServiceRepository{dbShards, router}
}

func (r *RoadServiceRepository) shard(companyID string) *sql.DB {
	return r.dbShards[r.router.GetShard(companyID)]
}

const roadServiceColumns = `id, company_id, name, description, normal_price, old_car_price, cutoff_year, created_at, updated_at`

func scanRoadService(row interface{ Scan(...interface{}) error }) (*entity.RoadService, error) {
	var rs entity.RoadService
	err := row.Scan(&rs.ID, &rs.CompanyID, &rs.Name, &rs.Description, &rs.NormalPrice, &rs.OldCarPrice, &rs.CutoffYear, &rs.CreatedAt, &rs.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rs, nil
}

func (r *RoadServiceRepository) CreateRoadService(ctx context.Context, rs *entity.RoadService) error {
	query := `INSERT INTO road_services (` + roadServiceColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.shard(rs.CompanyID).ExecContext(ctx, query, rs.ID, rs.CompanyID, rs.Name, rs.Description, rs.NormalPrice, rs.OldCarPrice, rs.CutoffYear, rs.CreatedAt, rs.UpdatedAt)
	return err
}

func (r *RoadServiceRepository) UpdateRoadService(ctx context.Context, rs *entity.RoadService) error {
	query := `UPDATE road_services SET name = ?, description = ?, normal_price = ?, old_car_price = ?, cutoff_year = ?, updated_at = ?
		WHERE id = ? AND company_id = ?`
	_, err := r.shard(rs.CompanyID).ExecContext(ctx, query, rs.Name, rs.Description, rs.NormalPrice, rs.OldCarPrice, rs.CutoffYear, rs.UpdatedAt, rs.ID, rs.CompanyID)
	return err
}

func (r *RoadServiceRepository) DeleteRoadService(ctx context.Context, companyID string, id uuid.UUID) error {
	query := `DELETE FROM road_services WHERE id = ? AND company_id = ?`
	_, err := r.shard(companyID).ExecContext(ctx, query, id, companyID)
	return err
}

// GetRoadService returns entity.ErrRoadServiceNotFound when the company has no such service.
func (r *RoadServiceRepository) GetRoadService(ctx context.Context, companyID string, id uuid.UUID) (*entity.RoadService, error) {
	query := `SELECT ` + roadServiceColumns + ` FROM road_services WHERE id = ? AND company_id = ?`
	rs, err := scanRoadService(r.shard(companyID).QueryRowContext(ctx, query, id, companyID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrRoadServiceNotFound
	}
	return rs, err
}

func (r *RoadServiceRepository) ListRoadServices(ctx context.Context, companyID string) ([]*entity.RoadService, error) {
	query := `SELECT ` + roadServiceColumns + ` FROM road_services WHERE company_id = ? ORDER BY created_at, id`
	rows, err := r.shard(companyID).QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := []*entity.RoadService{}
	for rows.Next() {
		rs, err := scanRoadService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, rs)
	}
	return services, rows.Err()
}
