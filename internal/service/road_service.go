package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"insurance-pricing-service/internal/entity"
	"insurance-pricing-service/internal/events"
)

// RoadServiceService manages road service add-ons and prices them.
type RoadServiceService struct {
	store     RoadServiceStore
	publisher EventPublisher
	now       func() time.Time
}

func NewRoadServiceService(store RoadServiceStore, publisher EventPublisher) *RoadServiceService {
	return &RoadServiceService{
		store:     store,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func validateRoadService(rs *entity.RoadService) error {
	switch {
	case rs.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidRoadService)
	case rs.NormalPrice.IsNegative() || rs.OldCarPrice.IsNegative():
		return fmt.Errorf("%w: prices must not be negative", ErrInvalidRoadService)
	case rs.CutoffYear <= 0:
		return fmt.Errorf("%w: cutoff year is required", ErrInvalidRoadService)
	}
	return nil
}

func (s *RoadServiceService) Create(ctx context.Context, rs *entity.RoadService) (*entity.RoadService, error) {
	if err := validateRoadService(rs); err != nil {
		return nil, err
	}
	rs.ID = uuid.New()
	rs.CreatedAt = s.now().Truncate(time.Second)
	rs.UpdatedAt = rs.CreatedAt

	if err := s.store.CreateRoadService(ctx, rs); err != nil {
		logger.Error().Err(err).Msgf("Error creating road service for company %s", rs.CompanyID)
		return nil, err
	}
	publish(ctx, s.publisher, events.Event{Type: events.RoadServiceChanged, CompanyID: rs.CompanyID})
	return rs, nil
}

func (s *RoadServiceService) Update(ctx context.Context, rs *entity.RoadService) (*entity.RoadService, error) {
	if err := validateRoadService(rs); err != nil {
		return nil, err
	}
	existing, err := s.store.GetRoadService(ctx, rs.CompanyID, rs.ID)
	if err != nil {
		return nil, err
	}
	rs.CreatedAt = existing.CreatedAt
	rs.UpdatedAt = s.now().Truncate(time.Second)

	if err := s.store.UpdateRoadService(ctx, rs); err != nil {
		logger.Error().Err(err).Msgf("Error updating road service %s", rs.ID)
		return nil, err
	}
	publish(ctx, s.publisher, events.Event{Type: events.RoadServiceChanged, CompanyID: rs.CompanyID})
	return rs, nil
}

// Delete is idempotent.
func (s *RoadServiceService) Delete(ctx context.Context, companyID string, id uuid.UUID) error {
	if err := s.store.DeleteRoadService(ctx, companyID, id); err != nil {
		logger.Error().Err(err).Msgf("Error deleting road service %s", id)
		return err
	}
	publish(ctx, s.publisher, events.Event{Type: events.RoadServiceChanged, CompanyID: companyID})
	return nil
}

func (s *RoadServiceService) Get(ctx context.Context, companyID string, id uuid.UUID) (*entity.RoadService, error) {
	return s.store.GetRoadService(ctx, companyID, id)
}

func (s *RoadServiceService) ListByCompany(ctx context.Context, companyID string) ([]*entity.RoadService, error) {
	services, err := s.store.ListRoadServices(ctx, companyID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error listing road services for company %s", companyID)
		return nil, err
	}
	return services, nil
}

// RoadServicePrice prices a road service for a vehicle's manufacture year.
func (s *RoadServiceService) RoadServicePrice(ctx context.Context, companyID, roadServiceID string, manufactureYear int) (decimal.Decimal, error) {
	id, err := uuid.Parse(roadServiceID)
	if err != nil {
		return decimal.Zero, entity.ErrRoadServiceNotFound
	}
	rs, err := s.store.GetRoadService(ctx, companyID, id)
	if err != nil {
		return decimal.Zero, err
	}
	return rs.PriceFor(manufactureYear), nil
}
