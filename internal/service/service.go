package service

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"insurance-pricing-service/internal/entity"
	"insurance-pricing-service/internal/events"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// ConfigurationStore persists pricing configurations.
type ConfigurationStore interface {
	UpsertConfiguration(ctx context.Context, config *entity.PricingConfiguration) error
	DeleteConfiguration(ctx context.Context, companyID, pricingTypeID string) error
	GetConfiguration(ctx context.Context, companyID, pricingTypeID string) (*entity.PricingConfiguration, bool, error)
	ListConfigurations(ctx context.Context, companyID string) ([]*entity.PricingConfiguration, error)
}

// ConfigurationCache is a read-through cache in front of ConfigurationStore.
type ConfigurationCache interface {
	Get(ctx context.Context, companyID, pricingTypeID string) (*entity.PricingConfiguration, bool, error)
	Set(ctx context.Context, config *entity.PricingConfiguration) error
	Add(ctx context.Context, config *entity.PricingConfiguration) error
	Delete(ctx context.Context, companyID, pricingTypeID string) error
}

type PricingTypeStore interface {
	ListPricingTypes(ctx context.Context) ([]entity.PricingTypeCategory, error)
	UpsertPricingType(ctx context.Context, category entity.PricingTypeCategory, sortOrder int) (bool, error)
}

type RoadServiceStore interface {
	CreateRoadService(ctx context.Context, rs *entity.RoadService) error
	UpdateRoadService(ctx context.Context, rs *entity.RoadService) error
	DeleteRoadService(ctx context.Context, companyID string, id uuid.UUID) error
	GetRoadService(ctx context.Context, companyID string, id uuid.UUID) (*entity.RoadService, error)
	ListRoadServices(ctx context.Context, companyID string) ([]*entity.RoadService, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// publish never fails the caller: the change is already stored.
func publish(ctx context.Context, publisher EventPublisher, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error().Err(err).Msgf("Error publishing %s event", event.Type)
	}
}
