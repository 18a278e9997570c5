package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"insurance-pricing-service/internal/entity"
)

// MemoryStore keeps everything in process memory. Used for local runs
// without MySQL and in handler tests.
type MemoryStore struct {
	mu           sync.RWMutex
	configs      map[string]entity.PricingConfiguration
	pricingTypes map[string]memoryPricingType
	roadServices map[uuid.UUID]entity.RoadService
}

type memoryPricingType struct {
	category  entity.PricingTypeCategory
	sortOrder int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		configs:      make(map[string]entity.PricingConfiguration),
		pricingTypes: make(map[string]memoryPricingType),
		roadServices: make(map[uuid.UUID]entity.RoadService),
	}
}

func configKey(companyID, pricingTypeID string) string {
	return companyID + "\x00" + pricingTypeID
}

// clone copies the rule slice so callers never share it with the store.
func clone(config entity.PricingConfiguration) *entity.PricingConfiguration {
	if m, ok := config.Pricing.(entity.Matrix); ok {
		config.Pricing = entity.Matrix{Rules: append([]entity.PricingRule(nil), m.Rules...)}
	}
	return &config
}

func (s *MemoryStore) UpsertConfiguration(ctx context.Context, config *entity.PricingConfiguration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[configKey(config.CompanyID, config.PricingTypeID)] = *clone(*config)
	return nil
}

func (s *MemoryStore) DeleteConfiguration(ctx context.Context, companyID, pricingTypeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.configs, configKey(companyID, pricingTypeID))
	return nil
}

func (s *MemoryStore) GetConfiguration(ctx context.Context, companyID, pricingTypeID string) (*entity.PricingConfiguration, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	config, ok := s.configs[configKey(companyID, pricingTypeID)]
	if !ok {
		return nil, false, nil
	}
	return clone(config), true, nil
}

func (s *MemoryStore) ListConfigurations(ctx context.Context, companyID string) ([]*entity.PricingConfiguration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	configs := []*entity.PricingConfiguration{}
	for _, config := range s.configs {
		if config.CompanyID == companyID {
			configs = append(configs, clone(config))
		}
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].PricingTypeID < configs[j].PricingTypeID })
	return configs, nil
}

func (s *MemoryStore) ListPricingTypes(ctx context.Context) ([]entity.PricingTypeCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := make([]memoryPricingType, 0, len(s.pricingTypes))
	for _, pt := range s.pricingTypes {
		stored = append(stored, pt)
	}
	sort.Slice(stored, func(i, j int) bool {
		if stored[i].sortOrder != stored[j].sortOrder {
			return stored[i].sortOrder < stored[j].sortOrder
		}
		return stored[i].category.ID < stored[j].category.ID
	})
	categories := make([]entity.PricingTypeCategory, len(stored))
	for i, pt := range stored {
		categories[i] = pt.category
	}
	return categories, nil
}

func (s *MemoryStore) UpsertPricingType(ctx context.Context, category entity.PricingTypeCategory, sortOrder int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.pricingTypes[category.ID]
	s.pricingTypes[category.ID] = memoryPricingType{category: category, sortOrder: sortOrder}
	return !exists, nil
}

func (s *MemoryStore) CreateRoadService(ctx context.Context, rs *entity.RoadService) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roadServices[rs.ID] = *rs
	return nil
}

func (s *MemoryStore) UpdateRoadService(ctx context.Context, rs *entity.RoadService) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.roadServices[rs.ID]; ok && existing.CompanyID == rs.CompanyID {
		s.roadServices[rs.ID] = *rs
	}
	return nil
}

func (s *MemoryStore) DeleteRoadService(ctx context.Context, companyID string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.roadServices[id]; ok && existing.CompanyID == companyID {
		delete(s.roadServices, id)
	}
	return nil
}

func (s *MemoryStore) GetRoadService(ctx context.Context, companyID string, id uuid.UUID) (*entity.RoadService, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs, ok := s.roadServices[id]
	if !ok || rs.CompanyID != companyID {
		return nil, entity.ErrRoadServiceNotFound
	}
	return &rs, nil
}

func (s *MemoryStore) ListRoadServices(ctx context.Context, companyID string) ([]*entity.RoadService, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	services := []*entity.RoadService{}
	for _, rs := range s.roadServices {
		if rs.CompanyID == companyID {
			rs := rs
			services = append(services, &rs)
		}
	}
	sort.Slice(services, func(i, j int) bool { return services[i].CreatedAt.Before(services[j].CreatedAt) })
	return services, nil
}
