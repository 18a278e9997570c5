package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"insurance-pricing-service/internal/entity"
	"insurance-pricing-service/internal/events"
)

// --- MOCKS ---

// MockConfigurationStore keeps configurations in memory.
type MockConfigurationStore struct {
	configs   map[string]*entity.PricingConfiguration
	ErrUpsert error
	ErrGet    error
	Gets      int
	// AfterGet runs once, after the next read has been served.
	AfterGet func()
}

func NewMockConfigurationStore() *MockConfigurationStore {
	return &MockConfigurationStore{configs: map[string]*entity.PricingConfiguration{}}
}

func storeKey(companyID, pricingTypeID string) string { return companyID + "/" + pricingTypeID }

func (m *MockConfigurationStore) UpsertConfiguration(ctx context.Context, config *entity.PricingConfiguration) error {
	if m.ErrUpsert != nil {
		return m.ErrUpsert
	}
	copied := *config
	m.configs[storeKey(config.CompanyID, config.PricingTypeID)] = &copied
	return nil
}

func (m *MockConfigurationStore) DeleteConfiguration(ctx context.Context, companyID, pricingTypeID string) error {
	delete(m.configs, storeKey(companyID, pricingTypeID))
	return nil
}

func (m *MockConfigurationStore) GetConfiguration(ctx context.Context, companyID, pricingTypeID string) (*entity.PricingConfiguration, bool, error) {
	m.Gets++
	if m.ErrGet != nil {
		return nil, false, m.ErrGet
	}
	config, ok := m.configs[storeKey(companyID, pricingTypeID)]
	if hook := m.AfterGet; hook != nil {
		m.AfterGet = nil
		hook()
	}
	return config, ok, nil
}

func (m *MockConfigurationStore) ListConfigurations(ctx context.Context, companyID string) ([]*entity.PricingConfiguration, error) {
	var out []*entity.PricingConfiguration
	for _, c := range m.configs {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

// MockCache records writes and invalidations.
type MockCache struct {
	entries map[string]*entity.PricingConfiguration
	Sets    []string
	Deleted []string
}

func NewMockCache() *MockCache {
	return &MockCache{entries: map[string]*entity.PricingConfiguration{}}
}

func (m *MockCache) Get(ctx context.Context, companyID, pricingTypeID string) (*entity.PricingConfiguration, bool, error) {
	c, ok := m.entries[storeKey(companyID, pricingTypeID)]
	return c, ok, nil
}

func (m *MockCache) Set(ctx context.Context, config *entity.PricingConfiguration) error {
	m.entries[storeKey(config.CompanyID, config.PricingTypeID)] = config
	m.Sets = append(m.Sets, storeKey(config.CompanyID, config.PricingTypeID))
	return nil
}

func (m *MockCache) Add(ctx context.Context, config *entity.PricingConfiguration) error {
	key := storeKey(config.CompanyID, config.PricingTypeID)
	if _, ok := m.entries[key]; !ok {
		m.entries[key] = config
	}
	return nil
}

func (m *MockCache) Cached(companyID, pricingTypeID string) *entity.PricingConfiguration {
	return m.entries[storeKey(companyID, pricingTypeID)]
}

func (m *MockCache) Delete(ctx context.Context, companyID, pricingTypeID string) error {
	delete(m.entries, storeKey(companyID, pricingTypeID))
	m.Deleted = append(m.Deleted, storeKey(companyID, pricingTypeID))
	return nil
}

type MockPublisher struct {
	mu     sync.Mutex
	Events []events.Event
	Err    error
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return m.Err
}

type MockPricingTypeStore struct {
	stored []entity.PricingTypeCategory
}

func (m *MockPricingTypeStore) ListPricingTypes(ctx context.Context) ([]entity.PricingTypeCategory, error) {
	return m.stored, nil
}

func (m *MockPricingTypeStore) UpsertPricingType(ctx context.Context, category entity.PricingTypeCategory, sortOrder int) (bool, error) {
	for i, c := range m.stored {
		if c.ID == category.ID {
			m.stored[i] = category
			return false, nil
		}
	}
	m.stored = append(m.stored, category)
	return true, nil
}

type MockRoadServiceStore struct {
	services map[uuid.UUID]*entity.RoadService
}

func NewMockRoadServiceStore() *MockRoadServiceStore {
	return &MockRoadServiceStore{services: map[uuid.UUID]*entity.RoadService{}}
}

func (m *MockRoadServiceStore) CreateRoadService(ctx context.Context, rs *entity.RoadService) error {
	copied := *rs
	m.services[rs.ID] = &copied
	return nil
}

func (m *MockRoadServiceStore) UpdateRoadService(ctx context.Context, rs *entity.RoadService) error {
	copied := *rs
	m.services[rs.ID] = &copied
	return nil
}

func (m *MockRoadServiceStore) DeleteRoadService(ctx context.Context, companyID string, id uuid.UUID) error {
	delete(m.services, id)
	return nil
}

func (m *MockRoadServiceStore) GetRoadService(ctx context.Context, companyID string, id uuid.UUID) (*entity.RoadService, error) {
	rs, ok := m.services[id]
	if !ok || rs.CompanyID != companyID {
		return nil, entity.ErrRoadServiceNotFound
	}
	return rs, nil
}

func (m *MockRoadServiceStore) ListRoadServices(ctx context.Context, companyID string) ([]*entity.RoadService, error) {
	out := []*entity.RoadService{}
	for _, rs := range m.services {
		if rs.CompanyID == companyID {
			out = append(out, rs)
		}
	}
	return out, nil
}
