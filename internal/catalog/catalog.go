package catalog

import (
	"fmt"
	"sync"

	"insurance-pricing-service/internal/entity"
)

// Catalog holds the known pricing types. It is safe for concurrent use.
type Catalog struct {
	mu         sync.RWMutex
	categories []entity.PricingTypeCategory
	byID       map[string]int
}

// New builds a catalog, keeping the given order.
func New(categories []entity.PricingTypeCategory) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Replace(categories); err != nil {
		return nil, err
	}
	return c, nil
}

// Replace swaps the whole content of the catalog. On error the catalog is left untouched.
func (c *Catalog) Replace(categories []entity.PricingTypeCategory) error {
	byID := make(map[string]int, len(categories))
	list := make([]entity.PricingTypeCategory, 0, len(categories))
	for _, category := range categories {
		if category.ID == "" {
			return fmt.Errorf("pricing type without identifier")
		}
		if _, ok := byID[category.ID]; ok {
			return fmt.Errorf("duplicate pricing type %q", category.ID)
		}
		if !category.Strategy.Valid() {
			return fmt.Errorf("pricing type %q: %w: %q", category.ID, entity.ErrUnknownStrategy, category.Strategy)
		}
		byID[category.ID] = len(list)
		list = append(list, category)
	}

	c.mu.Lock()
	c.categories = list
	c.byID = byID
	c.mu.Unlock()
	return nil
}

// ListCategories returns a copy of the categories in catalog order.
func (c *Catalog) ListCategories() []entity.PricingTypeCategory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]entity.PricingTypeCategory, len(c.categories))
	copy(out, c.categories)
	return out
}

// Category looks up a category by identifier.
func (c *Catalog) Category(pricingTypeID string) (entity.PricingTypeCategory, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[pricingTypeID]
	if !ok {
		return entity.PricingTypeCategory{}, fmt.Errorf("%w: %q", entity.ErrUnknownPricingType, pricingTypeID)
	}
	return c.categories[i], nil
}

func (c *Catalog) StrategyFor(pricingTypeID string) (entity.Strategy, error) {
	category, err := c.Category(pricingTypeID)
	if err != nil {
		return "", err
	}
	return category.Strategy, nil
}

// RequiresPricingTable tells the UI whether to show the matrix editor.
func (c *Catalog) RequiresPricingTable(pricingTypeID string) (bool, error) {
	category, err := c.Category(pricingTypeID)
	if err != nil {
		return false, err
	}
	return category.RequiresPricingTable(), nil
}
