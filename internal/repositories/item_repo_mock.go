package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"tokodash/internal/models"
)

// MockItemRepository is an in-memory implementation of ItemRepository.
type MockItemRepository struct {
	items  map[int64]models.Item
	nextID int64
	mu     sync.RWMutex
}

// NewMockItemRepository creates a new instance of MockItemRepository.
func NewMockItemRepository() *MockItemRepository {
	return &MockItemRepository{
		items: make(map[int64]models.Item),
	}
}

// ListByStore returns all items of a store ordered by identifier.
func (r *MockItemRepository) ListByStore(storeID string) ([]models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	itemList := make([]models.Item, 0, len(r.items))
	for _, it := range r.items {
		if it.StoreID == storeID {
			itemList = append(itemList, it)
		}
	}
	sort.Slice(itemList, func(i, j int) bool { return itemList[i].ID < itemList[j].ID })
	return itemList, nil
}

// GetByID returns an item of a store by its ID.
func (r *MockItemRepository) GetByID(storeID string, id int64) (*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok || it.StoreID != storeID {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return &it, nil
}

// Create adds a new item and assigns the next identifier.
func (r *MockItemRepository) Create(item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	item.ID = r.nextID
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	r.items[item.ID] = *item
	return nil
}

// Update replaces the mutable fields of an existing item.
func (r *MockItemRepository) Update(item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[item.ID]
	if !ok || existing.StoreID != item.StoreID {
		return fmt.Errorf("item %d: %w", item.ID, ErrNotFound)
	}
	updated := existing.WithFields(item.Fields())
	updated.UpdatedAt = time.Now()
	r.items[item.ID] = updated
	*item = updated
	return nil
}

// Delete removes an item of a store.
func (r *MockItemRepository) Delete(storeID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok || it.StoreID != storeID {
		return fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	delete(r.items, id)
	return nil
}
