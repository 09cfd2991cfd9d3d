package repositories

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"tokodash/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository keeps orders in memory. Stored orders never share
// their line item slices with callers.
type MockOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]models.Order
	seq    map[string]int // insertion order, breaks CreatedAt ties
	next   int
}

// NewMockOrderRepository returns an empty MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
		seq:    make(map[string]int),
	}
}

func cloneOrder(o models.Order) models.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

// ListByStore returns the orders of a store, newest first.
func (r *MockOrderRepository) ListByStore(storeID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Order
	for _, o := range r.orders {
		if o.StoreID == storeID {
			out = append(out, cloneOrder(o))
		}
	}
	slices.SortFunc(out, func(a, b models.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return r.seq[b.ID] - r.seq[a.ID]
	})
	if out == nil {
		out = []models.Order{}
	}
	return out, nil
}

// GetByID returns the order with id.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	o = cloneOrder(o)
	return &o, nil
}

// Create stores order, assigning an id when it has none.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("order %s already exists", order.ID)
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	r.next++
	r.seq[order.ID] = r.next
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// UpdateStatus sets the status of the order with id.
func (r *MockOrderRepository) UpdateStatus(id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.orders[id] = o
	return nil
}
