package repositories

import (
	"errors"
	"fmt"
	"time"

	"tokodash/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// orderRecord is the persisted form of models.Order; line items are stored
// as a JSON column.
type orderRecord struct {
	ID          string             `gorm:"primaryKey;type:varchar(36)"`
	StoreID     string             `gorm:"index;type:varchar(36)"`
	CustomerID  string             `gorm:"type:varchar(36)"`
	Items       []models.OrderItem `gorm:"serializer:json"`
	TotalAmount float64
	Status      string `gorm:"type:varchar(20)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (orderRecord) TableName() string { return "orders" }

func (o orderRecord) toModel() models.Order {
	return models.Order{
		ID:          o.ID,
		StoreID:     o.StoreID,
		CustomerID:  o.CustomerID,
		Items:       o.Items,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// ListByStore retrieves the orders of a store, newest first.
func (r *GORMOrderRepository) ListByStore(storeID string) ([]models.Order, error) {
	var records []orderRecord
	if err := r.db.Where("store_id = ?", storeID).Order("created_at desc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders for store %s: %w", storeID, err)
	}
	orders := make([]models.Order, 0, len(records))
	for _, rec := range records {
		orders = append(orders, rec.toModel())
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var rec orderRecord
	if err := r.db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	order := rec.toModel()
	return &order, nil
}

// Create persists a new order.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	rec := orderRecord{
		ID:          order.ID,
		StoreID:     order.StoreID,
		CustomerID:  order.CustomerID,
		Items:       order.Items,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
	}
	if err := r.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	order.CreatedAt = rec.CreatedAt
	order.UpdatedAt = rec.UpdatedAt
	return nil
}

// UpdateStatus updates the status of an order.
func (r *GORMOrderRepository) UpdateStatus(id string, status string) error {
	res := r.db.Model(&orderRecord{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return nil
}
