package repositories

import (
	"errors"
	"fmt"

	"tokodash/internal/models"

	"gorm.io/gorm"
)

// GORMItemRepository is a GORM implementation of ItemRepository.
type GORMItemRepository struct {
	db *gorm.DB
}

// NewGORMItemRepository creates a new instance of GORMItemRepository.
func NewGORMItemRepository(db *gorm.DB) *GORMItemRepository {
	return &GORMItemRepository{
		db: db,
	}
}

// ListByStore retrieves all items of a store ordered by identifier.
func (r *GORMItemRepository) ListByStore(storeID string) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.Where("store_id = ?", storeID).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list items for store %s: %w", storeID, err)
	}
	return items, nil
}

// GetByID retrieves a single item of a store.
func (r *GORMItemRepository) GetByID(storeID string, id int64) (*models.Item, error) {
	var item models.Item
	if err := r.db.First(&item, "id = ? AND store_id = ?", id, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item %d: %w", id, err)
	}
	return &item, nil
}

// Create inserts a new item. The database assigns the identifier.
func (r *GORMItemRepository) Create(item *models.Item) error {
	item.ID = 0
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of an existing item.
func (r *GORMItemRepository) Update(item *models.Item) error {
	res := r.db.Model(&models.Item{}).
		Where("id = ? AND store_id = ?", item.ID, item.StoreID).
		Select("name", "description", "image_url", "quantity", "price", "updated_at").
		Updates(item)
	if res.Error != nil {
		return fmt.Errorf("failed to update item %d: %w", item.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item %d: %w", item.ID, ErrNotFound)
	}
	return r.db.First(item, "id = ?", item.ID).Error
}

// Delete removes an item of a store.
func (r *GORMItemRepository) Delete(storeID string, id int64) error {
	res := r.db.Delete(&models.Item{}, "id = ? AND store_id = ?", id, storeID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return nil
}
