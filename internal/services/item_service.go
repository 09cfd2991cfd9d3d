package services

import (
	"fmt"

	"tokodash/internal/models"
	"tokodash/internal/repositories"

	"go.uber.org/zap"
)

// Item event routing keys.
const (
	EventItemCreated = "item.created"
	EventItemUpdated = "item.updated"
	EventItemDeleted = "item.deleted"
)

// ItemEvent is the payload published for item changes.
type ItemEvent struct {
	ItemID   int64   `json:"item_id"`
	StoreID  string  `json:"store_id"`
	Name     string  `json:"name,omitempty"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// ItemService handles business logic related to a store's items.
type ItemService struct {
	repo   repositories.ItemRepository
	events EventPublisher
	logger *zap.Logger
}

// NewItemService creates a new ItemService. events may be nil.
func NewItemService(repo repositories.ItemRepository, events EventPublisher, logger *zap.Logger) *ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemService{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// ListItems retrieves all items of a store.
func (s *ItemService) ListItems(storeID string) ([]models.Item, error) {
	items, err := s.repo.ListByStore(storeID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Item{}
	}
	return items, nil
}

// CreateItem creates a new item in a store.
func (s *ItemService) CreateItem(storeID string, fields models.ItemFields) (*models.Item, error) {
	item := models.Item{StoreID: storeID}.WithFields(fields)
	if err := s.repo.Create(&item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	s.logger.Info("Item created", zap.Int64("item_id", item.ID), zap.String("store_id", storeID))
	publishEvent(s.events, s.logger, EventItemCreated, eventFor(item))
	return &item, nil
}

// UpdateItem replaces the mutable fields of an item of a store.
func (s *ItemService) UpdateItem(storeID string, id int64, fields models.ItemFields) (*models.Item, error) {
	item := models.Item{ID: id, StoreID: storeID}.WithFields(fields)
	if err := s.repo.Update(&item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	s.logger.Info("Item updated", zap.Int64("item_id", id), zap.String("store_id", storeID))
	publishEvent(s.events, s.logger, EventItemUpdated, eventFor(item))
	return &item, nil
}

// DeleteItem deletes an item of a store.
func (s *ItemService) DeleteItem(storeID string, id int64) error {
	if err := s.repo.Delete(storeID, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	s.logger.Info("Item deleted", zap.Int64("item_id", id), zap.String("store_id", storeID))
	publishEvent(s.events, s.logger, EventItemDeleted, ItemEvent{ItemID: id, StoreID: storeID})
	return nil
}

func eventFor(item models.Item) ItemEvent {
	return ItemEvent{
		ItemID:   item.ID,
		StoreID:  item.StoreID,
		Name:     item.Name,
		Quantity: item.Quantity,
		Price:    item.Price,
	}
}
