package services

import (
	"errors"
	"fmt"

	"tokodash/internal/models"
	"tokodash/internal/repositories"

	"go.uber.org/zap"
)

// EventOrderCreated is the routing key published for new orders.
const EventOrderCreated = "order.created"

var (
	// ErrInsufficientStock is returned when an order asks for more than is in stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidStatus is returned for unknown order statuses.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrEmptyOrder is returned for orders without line items.
	ErrEmptyOrder = errors.New("order has no items")
)

var validStatuses = map[string]bool{
	models.OrderStatusPending:    true,
	models.OrderStatusProcessing: true,
	models.OrderStatusShipped:    true,
	models.OrderStatusDelivered:  true,
	models.OrderStatusCancelled:  true,
}

// OrderService handles business logic related to a store's orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	itemRepo  repositories.ItemRepository
	events    EventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService. events may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, itemRepo repositories.ItemRepository, events EventPublisher, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		events:    events,
		logger:    logger,
	}
}

// ListOrders retrieves the orders placed against a store.
func (s *OrderService) ListOrders(storeID string) ([]models.Order, error) {
	orders, err := s.orderRepo.ListByStore(storeID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// CreateOrder places an order against a store. Prices are taken from the
// items at order time and stock is reduced by the ordered quantities.
func (s *OrderService) CreateOrder(storeID string, req models.Order) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	var total float64
	lines := make([]models.OrderItem, 0, len(req.Items))
	stock := make([]*models.Item, 0, len(req.Items))
	for _, line := range req.Items {
		item, err := s.itemRepo.GetByID(storeID, line.ItemID)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", line.ItemID, err)
		}
		if line.Quantity <= 0 || item.Quantity < line.Quantity {
			return nil, fmt.Errorf("%w for item %s (requested: %d, available: %d)", ErrInsufficientStock, item.Name, line.Quantity, item.Quantity)
		}
		lines = append(lines, models.OrderItem{ItemID: item.ID, Quantity: line.Quantity, Price: item.Price})
		total += item.Price * float64(line.Quantity)
		item.Quantity -= line.Quantity
		stock = append(stock, item)
	}

	order := &models.Order{
		StoreID:     storeID,
		CustomerID:  req.CustomerID,
		Items:       lines,
		TotalAmount: total,
		Status:      models.OrderStatusPending,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range stock {
		if err := s.itemRepo.Update(item); err != nil {
			s.logger.Warn("Failed to reduce stock", zap.Int64("item_id", item.ID), zap.Error(err))
		}
	}

	publishEvent(s.events, s.logger, EventOrderCreated, map[string]interface{}{
		"order_id": order.ID,
		"store_id": order.StoreID,
		"status":   order.Status,
		"total":    order.TotalAmount,
	})
	return order, nil
}

// UpdateOrderStatus updates the status of an order of a store.
func (s *OrderService) UpdateOrderStatus(storeID, id, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return err
	}
	if order.StoreID != storeID {
		return fmt.Errorf("order %s: %w", id, repositories.ErrNotFound)
	}

	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	return nil
}
