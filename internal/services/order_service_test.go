package services_test

import (
	"testing"

	"tokodash/internal/models"
	"tokodash/internal/repositories"
	"tokodash/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedItems(t *testing.T, repo repositories.ItemRepository) (mug, plate models.Item) {
	t.Helper()
	mug = models.Item{StoreID: "store-1", Name: "Mug", Price: 12.5, Quantity: 5}
	plate = models.Item{StoreID: "store-1", Name: "Plate", Price: 8, Quantity: 1}
	require.NoError(t, repo.Create(&mug))
	require.NoError(t, repo.Create(&plate))
	return mug, plate
}

func TestOrderService_CreateOrder(t *testing.T) {
	itemRepo := repositories.NewMockItemRepository()
	orderRepo := repositories.NewMockOrderRepository()
	mug, plate := seedItems(t, itemRepo)
	service := services.NewOrderService(orderRepo, itemRepo, nil, nil)

	order, err := service.CreateOrder("store-1", models.Order{
		CustomerID: "cust-1",
		Items: []models.OrderItem{
			{ItemID: mug.ID, Quantity: 2},
			{ItemID: plate.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.InDelta(t, 33.0, order.TotalAmount, 1e-9)

	left, err := itemRepo.GetByID("store-1", mug.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, left.Quantity)

	orders, err := service.ListOrders("store-1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestOrderService_CreateOrder_Rejects(t *testing.T) {
	itemRepo := repositories.NewMockItemRepository()
	_, plate := seedItems(t, itemRepo)
	service := services.NewOrderService(repositories.NewMockOrderRepository(), itemRepo, nil, nil)

	_, err := service.CreateOrder("store-1", models.Order{})
	assert.ErrorIs(t, err, services.ErrEmptyOrder)

	_, err = service.CreateOrder("store-1", models.Order{Items: []models.OrderItem{{ItemID: plate.ID, Quantity: 2}}})
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	_, err = service.CreateOrder("store-2", models.Order{Items: []models.OrderItem{{ItemID: plate.ID, Quantity: 1}}})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	itemRepo := repositories.NewMockItemRepository()
	mug, _ := seedItems(t, itemRepo)
	service := services.NewOrderService(repositories.NewMockOrderRepository(), itemRepo, nil, nil)

	order, err := service.CreateOrder("store-1", models.Order{Items: []models.OrderItem{{ItemID: mug.ID, Quantity: 1}}})
	require.NoError(t, err)

	assert.NoError(t, service.UpdateOrderStatus("store-1", order.ID, models.OrderStatusShipped))
	assert.ErrorIs(t, service.UpdateOrderStatus("store-1", order.ID, "lost"), services.ErrInvalidStatus)
	assert.ErrorIs(t, service.UpdateOrderStatus("store-2", order.ID, models.OrderStatusDelivered), repositories.ErrNotFound)
}
