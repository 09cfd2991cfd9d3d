package handlers

import (
	"errors"
	"fmt"

	"tokodash/internal/middleware"
	"tokodash/internal/models"
	"tokodash/internal/repositories"
	"tokodash/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for the merchant's orders.
type OrderHandler struct {
	service *services.OrderService
	logger  *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *zap.Logger) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the order routes on an authenticated router.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/stores/orders")
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// HandleListOrders lists the orders placed against the merchant's store.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(middleware.StoreID(c))
	if err != nil {
		h.logger.Error("Error listing orders", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Could not retrieve orders", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"orders":  orders,
	})
}

// HandleCreateOrder places an order against the merchant's store.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var orderRequest models.Order
	if err := c.BodyParser(&orderRequest); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	createdOrder, err := h.service.CreateOrder(middleware.StoreID(c), orderRequest)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyOrder), errors.Is(err, services.ErrInsufficientStock):
			return errorResponse(c, fiber.StatusBadRequest, "Order creation failed", err)
		case errors.Is(err, repositories.ErrNotFound):
			return errorResponse(c, fiber.StatusNotFound, "Order references an unknown item", err)
		}
		h.logger.Error("Error creating order", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Could not create order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(createdOrder)
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body for status update", err)
	}
	if updateData.Status == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Status is required for order status update.", nil)
	}

	err := h.service.UpdateOrderStatus(middleware.StoreID(c), orderID, updateData.Status)
	switch {
	case errors.Is(err, services.ErrInvalidStatus):
		return errorResponse(c, fiber.StatusBadRequest, "Order update failed", err)
	case errors.Is(err, repositories.ErrNotFound):
		return errorResponse(c, fiber.StatusNotFound, fmt.Sprintf("Order %s not found", orderID), nil)
	case err != nil:
		h.logger.Error("Error updating order status", zap.String("order_id", orderID), zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Could not update order status", err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s status updated successfully to %s", orderID, updateData.Status),
	})
}
