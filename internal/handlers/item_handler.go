package handlers

import (
	"errors"
	"strconv"

	"tokodash/internal/middleware"
	"tokodash/internal/models"
	"tokodash/internal/repositories"
	"tokodash/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ItemHandler handles HTTP requests for the authenticated merchant's items.
type ItemHandler struct {
	service  *services.ItemService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service *services.ItemService, logger *zap.Logger) *ItemHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemHandler{
		service:  service,
		validate: newValidator(),
		logger:   logger,
	}
}

// RegisterRoutes registers the item routes on a router that already
// enforces authentication.
func (h *ItemHandler) RegisterRoutes(router fiber.Router) {
	itemRoutes := router.Group("/stores/items")
	itemRoutes.Get("/", h.HandleListItems)
	itemRoutes.Post("/", h.HandleCreateItem)
	itemRoutes.Put("/:id", h.HandleUpdateItem)
	itemRoutes.Delete("/:id", h.HandleDeleteItem)
}

// HandleListItems lists the items of the merchant's store.
func (h *ItemHandler) HandleListItems(c *fiber.Ctx) error {
	items, err := h.service.ListItems(middleware.StoreID(c))
	if err != nil {
		h.logger.Error("Error listing items", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Could not retrieve items", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"items":   items,
	})
}

// HandleCreateItem creates an item in the merchant's store.
func (h *ItemHandler) HandleCreateItem(c *fiber.Ctx) error {
	fields, err := h.parseFields(c)
	if fields == nil {
		return err
	}

	item, err := h.service.CreateItem(middleware.StoreID(c), *fields)
	if err != nil {
		h.logger.Error("Error creating item", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Could not create item", err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleUpdateItem replaces the mutable fields of an item.
func (h *ItemHandler) HandleUpdateItem(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid item id", nil)
	}

	fields, err := h.parseFields(c)
	if fields == nil {
		return err
	}

	item, err := h.service.UpdateItem(middleware.StoreID(c), id, *fields)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "Item not found", nil)
		}
		h.logger.Error("Error updating item", zap.Int64("item_id", id), zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Could not update item", err)
	}
	return c.JSON(item)
}

// HandleDeleteItem deletes an item. A successful delete has an empty body.
func (h *ItemHandler) HandleDeleteItem(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid item id", nil)
	}

	if err := h.service.DeleteItem(middleware.StoreID(c), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "Item not found", nil)
		}
		h.logger.Error("Error deleting item", zap.Int64("item_id", id), zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Could not delete item", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseFields binds and validates the request body. It returns nil fields
// when the request was rejected; the error response has then already been
// written and err is the result of writing it.
func (h *ItemHandler) parseFields(c *fiber.Ctx) (*models.ItemFields, error) {
	var fields models.ItemFields
	if err := c.BodyParser(&fields); err != nil {
		return nil, errorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.validate.Struct(fields); err != nil {
		return nil, validationFailed(c, err)
	}
	return &fields, nil
}
