package handlers

import (
	"errors"
	"io"

	"tokodash/internal/services"
	"tokodash/pkg/imaging"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// FileHandler handles image uploads.
type FileHandler struct {
	service *services.FileService
	logger  *zap.Logger
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(service *services.FileService, logger *zap.Logger) *FileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the upload route on an authenticated router.
func (h *FileHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/files/upload", h.HandleUpload)
}

// HandleUpload accepts a multipart "file" field and responds with the public
// URL of the stored image.
func (h *FileHandler) HandleUpload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "A file field is required", err)
	}
	if header.Size > imaging.MaxUploadBytes {
		return errorResponse(c, fiber.StatusRequestEntityTooLarge, "Image must be at most 10 MB", nil)
	}

	f, err := header.Open()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Could not read upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, imaging.MaxUploadBytes+1))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Could not read upload", err)
	}

	url, err := h.service.SaveImage(data)
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		return errorResponse(c, fiber.StatusRequestEntityTooLarge, "Image must be at most 10 MB", nil)
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return errorResponse(c, fiber.StatusUnsupportedMediaType, "Only JPG, GIF and PNG images are accepted", err)
	case err != nil:
		h.logger.Error("Error storing upload", zap.String("filename", header.Filename), zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Could not store image", err)
	}

	return c.JSON(fiber.Map{"url": url})
}
