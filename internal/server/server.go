// Package server assembles the reference store API: the fiber application
// serving auth, item, upload and order routes under /api.
package server

import (
	"time"

	"tokodash/internal/handlers"
	"tokodash/internal/middleware"
	"tokodash/internal/repositories"
	"tokodash/internal/services"
	"tokodash/pkg/imaging"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options configures the application.
type Options struct {
	DB        *gorm.DB
	JWTSecret string
	UploadDir string
	PublicURL string
	// Events receives item and order events. Leave nil to disable publishing.
	Events services.EventPublisher
	Logger *zap.Logger
	// AccessLog enables fiber's request logger.
	AccessLog bool
}

// App is the assembled server together with the services tests and the CLI
// need direct access to.
type App struct {
	Fiber       *fiber.App
	AuthService *services.AuthService
	ItemService *services.ItemService
}

// New wires repositories, services and handlers into a fiber application.
func New(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	userRepo := repositories.NewGORMUserRepository(opts.DB)
	itemRepo := repositories.NewGORMItemRepository(opts.DB)
	orderRepo := repositories.NewGORMOrderRepository(opts.DB)

	authService := services.NewAuthService(userRepo, opts.JWTSecret, log.Named("auth"))
	itemService := services.NewItemService(itemRepo, opts.Events, log.Named("items"))
	orderService := services.NewOrderService(orderRepo, itemRepo, opts.Events, log.Named("orders"))
	fileService := services.NewFileService(opts.UploadDir, opts.PublicURL, log.Named("files"))

	app := fiber.New(fiber.Config{
		AppName:               "tokodash",
		BodyLimit:             imaging.MaxUploadBytes + 1<<20,
		DisableStartupMessage: true,
	})
	if opts.AccessLog {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Static("/uploads", fileService.Dir())

	api := app.Group("/api")
	handlers.NewAuthHandler(authService, log.Named("auth")).RegisterRoutes(api)

	protected := api.Group("", middleware.AuthRequired(authService))
	handlers.NewItemHandler(itemService, log.Named("items")).RegisterRoutes(protected)
	handlers.NewFileHandler(fileService, log.Named("files")).RegisterRoutes(protected)
	handlers.NewOrderHandler(orderService, log.Named("orders")).RegisterRoutes(protected)

	return &App{
		Fiber:       app,
		AuthService: authService,
		ItemService: itemService,
	}
}
