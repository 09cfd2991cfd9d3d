package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tokodash/internal/models"
	"tokodash/internal/repositories"
	"tokodash/internal/server"
	"tokodash/internal/services"
	"tokodash/pkg/rabbitmq"

	"github.com/spf13/cobra"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func (c *cli) serveCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the store API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx, seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "create a demo merchant with a few items")
	return cmd
}

func (c *cli) serve(ctx context.Context, seed bool) error {
	log := c.logger

	db, err := repositories.OpenDatabase(c.cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	var (
		mq     *rabbitmq.Client
		events services.EventPublisher
	)
	if c.cfg.RabbitMQURL != "" {
		mq, err = rabbitmq.NewClient(rabbitmq.Config{URL: c.cfg.RabbitMQURL, Logger: log.Named("rabbitmq")})
		if err != nil {
			return err
		}
		defer func() {
			if err := mq.Close(); err != nil {
				log.Warn("Error closing RabbitMQ client", zap.Error(err))
			}
		}()
		events = mq
	} else {
		log.Info("RABBITMQ_URL not set, store events are disabled")
	}

	app := server.New(server.Options{
		DB:        db,
		JWTSecret: c.cfg.JWTSecret,
		UploadDir: c.cfg.UploadDir,
		PublicURL: c.cfg.PublicURL,
		Events:    events,
		Logger:    log,
		AccessLog: true,
	})

	if seed {
		if err := seedDemoStore(app, log); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting server", zap.String("addr", c.cfg.AppPort))
		if err := app.Fiber.Listen(c.cfg.AppPort); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	if mq != nil {
		done, err := mq.ConsumeEvents(func(msg amqp.Delivery) error {
			log.Info("Received store event",
				zap.String("routing_key", msg.RoutingKey),
				zap.Uint64("tag", msg.DeliveryTag),
				zap.ByteString("body", msg.Body))
			return nil
		})
		if err != nil {
			log.Warn("Failed to start RabbitMQ consumer", zap.Error(err))
		} else {
			g.Go(func() error {
				select {
				case <-done:
					return errors.New("RabbitMQ consumer stopped")
				case <-gctx.Done():
					return nil
				}
			})
		}
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		return app.Fiber.Shutdown()
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	log.Info("Server gracefully stopped")
	return nil
}

// seedDemoStore registers the "demo" merchant (password "demo1234") and gives
// it a few items. An existing demo merchant is left alone.
func seedDemoStore(app *server.App, log *zap.Logger) error {
	user := &models.User{Username: "demo", Email: "demo@tokodash.local", Password: "demo1234", StoreName: "Demo Pottery"}
	if err := app.AuthService.RegisterUser(user); err != nil {
		if errors.Is(err, services.ErrUserExists) {
			log.Info("Demo merchant already exists, skipping seed")
			return nil
		}
		return fmt.Errorf("seeding demo merchant: %w", err)
	}

	items := []models.ItemFields{
		{Name: "Mug", Description: "Hand thrown stoneware mug", Quantity: 12, Price: 18.5},
		{Name: "Bowl", Description: "Speckled serving bowl", Quantity: 4, Price: 42},
		{Name: "Plate", Description: "Dinner plate, matte glaze", Quantity: 20, Price: 24},
	}
	for _, fields := range items {
		item, err := app.ItemService.CreateItem(user.ID, fields)
		if err != nil {
			return fmt.Errorf("seeding item %s: %w", fields.Name, err)
		}
		log.Info("Seeded item", zap.String("name", item.Name), zap.Int64("item_id", item.ID))
	}
	return nil
}
