package main

import (
	"errors"
	"fmt"
	"time"

	"pharmacy/internal/config"
	"pharmacy/internal/database"
	"pharmacy/internal/handlers"
	"pharmacy/internal/metrics"
	"pharmacy/internal/middleware"
	"pharmacy/internal/repositories"
	"pharmacy/internal/services"
	"pharmacy/pkg/rabbitmq"
	"pharmacy/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the collaborators NewApp wires into the HTTP layer.
type Deps struct {
	DB        *gorm.DB // nil when running on the in-memory repositories
	Repos     repositories.Set
	Publisher services.EventPublisher // nil disables event publication
	Uploader  services.Uploader
	Registry  *prometheus.Registry
}

// NewApp builds the Fiber application and its services.
func NewApp(cfg config.Config, deps Deps) (*fiber.App, *services.AuthService, error) {
	if deps.Uploader == nil {
		return nil, nil, fmt.Errorf("an uploader is required")
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := metrics.New(reg)

	var notifier *services.Notifier
	if deps.Publisher != nil {
		notifier = services.NewNotifier(deps.Publisher, cfg.RabbitMQExchange)
	}

	repos := deps.Repos
	authService := services.NewAuthService(repos.Users, cfg.JWTSecret, cfg.TokenTTL)
	productService := services.NewProductService(repos.Products)
	cartService := services.NewCartService(repos.Carts, repos.Products, m)
	orderService := services.NewOrderService(repos.Orders, repos.Products, repos.Carts, repos.Prescriptions, notifier, m,
		services.OrderPricing{DeliveryCharge: cfg.DeliveryCharge, FreeDeliveryOver: cfg.FreeDeliveryOver})
	inventoryService := services.NewInventoryService(repos.Products, cfg.LowStockThreshold, m)
	prescriptionService := services.NewPrescriptionService(repos.Prescriptions, repos.Products, deps.Uploader, notifier, m)
	userService := services.NewUserService(repos.Users, repos.Products)

	app := fiber.New(fiber.Config{
		AppName:      "pharmacy",
		BodyLimit:    8 * 1024 * 1024, // base64 prescription images
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", healthHandler(deps.DB, deps.Publisher != nil))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	guards := middleware.NewGuards(authService)
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1, guards)
	handlers.NewProductHandler(productService).RegisterRoutes(apiV1, guards)
	handlers.NewCartHandler(cartService).RegisterRoutes(apiV1, guards)
	handlers.NewOrderHandler(orderService).RegisterRoutes(apiV1, guards)
	handlers.NewInventoryHandler(inventoryService).RegisterRoutes(apiV1, guards)
	handlers.NewPrescriptionHandler(prescriptionService).RegisterRoutes(apiV1, guards)
	handlers.NewUserHandler(userService).RegisterRoutes(apiV1, guards)

	return app, authService, nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.WithError(err).WithField("path", c.Path()).Error("unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func healthHandler(db *gorm.DB, publishing bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbState := "memory"
		if db != nil {
			dbState = "up"
			if err := database.Ping(db); err != nil {
				log.WithError(err).Warn("database ping failed")
				dbState = "down"
			}
		}
		mqState := "disabled"
		if publishing {
			mqState = "connected"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().UTC().Format(time.RFC3339),
			"database": dbState,
			"rabbitmq": mqState,
		})
	}
}

// runtime holds what buildDeps opened so it can be released on shutdown.
type runtime struct {
	deps Deps
	mq   *rabbitmq.Client
}

func (r *runtime) Close() {
	if r.mq != nil {
		if err := r.mq.Close(); err != nil {
			log.WithError(err).Warn("failed to close RabbitMQ client")
		}
	}
	if r.deps.DB != nil {
		if sqlDB, err := r.deps.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

// buildDeps opens the store, the uploader and, when configured, RabbitMQ.
func buildDeps(cfg config.Config) (*runtime, error) {
	rt := &runtime{}

	switch cfg.DatabaseDriver {
	case "memory":
		rt.deps.Repos = repositories.NewMockSet()
	default:
		db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		rt.deps.DB = db
		rt.deps.Repos = repositories.NewGORMSet(db)
	}

	uploader, err := storage.NewLocalUploader(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.deps.Uploader = uploader

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rt.deps.Registry = reg

	if cfg.RabbitMQURL == "" {
		log.Info("RABBITMQ_URL is empty, events will not be published")
		return rt, nil
	}
	mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange})
	if err != nil {
		// The store still works without a broker.
		log.WithError(err).Warn("failed to initialize RabbitMQ client, events will not be published")
		return rt, nil
	}
	rt.mq = mq
	rt.deps.Publisher = mq
	return rt, nil
}
