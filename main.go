package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"tienda/internal/database"
	"tienda/internal/handlers"
	"tienda/internal/middleware"
	"tienda/internal/repositories"
	"tienda/internal/services"
	"tienda/internal/validation"
	"tienda/pkg/config"
	"tienda/pkg/logger"
	"tienda/pkg/metrics"
	"tienda/pkg/rabbitmq"
)

// deps is everything newApp wires into the router.
type deps struct {
	cfg       *config.Config
	db        *gorm.DB
	log       *logger.Logger
	publisher services.OrderEventPublisher
	registry  *prometheus.Registry
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if cfg.UsesDevSecret() {
		log.Warn().Msg("SESSION_SECRET not set, using the development secret")
	}

	// --- Database ---
	ctx := context.Background()
	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("failed to open database")
	}
	defer database.Close(db)

	if err := database.Migrate(ctx, db, cfg.DB.Driver); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	if cfg.App.SeedDemoData {
		seeded, err := database.Seed(ctx, db, cfg.Upload.PublicPath)
		if err != nil {
			log.Warn().Err(err).Msg("demo data not seeded")
		} else if seeded {
			log.Info().Str("admin", database.SeedAdminEmail).Msg("demo data seeded")
		}
	}

	// --- RabbitMQ ---
	// Order events are optional; the store works without a broker.
	var publisher services.OrderEventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue})
		if err != nil {
			log.Warn().Err(err).Msg("order events disabled")
		} else {
			defer mqClient.Close()
			publisher = mqClient
		}
	}

	app := newApp(deps{
		cfg:       cfg,
		db:        db,
		log:       log,
		publisher: publisher,
		registry:  newRegistry(),
	})

	// --- Start HTTP Server ---
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("starting server")
		if err := app.Listen(cfg.HTTP.Addr); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}

// newRegistry returns a registry with the Go runtime and process collectors.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// newApp builds repositories, services and handlers and mounts every route.
func newApp(d deps) *fiber.App {
	storeMetrics := metrics.NewStoreMetrics(d.registry)

	// --- Repositories ---
	users := repositories.NewGORMUserRepository(d.db)
	products := repositories.NewGORMProductRepository(d.db)
	categories := repositories.NewGORMCategoryRepository(d.db)
	carts := repositories.NewGORMCartRepository(d.db)
	orders := repositories.NewGORMOrderRepository(d.db)
	comments := repositories.NewGORMCommentRepository(d.db)
	tx := repositories.NewTxRunner(d.db)

	// --- Services ---
	cartService := services.NewCartService(carts, products, tx, storeMetrics, d.log)
	authService := services.NewAuthService(users, cartService, validation.New(), d.cfg.Session.Secret, d.cfg.Session.TTL, d.log)
	images := services.NewDiskImageStore(d.cfg.Upload.Dir, d.cfg.Upload.PublicPath)
	productService := services.NewProductService(products, categories, comments, images, d.log)
	orderService := services.NewOrderService(orders, tx, d.publisher, storeMetrics, services.OrderServiceConfig{
		DeliveryFee: d.cfg.Store.DeliveryFee,
		WhatsApp:    d.cfg.Store.WhatsApp,
		StoreName:   d.cfg.Store.Name,
	}, d.log)
	moderationService := services.NewModerationService(comments, products, storeMetrics, d.log)
	adminService := services.NewAdminService(products, orders, comments)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      d.cfg.Store.Name,
		Views:        handlers.NewViews(),
		ErrorHandler: handlers.ErrorHandler(d.log),
		BodyLimit:    d.cfg.Upload.MaxBytes,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${status} ${method} ${path} ${latency}\n",
		Output: d.log.Zerolog(),
	}))

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		if sqlDB, err := d.db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status, code = "unhealthy", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{})))
	if d.cfg.HTTP.StaticDir != "" {
		app.Static("/static", d.cfg.HTTP.StaticDir)
	}

	// Everything below resolves the actor from the session cookie.
	app.Use(middleware.Identity(authService, d.log))

	handlers.NewCatalogHandler(productService).RegisterRoutes(app)
	handlers.NewCartHandler(cartService, authService).RegisterRoutes(app)
	handlers.NewOrderHandler(orderService, cartService, authService).RegisterRoutes(app)
	handlers.NewAuthHandler(authService, d.log).RegisterRoutes(app)
	handlers.NewAdminHandler(adminService, productService, orderService, moderationService).RegisterRoutes(app)
	handlers.NewProductHandler(productService).RegisterRoutes(app)
	handlers.NewCommentHandler(moderationService).RegisterRoutes(app)

	return app
}
