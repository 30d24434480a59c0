package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pharmacy/internal/config"
	"pharmacy/internal/database"
	"pharmacy/internal/models"
	"pharmacy/internal/repositories"
	"pharmacy/internal/services"
	"pharmacy/pkg/rabbitmq"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg)

	app := &cli.App{
		Name:  "pharmacy",
		Usage: "online pharmacy storefront backend",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and the event consumer",
				Action: func(*cli.Context) error { return serve(cfg) },
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema",
				Action: func(*cli.Context) error { return migrate(cfg) },
			},
			{
				Name:  "seed",
				Usage: "insert a demo catalog and an admin account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "admin-username", Value: "admin", EnvVars: []string{"ADMIN_USERNAME"}},
					&cli.StringFlag{Name: "admin-email", Value: "admin@pharmacy.local", EnvVars: []string{"ADMIN_EMAIL"}},
					&cli.StringFlag{Name: "admin-password", Value: "admin123", EnvVars: []string{"ADMIN_PASSWORD"}},
				},
				Action: func(c *cli.Context) error {
					return seed(cfg, services.RegisterRequest{
						Username: c.String("admin-username"),
						Email:    c.String("admin-email"),
						Password: c.String("admin-password"),
					})
				},
			},
		},
		Action: func(*cli.Context) error { return serve(cfg) },
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("pharmacy exited with an error")
	}
}

func setupLogging(cfg config.Config) {
	if strings.EqualFold(cfg.LogFormat, "text") {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func serve(cfg config.Config) error {
	rt, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	app, _, err := NewApp(cfg, rt.deps)
	if err != nil {
		return err
	}

	if rt.mq != nil {
		if err := rt.mq.ConsumeEvents(rabbitmq.LogEvent); err != nil {
			log.WithError(err).Warn("failed to start RabbitMQ consumer")
		}
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.AppPort).Info("starting server")
		errCh <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("error during Fiber shutdown")
	}
	log.Info("server gracefully stopped")
	return nil
}

func migrate(cfg config.Config) error {
	if cfg.DatabaseDriver == "memory" {
		return fmt.Errorf("the memory driver has no schema to migrate")
	}
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	log.WithField("driver", cfg.DatabaseDriver).Info("database migrated")
	return nil
}

func seed(cfg config.Config, admin services.RegisterRequest) error {
	if cfg.DatabaseDriver == "memory" {
		return fmt.Errorf("the memory driver does not persist seeded data")
	}
	rt, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	authService := services.NewAuthService(rt.deps.Repos.Users, cfg.JWTSecret, cfg.TokenTTL)
	user, err := authService.EnsureAdmin(admin)
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	log.WithFields(log.Fields{"user_id": user.ID, "username": user.Username}).Info("admin account ready")

	return seedProducts(rt.deps.Repos.Products)
}

// seedProducts inserts the demo catalog unless products already exist.
func seedProducts(repo repositories.ProductRepository) error {
	existing, err := repo.GetAll(models.ProductFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.WithField("count", len(existing)).Info("catalog already seeded")
		return nil
	}

	expiry := time.Now().UTC().AddDate(2, 0, 0)
	products := []models.Product{
		{Name: "Paracetamol 500mg", Description: "Pain and fever relief, strip of 10", Price: decimal.RequireFromString("25.50"), Stock: 200, Category: "pain-relief", Manufacturer: "Acme Pharma", ExpiryDate: &expiry},
		{Name: "Cetirizine 10mg", Description: "Antihistamine, strip of 10", Price: decimal.RequireFromString("18.00"), Stock: 150, Category: "allergy", Manufacturer: "Acme Pharma", ExpiryDate: &expiry},
		{Name: "Amoxicillin 500mg", Description: "Antibiotic capsules, strip of 6", Price: decimal.RequireFromString("95.00"), Stock: 60, RequiresPrescription: true, Category: "antibiotics", Manufacturer: "MediCure", ExpiryDate: &expiry},
		{Name: "Metformin 500mg", Description: "Blood sugar control, strip of 15", Price: decimal.RequireFromString("42.00"), Stock: 80, RequiresPrescription: true, Category: "diabetes", Manufacturer: "MediCure", ExpiryDate: &expiry},
		{Name: "Digital Thermometer", Description: "Fast read digital thermometer", Price: decimal.RequireFromString("199.00"), Stock: 25, Category: "devices", Manufacturer: "HealthTech"},
	}
	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", products[i].Name, err)
		}
		log.WithFields(log.Fields{"product_id": products[i].ID, "name": products[i].Name}).Info("seeded product")
	}
	return nil
}
