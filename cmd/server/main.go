// cmd/server/main.go
// Entry point for the F1 fan site API: serves the JSON files written by the
// offline data job, with fallbacks when they're missing.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/trentd187/f1-fansite/internal/broadcast"
	"github.com/trentd187/f1-fansite/internal/config"
	"github.com/trentd187/f1-fansite/internal/database"
	"github.com/trentd187/f1-fansite/internal/datastore"
	"github.com/trentd187/f1-fansite/internal/handlers"
	"github.com/trentd187/f1-fansite/internal/logging"
	"github.com/trentd187/f1-fansite/internal/maintenance"
	"github.com/trentd187/f1-fansite/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer func() { _ = logger.Sync() }()

	store := datastore.New(cfg.DataDir,
		datastore.WithStaleAfter(cfg.StaleAfter),
		datastore.WithLogger(logger),
	)

	updates, err := updateLog(cfg, logger)
	if err != nil {
		logger.Fatal("update log unavailable", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := broadcast.NewHub()
	go hub.Run(ctx)

	datasets := handlers.Datasets(cfg.StandingsSeason)
	scheduler := maintenance.New(maintenance.Options{
		Schedule:    cfg.CleanupSchedule,
		CacheDir:    cfg.CacheDir,
		CacheMaxAge: cfg.CacheMaxAge,
		Gateway:     store,
		Datasets:    datasets,
		Logger:      logger,
	})
	if err := scheduler.Start(); err != nil {
		logger.Fatal("invalid cleanup schedule", zap.String("schedule", cfg.CleanupSchedule), zap.Error(err))
	}
	// One report at startup so missing files show up in the logs right away.
	scheduler.ReportFreshness()

	deps := &handlers.Deps{
		Store:           store,
		Fallbacks:       cfg.Fallbacks,
		Updates:         updates,
		Hub:             hub,
		Logger:          logger,
		Now:             time.Now,
		StandingsSeason: cfg.StandingsSeason,
	}

	app := fiber.New(fiber.Config{
		AppName: "F1 Fan Site API",
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLog(logger))
	app.Use(cors.New())

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")
	api.Get("/next-race.json", handlers.NextRace(deps))
	api.Get("/next-session.json", handlers.NextSession(deps))
	api.Get("/next-race.ics", handlers.NextRaceCalendar(deps))
	api.Get("/latest.json", handlers.LatestSession(deps))
	api.Get("/standings.json", handlers.Standings(deps))
	api.Get("/f1-data", handlers.F1Data(deps))
	api.Get("/updates", handlers.Updates(deps))

	if cfg.AdminEnabled() {
		admin := api.Group("/v1/admin",
			middleware.Auth([]byte(cfg.AdminJWTSecret)),
			middleware.RequireRole("admin"),
		)
		admin.Put("/data/*", handlers.PutDataset(deps))
		admin.Get("/updates", handlers.ListUpdates(deps))
	} else {
		logger.Info("admin routes disabled, ADMIN_JWT_SECRET is not set")
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		// Closing the hub ends every open SSE stream so Shutdown doesn't wait on them.
		cancel()
		<-scheduler.Stop().Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("data_dir", cfg.DataDir),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// updateLog returns the PostgreSQL-backed upload log when DATABASE_URL is set,
// after bringing the schema up to date, and an in-memory log otherwise.
func updateLog(cfg *config.Config, logger *zap.Logger) (database.UpdateLog, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("DATABASE_URL not set, keeping the update log in memory")
		return database.NewMemoryUpdateLog(), nil
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		return nil, err
	}
	return database.NewGormUpdateLog(db), nil
}
