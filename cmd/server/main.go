package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/meteo/backend/internal/config"
	"github.com/meteo/backend/internal/delivery/http"
	"github.com/meteo/backend/internal/logging"
	"github.com/meteo/backend/internal/metrics"
	"github.com/meteo/backend/internal/repository/postgres"
	"github.com/meteo/backend/internal/service"
	"github.com/meteo/backend/internal/view"
)

func main() {
	// Load environment variables
	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("could not read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	slog.SetDefault(log)

	if cfg.OpenWeatherAPIKey == "" {
		log.Warn("OPENWEATHER_API_KEY is not set, provider requests will be rejected")
	}

	// Database connection
	pool := connectDatabase(cfg, log)
	if pool != nil {
		defer pool.Close()
	}

	// Dependency Injection: Repositories
	var lookupRepo service.LookupRepository
	if pool != nil {
		repo := postgres.NewPostgresRepository(pool)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := repo.Migrate(ctx); err != nil {
			log.Error("schema migration failed", "error", err)
		}
		cancel()
		lookupRepo = repo
	} else {
		lookupRepo = postgres.NewMockRepository()
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		log.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	// Dependency Injection: Services
	weatherClient := service.NewWeatherClient(cfg.WeatherConfig(), service.WithLogger(log))
	lookupSvc := service.NewLookupService(weatherClient, lookupRepo, m, log)
	sessions := http.NewSessionStore(cfg.SessionTTL, func() *view.SearchView {
		return view.NewSearchView(lookupSvc, view.WithLogger(log), view.WithObserver(m))
	}, m)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "Meteo API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.WeatherTimeout + 5*time.Second,
		ErrorHandler: http.ErrorHandler,

		DisableStartupMessage: cfg.IsProduction(),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Routes
	handler := http.NewHandler(lookupSvc, sessions, cfg.WeatherTimeout+time.Second, log)
	http.SetupRoutes(app, handler, registry)

	// Graceful shutdown
	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	sessions.Close()
	lookupSvc.WaitBackground()
	log.Info("server exited gracefully")
}

func connectDatabase(cfg *config.Config, log *slog.Logger) *pgxpool.Pool {
	if cfg.DatabaseURL == "" {
		log.Info("DATABASE_URL not set, keeping lookups in memory")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err == nil {
		err = pool.Ping(ctx)
		if err != nil {
			pool.Close()
		}
	}
	if err != nil {
		log.Warn("could not connect to database, keeping lookups in memory", "error", err)
		return nil
	}

	log.Info("connected to PostgreSQL")
	return pool
}
