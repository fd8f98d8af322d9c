package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mroshb/film_catalog/internal/cache"
	"github.com/mroshb/film_catalog/internal/config"
	"github.com/mroshb/film_catalog/internal/database"
	"github.com/mroshb/film_catalog/internal/handlers"
	"github.com/mroshb/film_catalog/internal/middleware"
	"github.com/mroshb/film_catalog/internal/repositories"
	"github.com/mroshb/film_catalog/internal/repositories/memory"
	"github.com/mroshb/film_catalog/internal/repositories/postgres"
	"github.com/mroshb/film_catalog/internal/services"
	"github.com/mroshb/film_catalog/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type stores struct {
	catalog   repositories.CatalogStore
	relations repositories.RelationStore
	likes     repositories.FilmLikeStore
	reviews   repositories.ReviewStore
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(logger.Options{
		Level:       cfg.LogLevel,
		Development: cfg.AppEnv == "development",
		File:        cfg.LogFile,
	})
	defer logger.Sync()

	logger.Info("Starting film catalog API...")

	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProductionSecurity(); err != nil {
			logger.Fatal("Production security validation failed", err)
		}
		logger.Info("Production security validation passed")
	}

	healthChecks := make(map[string]handlers.HealthCheck)

	var st stores
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		db, err := openDatabase(cfg)
		if err != nil {
			logger.Fatal("Failed to prepare database", err)
		}
		st = stores{
			catalog:   postgres.NewCatalogStore(db),
			relations: postgres.NewRelationStore(db),
			likes:     postgres.NewLikeStore(db),
			reviews:   postgres.NewReviewStore(db),
		}
		healthChecks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	default:
		catalog := memory.NewCatalogStore()
		st = stores{
			catalog:   catalog,
			relations: memory.NewRelationStore(),
			likes:     memory.NewLikeStore(catalog),
			reviews:   memory.NewReviewStore(),
		}
		logger.Warn("Using in-memory storage, data is lost on restart")
	}

	// Popular cache is optional; without it rankings always hit the store
	var popularCache services.PopularCache
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cache.NewPopularCache(ctx, cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.GetPopularCacheTTL(),
		})
		cancel()
		if err != nil {
			logger.Warn("Popular cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer redisCache.Close()
			popularCache = redisCache
			healthChecks["redis"] = redisCache.Ping
		}
	}

	services.RegisterMetrics()
	middleware.RegisterMetrics(prometheus.DefaultRegisterer)

	h := handlers.NewHandlerManager(
		cfg,
		st.catalog,
		services.NewFriendshipService(st.relations, st.catalog),
		services.NewLikeService(st.likes, popularCache),
		services.NewReviewService(st.reviews),
	)
	h.HealthChecks = healthChecks

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst, 10*time.Minute)
	defer limiter.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           handlers.NewRouter(h, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", err)
		}
	}()

	logger.Info("API started successfully", "env", cfg.AppEnv, "port", cfg.AppPort, "storage", cfg.StorageBackend)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("API stopped")
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	if err := database.SeedGenres(db); err != nil {
		logger.Warn("Failed to seed genres", "error", err)
	}
	return db, nil
}
