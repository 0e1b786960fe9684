package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/autoyard/autoyard-backend/api/routes"
	"github.com/autoyard/autoyard-backend/internal/cars"
	"github.com/autoyard/autoyard-backend/internal/dealership"
	"github.com/autoyard/autoyard-backend/internal/listings"
	"github.com/autoyard/autoyard-backend/internal/users"
	"github.com/autoyard/autoyard-backend/internal/wishlist"
	"github.com/autoyard/autoyard-backend/pkg/cache"
	"github.com/autoyard/autoyard-backend/pkg/config"
	"github.com/autoyard/autoyard-backend/pkg/db"
	"github.com/autoyard/autoyard-backend/pkg/identity"
	"github.com/autoyard/autoyard-backend/pkg/instance"
	"github.com/autoyard/autoyard-backend/pkg/logger"
	"github.com/autoyard/autoyard-backend/pkg/metrics"
	"github.com/autoyard/autoyard-backend/pkg/migrate"
	"github.com/autoyard/autoyard-backend/pkg/redis"
	"github.com/autoyard/autoyard-backend/pkg/storage/gcs"
	"github.com/autoyard/autoyard-backend/pkg/vision"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(ctx, cfg.Storage, cfg.GCP, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap gcs", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs", err)
		}
	}()

	// A missing Gemini key leaves the model nil: the AI endpoints answer with a
	// configuration error and the rest of the API keeps serving.
	var model vision.Model
	if gemini, err := vision.NewGemini(ctx, cfg.Gemini, logg); err != nil {
		logg.Warn(logg.WithField(ctx, "reason", err.Error()), "gemini disabled")
	} else {
		model = gemini
	}

	var profiles users.ProfileFetcher
	if cfg.Identity.SecretKey != "" {
		identityClient, err := identity.NewClient(cfg.Identity)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap identity client", err)
			os.Exit(1)
		}
		profiles = identityClient
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	views := cache.NewViews(redisClient, logg, metrics.NewCacheMetrics(registry))

	conn := dbClient.DB()
	carRepo := cars.NewRepository(conn)

	usersSvc, err := users.NewService(users.ServiceParams{
		Repo:            users.NewRepository(conn),
		Profiles:        profiles,
		BootstrapAdmins: cfg.Auth.IsBootstrapAdmin,
		Logger:          logg,
	})
	requireService(ctx, logg, "users", err)

	dealershipSvc, err := dealership.NewService(dealership.ServiceParams{
		Repo:   dealership.NewRepository(conn),
		Tx:     dbClient,
		Logger: logg,
	})
	requireService(ctx, logg, "dealership", err)

	carsSvc, err := cars.NewService(cars.ServiceParams{
		Repo:       carRepo,
		Dealership: dealershipSvc,
		Blobs:      gcsClient,
		Views:      views,
		AdminTTL:   cfg.Cache.AdminInventoryTTL,
		Logger:     logg,
	})
	requireService(ctx, logg, "cars", err)

	wishlistSvc, err := wishlist.NewService(wishlist.ServiceParams{
		Repo:     wishlist.NewRepository(conn),
		CarRepo:  carRepo,
		Tx:       dbClient,
		Views:    views,
		SavedTTL: cfg.Cache.SavedCarsTTL,
		Logger:   logg,
	})
	requireService(ctx, logg, "wishlist", err)

	listingsSvc, err := listings.NewService(listings.ServiceParams{
		Model:    model,
		Blobs:    gcsClient,
		CarRepo:  carRepo,
		Cache:    redisClient,
		CacheTTL: cfg.Cache.AIExtractionTTL,
		Views:    views,
		Metrics:  metrics.NewIngestionMetrics(registry),
		Logger:   logg,
	})
	requireService(ctx, logg, "listings", err)

	handler := routes.NewRouter(cfg, logg, routes.Infra{
		DB:       dbClient,
		Redis:    redisClient,
		Storage:  gcsClient,
		Limiter:  redisClient,
		Replays:  redisClient,
		Gatherer: registry,
	}, routes.Services{
		Users:      usersSvc,
		Cars:       carsSvc,
		Wishlist:   wishlistSvc,
		Dealership: dealershipSvc,
		Listings:   listingsSvc,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}

func requireService(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to create "+name+" service", err)
	os.Exit(1)
}
