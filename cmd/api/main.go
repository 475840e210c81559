package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/xpertshub/internal/api/http"
	"github.com/spec-kit/xpertshub/internal/api/http/handlers"
	"github.com/spec-kit/xpertshub/internal/auth"
	"github.com/spec-kit/xpertshub/internal/config"
	"github.com/spec-kit/xpertshub/internal/events"
	"github.com/spec-kit/xpertshub/internal/notify"
	"github.com/spec-kit/xpertshub/internal/observability"
	"github.com/spec-kit/xpertshub/internal/persistence"
	"github.com/spec-kit/xpertshub/internal/repository"
	"github.com/spec-kit/xpertshub/internal/service"
	"github.com/spec-kit/xpertshub/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics("xpertshub")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()
	aggregates := redis.NewCache(cfg.Redis.CacheTTL(), logger)

	sender, closeSender, err := notify.NewSender(cfg, logger)
	if err != nil {
		logger.Fatal("failed to init notification transport", zap.Error(err))
	}
	defer closeSender()

	pool := pg.PoolHandle()
	identityRepo := repository.NewIdentityRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	catalogRepo := repository.NewCatalogRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	ratingRepo := repository.NewRatingRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, sender, logger, metrics, cfg.App))

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		IdentityRepo: identityRepo,
		StaffRepo:    staffRepo,
		Cache:        aggregates,
	})
	ratingService := service.NewRatingService(service.RatingDependencies{
		CatalogRepo: catalogRepo,
		RatingRepo:  ratingRepo,
		Cache:       aggregates,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		CatalogRepo: catalogRepo,
		RatingRepo:  ratingRepo,
		Summaries:   ratingService,
		PageSize:    cfg.Catalog.PageSize,
		Logger:      logger,
	})
	requestService := service.NewRequestService(service.RequestDependencies{
		CatalogRepo: catalogRepo,
		RequestRepo: requestRepo,
		Cache:       aggregates,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	moderationService := service.NewModerationService(service.ModerationDependencies{
		CatalogRepo: catalogRepo,
		Cache:       aggregates,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	statsService := service.NewStatsService(service.StatsDependencies{
		IdentityRepo: identityRepo,
		CatalogRepo:  catalogRepo,
		RequestRepo:  requestRepo,
		RatingRepo:   ratingRepo,
		Cache:        aggregates,
	})
	profileService := service.NewProfileService(service.ProfileDependencies{
		IdentityRepo:   identityRepo,
		RequestRepo:    requestRepo,
		RatingRepo:     ratingRepo,
		CatalogService: catalogService,
	})

	healthDeps := map[string]handlers.Pinger{"postgres": pg}
	if redis.Enabled() {
		healthDeps["redis"] = redis
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), identityRepo, staffRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, healthDeps),
		Auth:           handlers.NewAuthHandler(authService),
		Services:       handlers.NewServicesHandler(catalogService),
		Requests:       handlers.NewRequestsHandler(requestService),
		Ratings:        handlers.NewRatingsHandler(ratingService),
		Profiles:       handlers.NewProfilesHandler(profileService, statsService),
		Moderation:     handlers.NewModerationHandler(moderationService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
