package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/spec-kit/xpertshub/internal/config"
	"github.com/spec-kit/xpertshub/internal/observability"
	"github.com/spec-kit/xpertshub/internal/persistence"
	"github.com/spec-kit/xpertshub/internal/repository"
	"github.com/spec-kit/xpertshub/internal/seed"
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

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	seeder := seed.New(seed.Repositories{
		Identities: repository.NewIdentityRepository(pool),
		Staff:      repository.NewStaffRepository(pool),
		Catalog:    repository.NewCatalogRepository(pool),
		Requests:   repository.NewRequestRepository(pool),
		Ratings:    repository.NewRatingRepository(pool),
	}, cfg.Seed, cfg.Auth.BcryptCost, nil, logger)

	summary, err := seeder.Run(ctx)
	if err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
	if summary.Skipped {
		logger.Info("database already seeded, nothing to do")
		return
	}
	logger.Info("admin account ready", zap.String("email", summary.Admin))
}
