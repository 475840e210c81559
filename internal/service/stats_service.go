package service

import (
	"context"

	"github.com/spec-kit/xpertshub/internal/cache"
	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/repository"
	apperrors "github.com/spec-kit/xpertshub/pkg/util/errorutil"
)

const (
	statsLeaderboardSize = 5
	statsMinRatings      = 1
)

// StatsService assembles the public marketplace overview.
type StatsService struct {
	identities repository.IdentityRepository
	catalog    repository.CatalogRepository
	requests   repository.RequestRepository
	ratings    repository.RatingRepository
	cache      *cache.Cache
}

// StatsDependencies bundles collaborators for the stats service.
type StatsDependencies struct {
	IdentityRepo repository.IdentityRepository
	CatalogRepo  repository.CatalogRepository
	RequestRepo  repository.RequestRepository
	RatingRepo   repository.RatingRepository
	Cache        *cache.Cache
}

// NewStatsService constructs the service.
func NewStatsService(deps StatsDependencies) *StatsService {
	return &StatsService{
		identities: deps.IdentityRepo,
		catalog:    deps.CatalogRepo,
		requests:   deps.RequestRepo,
		ratings:    deps.RatingRepo,
		cache:      deps.Cache,
	}
}

// Platform returns the cached statistics snapshot, rebuilding it on a miss.
func (s *StatsService) Platform(ctx context.Context) (*domain.PlatformStats, error) {
	var stats domain.PlatformStats
	if s.cache.Get(ctx, cache.StatsKey, &stats) {
		return &stats, nil
	}

	built, err := s.build(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.Set(ctx, cache.StatsKey, built)
	return built, nil
}

func (s *StatsService) build(ctx context.Context) (*domain.PlatformStats, error) {
	var (
		stats domain.PlatformStats
		err   error
	)
	if stats.Customers, err = s.identities.CountByRole(ctx, domain.RoleCustomer); err != nil {
		return nil, err
	}
	if stats.Companies, err = s.identities.CountByRole(ctx, domain.RoleCompany); err != nil {
		return nil, err
	}

	approved, pending := domain.StatusApproved, domain.StatusPending
	if stats.ApprovedCount, err = s.catalog.Count(ctx, repository.CatalogFilter{Status: &approved}); err != nil {
		return nil, err
	}
	if stats.PendingCount, err = s.catalog.Count(ctx, repository.CatalogFilter{Status: &pending}); err != nil {
		return nil, err
	}
	if stats.RequestCount, err = s.requests.Count(ctx); err != nil {
		return nil, err
	}
	if stats.ByField, err = s.catalog.CountByField(ctx); err != nil {
		return nil, err
	}
	if stats.MostRequested, err = s.requests.MostRequested(ctx, statsLeaderboardSize); err != nil {
		return nil, err
	}
	if stats.TopRated, err = s.ratings.TopRated(ctx, statsLeaderboardSize, statsMinRatings); err != nil {
		return nil, err
	}
	return &stats, nil
}
