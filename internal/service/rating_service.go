package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/xpertshub/internal/access"
	"github.com/spec-kit/xpertshub/internal/cache"
	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/events"
	"github.com/spec-kit/xpertshub/internal/observability"
	"github.com/spec-kit/xpertshub/internal/repository"
	apperrors "github.com/spec-kit/xpertshub/pkg/util/errorutil"
)

// RatingInput is a customer's review submission.
type RatingInput struct {
	Score  int
	Review string
}

// RatingService records ratings and serves their aggregates.
type RatingService struct {
	catalog    repository.CatalogRepository
	ratings    repository.RatingRepository
	cache      *cache.Cache
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// RatingDependencies bundles collaborators for the rating service.
type RatingDependencies struct {
	CatalogRepo repository.CatalogRepository
	RatingRepo  repository.RatingRepository
	Cache       *cache.Cache
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewRatingService constructs the service.
func NewRatingService(deps RatingDependencies) *RatingService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingService{
		catalog:    deps.CatalogRepo,
		ratings:    deps.RatingRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// RateService stores a customer's single rating of an approved entry.
// A concurrent duplicate that slips past the existence check is rejected by
// the storage uniqueness constraint and reported as Conflict.
func (s *RatingService) RateService(ctx context.Context, identity *domain.Identity, entryID string, input RatingInput) (*domain.Rating, error) {
	entry, err := loadVisibleEntry(ctx, s.catalog, Viewer{Identity: identity}, entryID)
	if err != nil {
		return nil, err
	}
	if err := access.CanRateService(identity, entry, false).Err(); err != nil {
		return nil, err
	}

	rated, err := s.ratings.Exists(ctx, entry.ID, identity.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := domain.ValidateRating(entry, identity, input.Score, rated); err != nil {
		return nil, apperrors.MapError(err)
	}

	rating := &domain.Rating{
		EntryID:    entry.ID,
		CustomerID: identity.ID,
		Score:      input.Score,
		Review:     strings.TrimSpace(input.Review),
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("You have already rated this service.", map[string]any{
				"kind":  string(domain.KindAlreadyRated),
				"field": "score",
			})
		}
		return nil, apperrors.MapError(err)
	}

	s.cache.Delete(ctx, cache.RatingSummaryKey(entry.ID), cache.StatsKey)
	s.metrics.RecordRating()

	if s.dispatcher != nil {
		event := events.New(events.EventRatingCreated, entry.ID, events.IdentityActor(identity.ID),
			events.RatingCreatedPayload{RatingID: rating.ID, Score: rating.Score})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("rating event handlers failed", zap.String("rating_id", rating.ID), zap.Error(err))
		}
	}
	return rating, nil
}

// ListForEntry lists ratings of an entry the viewer may see.
func (s *RatingService) ListForEntry(ctx context.Context, viewer Viewer, entryID string) ([]domain.RatingView, error) {
	entry, err := loadVisibleEntry(ctx, s.catalog, viewer, entryID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratings.ListByEntry(ctx, entry.ID, defaultListLimit, 0)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ratings, nil
}

// Summary returns the cached average and count for an entry.
func (s *RatingService) Summary(ctx context.Context, entryID string) (domain.RatingSummary, error) {
	var summary domain.RatingSummary
	key := cache.RatingSummaryKey(entryID)
	if s.cache.Get(ctx, key, &summary) {
		return summary, nil
	}
	summary, err := s.ratings.Summary(ctx, entryID)
	if err != nil {
		return domain.RatingSummary{}, err
	}
	s.cache.Set(ctx, key, summary)
	return summary, nil
}

// Summaries returns aggregates for several entries; unrated entries map to
// the zero summary.
func (s *RatingService) Summaries(ctx context.Context, entryIDs []string) (map[string]domain.RatingSummary, error) {
	return s.ratings.Summaries(ctx, entryIDs)
}
