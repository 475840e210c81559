package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/spec-kit/xpertshub/internal/access"
	"github.com/spec-kit/xpertshub/internal/cache"
	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/events"
	"github.com/spec-kit/xpertshub/internal/observability"
	"github.com/spec-kit/xpertshub/internal/repository"
	apperrors "github.com/spec-kit/xpertshub/pkg/util/errorutil"
)

// ModerationService drives catalog entries through the moderation state machine.
type ModerationService struct {
	catalog    repository.CatalogRepository
	cache      *cache.Cache
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// ModerationDependencies bundles collaborators for the moderation service.
type ModerationDependencies struct {
	CatalogRepo repository.CatalogRepository
	Cache       *cache.Cache
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewModerationService constructs the service.
func NewModerationService(deps ModerationDependencies) *ModerationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModerationService{
		catalog:    deps.CatalogRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Approve publishes a pending entry.
func (s *ModerationService) Approve(ctx context.Context, staff *domain.StaffMember, id string) (*domain.CatalogEntry, error) {
	return s.transition(ctx, staff, id, domain.ActionApprove)
}

// Reject declines a pending entry.
func (s *ModerationService) Reject(ctx context.Context, staff *domain.StaffMember, id string) (*domain.CatalogEntry, error) {
	return s.transition(ctx, staff, id, domain.ActionReject)
}

// ApproveMany approves every pending entry among ids and returns how many changed.
func (s *ModerationService) ApproveMany(ctx context.Context, staff *domain.StaffMember, ids []string) (int, error) {
	return s.transitionMany(ctx, staff, ids, domain.ActionApprove)
}

// RejectMany rejects every pending entry among ids and returns how many changed.
func (s *ModerationService) RejectMany(ctx context.Context, staff *domain.StaffMember, ids []string) (int, error) {
	return s.transitionMany(ctx, staff, ids, domain.ActionReject)
}

func (s *ModerationService) transition(ctx context.Context, staff *domain.StaffMember, id string, action domain.ModerationAction) (*domain.CatalogEntry, error) {
	if err := access.CanApprove(staff).Err(); err != nil {
		return nil, err
	}
	target, err := action.Target()
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "action"})
	}

	entry, err := loadVisibleEntry(ctx, s.catalog, Viewer{Staff: staff}, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(entry.Status, target) {
		return nil, apperrors.NewInvalidTransition("service has already been moderated", map[string]any{
			"from": string(entry.Status),
			"to":   string(target),
		})
	}

	changed, err := s.catalog.Transition(ctx, entry.ID, target, staff.ID, s.now())
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !changed {
		return nil, apperrors.NewConflict("service was moderated concurrently", map[string]any{"id": entry.ID})
	}

	updated, err := s.catalog.GetByID(ctx, entry.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"id": entry.ID})
		}
		return nil, apperrors.MapError(err)
	}

	s.afterTransition(ctx, staff, target, 1)
	if s.dispatcher != nil {
		event := events.New(events.EventServiceModerated, entry.ID, events.StaffActor(staff.ID),
			events.ServiceModeratedPayload{OldStatus: entry.Status, NewStatus: target})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("moderation event handlers failed", zap.String("service_id", entry.ID), zap.Error(err))
		}
	}
	return updated, nil
}

// transitionMany skips malformed ids, duplicates and non-pending entries.
func (s *ModerationService) transitionMany(ctx context.Context, staff *domain.StaffMember, ids []string, action domain.ModerationAction) (int, error) {
	if err := access.CanApprove(staff).Err(); err != nil {
		return 0, err
	}
	target, err := action.Target()
	if err != nil {
		return 0, apperrors.NewValidationError(err.Error(), map[string]any{"field": "action"})
	}

	candidates := lo.Uniq(lo.Filter(ids, func(id string, _ int) bool { return validID(id) }))
	if len(candidates) == 0 {
		return 0, nil
	}

	changed, err := s.catalog.TransitionMany(ctx, candidates, target, staff.ID, s.now())
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	s.afterTransition(ctx, staff, target, changed)
	return changed, nil
}

func (s *ModerationService) afterTransition(ctx context.Context, staff *domain.StaffMember, target domain.ModerationStatus, changed int) {
	s.metrics.RecordModeration(string(target), int64(changed))
	if changed > 0 {
		s.cache.Delete(ctx, cache.StatsKey)
	}
	s.logger.Info("services moderated",
		zap.String("staff_id", staff.ID),
		zap.String("status", string(target)),
		zap.Int("changed", changed))
}

// ListQueue lists entries in a moderation status, newest first.
func (s *ModerationService) ListQueue(ctx context.Context, staff *domain.StaffMember, rawStatus string, page int) ([]domain.CatalogEntry, error) {
	if err := access.CanApprove(staff).Err(); err != nil {
		return nil, err
	}
	status := domain.StatusPending
	if rawStatus != "" {
		parsed, err := domain.ParseModerationStatus(rawStatus)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "status"})
		}
		status = parsed
	}

	limit, offset := pageBounds(page, defaultListLimit)
	entries, err := s.catalog.List(ctx, repository.CatalogFilter{Status: &status, Limit: limit, Offset: offset})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}
