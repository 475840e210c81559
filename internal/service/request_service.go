package service

import (
	"context"
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

// RequestInput is a customer's booking submission.
type RequestInput struct {
	Address       string
	DurationHours string
}

// RequestService appends to the request ledger and announces new requests.
type RequestService struct {
	catalog    repository.CatalogRepository
	requests   repository.RequestRepository
	cache      *cache.Cache
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	CatalogRepo repository.CatalogRepository
	RequestRepo repository.RequestRepository
	Cache       *cache.Cache
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		catalog:    deps.CatalogRepo,
		requests:   deps.RequestRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Create books an approved entry for a customer. The entry's hourly
// rate is snapshotted on the request. Notification failures never fail the call.
func (s *RequestService) Create(ctx context.Context, identity *domain.Identity, entryID string, input RequestInput) (*domain.ServiceRequestView, error) {
	entry, err := loadVisibleEntry(ctx, s.catalog, Viewer{Identity: identity}, entryID)
	if err != nil {
		return nil, err
	}
	if err := access.CanRequestService(identity, entry).Err(); err != nil {
		return nil, err
	}

	address := strings.TrimSpace(input.Address)
	if address == "" {
		return nil, apperrors.MapError(&domain.ValidationError{
			Kind:    domain.KindMissingField,
			Field:   "address",
			Message: "address is required",
		})
	}
	hours, err := domain.ParseDurationHours(input.DurationHours)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := domain.ValidateRequest(entry, hours); err != nil {
		return nil, apperrors.MapError(err)
	}

	request := &domain.ServiceRequest{
		EntryID:       entry.ID,
		CustomerID:    identity.ID,
		Address:       address,
		DurationHours: hours,
		HourlyRate:    entry.HourlyRate,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}

	view, err := s.requests.GetView(ctx, request.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.metrics.RecordServiceRequest()
	s.cache.Delete(ctx, cache.StatsKey)
	s.announce(ctx, view)
	return view, nil
}

func (s *RequestService) announce(ctx context.Context, view *domain.ServiceRequestView) {
	if s.dispatcher == nil {
		return
	}
	req := view.Request
	payload := events.ServiceRequestCreatedPayload{
		RequestID:     req.ID,
		ServiceName:   view.EntryName,
		Field:         view.EntryField,
		CompanyID:     view.CompanyID,
		CompanyName:   view.CompanyName,
		CompanyEmail:  view.CompanyMail,
		CustomerName:  view.CustomerName,
		CustomerEmail: view.CustomerMail,
		Address:       req.Address,
		DurationHours: req.DurationHours,
		HourlyRate:    req.HourlyRate,
		Cost:          req.Cost(),
		RequestedAt:   req.CreatedAt,
	}
	event := events.New(events.EventServiceRequestCreated, req.EntryID, events.IdentityActor(req.CustomerID), payload)
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("request notifications failed", zap.String("request_id", req.ID), zap.Error(err))
	}
}

// ListMine lists a customer's own requests, or the requests a company received.
func (s *RequestService) ListMine(ctx context.Context, identity *domain.Identity, page int) ([]domain.ServiceRequestView, error) {
	limit, offset := pageBounds(page, defaultListLimit)

	var (
		views []domain.ServiceRequestView
		err   error
	)
	switch identity.Role() {
	case domain.RoleCustomer:
		views, err = s.requests.ListByCustomer(ctx, identity.ID, limit, offset)
	case domain.RoleCompany:
		views, err = s.requests.ListByCompany(ctx, identity.ID, limit, offset)
	default:
		return nil, apperrors.NewForbidden("customer or company account required")
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return views, nil
}

// ListForEntry lists requests for one entry; only the owning company may.
func (s *RequestService) ListForEntry(ctx context.Context, identity *domain.Identity, entryID string, page int) ([]domain.ServiceRequestView, error) {
	entry, err := loadVisibleEntry(ctx, s.catalog, Viewer{Identity: identity}, entryID)
	if err != nil {
		return nil, err
	}
	if err := access.CanViewRequestsFor(identity, entry.CompanyID).Err(); err != nil {
		return nil, err
	}

	limit, offset := pageBounds(page, defaultListLimit)
	views, err := s.requests.ListByEntry(ctx, entry.ID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return views, nil
}

// CountForCompany is the number of requests a company has received.
func (s *RequestService) CountForCompany(ctx context.Context, companyID string) (int, error) {
	count, err := s.requests.CountByCompany(ctx, companyID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}
