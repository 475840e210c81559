package service

import (
	"context"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/spec-kit/xpertshub/internal/access"
	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/repository"
	apperrors "github.com/spec-kit/xpertshub/pkg/util/errorutil"
)

// DefaultPageSize matches the public catalog listing.
const DefaultPageSize = 12

// SummaryReader provides rating aggregates.
type SummaryReader interface {
	Summary(ctx context.Context, entryID string) (domain.RatingSummary, error)
	Summaries(ctx context.Context, entryIDs []string) (map[string]domain.RatingSummary, error)
}

// EntryListing is a catalog entry with its rating aggregate.
type EntryListing struct {
	Entry  domain.CatalogEntry
	Rating domain.RatingSummary
}

// CatalogPage is one page of the public catalog.
type CatalogPage struct {
	Entries    []EntryListing
	Page       int
	PageSize   int
	Total      int
	TotalPages int
	Field      *domain.FieldOfWork
}

// EntryDetail is a single entry with what the viewer may do with it.
type EntryDetail struct {
	EntryListing
	CanRequest      bool
	CanRate         bool
	CanViewRequests bool
}

// CatalogService coordinates catalog entry creation and browsing.
type CatalogService struct {
	catalog   repository.CatalogRepository
	ratings   repository.RatingRepository
	summaries SummaryReader
	pageSize  int
	logger    *zap.Logger
}

// CatalogDependencies bundles collaborators for the catalog service.
type CatalogDependencies struct {
	CatalogRepo repository.CatalogRepository
	RatingRepo  repository.RatingRepository
	Summaries   SummaryReader
	PageSize    int
	Logger      *zap.Logger
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	pageSize := deps.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		catalog:   deps.CatalogRepo,
		ratings:   deps.RatingRepo,
		summaries: deps.Summaries,
		pageSize:  pageSize,
		logger:    logger,
	}
}

// CreateService validates a company's draft and stores it as pending.
func (s *CatalogService) CreateService(ctx context.Context, identity *domain.Identity, draft domain.ServiceDraft) (*domain.CatalogEntry, error) {
	if err := access.CanCreateService(identity).Err(); err != nil {
		return nil, err
	}
	validated, err := domain.ValidateNewService(identity, draft)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	entry := validated.Entry(identity.ID)
	if err := s.catalog.Create(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	entry.CompanyName = identity.Username

	s.logger.Info("service submitted for moderation",
		zap.String("service_id", entry.ID),
		zap.String("company_id", identity.ID),
		zap.String("field", entry.Field.String()))
	return entry, nil
}

// GetService returns an entry the viewer may see, with their capabilities.
func (s *CatalogService) GetService(ctx context.Context, viewer Viewer, id string) (*EntryDetail, error) {
	entry, err := loadVisibleEntry(ctx, s.catalog, viewer, id)
	if err != nil {
		return nil, err
	}
	summary, err := s.summaries.Summary(ctx, entry.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	detail := &EntryDetail{EntryListing: EntryListing{Entry: *entry, Rating: summary}}
	if viewer.Identity == nil {
		return detail, nil
	}

	detail.CanRequest = access.CanRequestService(viewer.Identity, entry).Allowed
	detail.CanViewRequests = access.CanViewRequestsFor(viewer.Identity, entry.CompanyID).Allowed
	if viewer.Identity.IsCustomer() {
		rated, err := s.ratings.Exists(ctx, entry.ID, viewer.Identity.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		detail.CanRate = access.CanRateService(viewer.Identity, entry, rated).Allowed
	}
	return detail, nil
}

// ListApproved pages through approved entries, newest first, optionally
// narrowed to one field of work.
func (s *CatalogService) ListApproved(ctx context.Context, rawField string, page int) (*CatalogPage, error) {
	approved := domain.StatusApproved
	filter := repository.CatalogFilter{Status: &approved}

	if rawField != "" {
		field, err := domain.ParseFieldOfWork(rawField)
		if err != nil {
			return nil, apperrors.MapError(&domain.ValidationError{
				Kind:    domain.KindUnknownField,
				Field:   "field",
				Message: err.Error(),
			})
		}
		filter.Field = &field
	}

	total, err := s.catalog.Count(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if page < 1 {
		page = 1
	}
	totalPages := (total + s.pageSize - 1) / s.pageSize
	if page > 1 && page > totalPages {
		return nil, apperrors.NewNotFound("page", map[string]any{"page": page})
	}

	filter.Limit, filter.Offset = pageBounds(page, s.pageSize)
	entries, err := s.catalog.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	listings, err := s.withSummaries(ctx, entries)
	if err != nil {
		return nil, err
	}

	return &CatalogPage{
		Entries:    listings,
		Page:       page,
		PageSize:   s.pageSize,
		Total:      total,
		TotalPages: totalPages,
		Field:      filter.Field,
	}, nil
}

// ListByCompany lists a company's entries. The owner and moderators see every
// status; everyone else sees approved entries only.
func (s *CatalogService) ListByCompany(ctx context.Context, viewer Viewer, company *domain.Identity) ([]EntryListing, error) {
	filter := repository.CatalogFilter{CompanyID: &company.ID, Limit: defaultListLimit}
	ownerView := viewer.Identity != nil && viewer.Identity.ID == company.ID
	if !ownerView && !viewer.Staff.CanModerate() {
		approved := domain.StatusApproved
		filter.Status = &approved
	}

	entries, err := s.catalog.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.withSummaries(ctx, entries)
}

func (s *CatalogService) withSummaries(ctx context.Context, entries []domain.CatalogEntry) ([]EntryListing, error) {
	ids := lo.Map(entries, func(e domain.CatalogEntry, _ int) string { return e.ID })
	summaries, err := s.summaries.Summaries(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return lo.Map(entries, func(e domain.CatalogEntry, _ int) EntryListing {
		return EntryListing{Entry: e, Rating: summaries[e.ID]}
	}), nil
}
