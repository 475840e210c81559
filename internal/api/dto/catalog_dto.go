package dto

import (
	"time"

	"github.com/samber/lo"

	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/pricing"
	"github.com/spec-kit/xpertshub/internal/service"
)

// CreateServiceRequest payload for POST /services. A status sent by the
// client is ignored. Presence and format are left to the domain validator,
// which reports the first failing rule.
type CreateServiceRequest struct {
	Name        string     `json:"name" validate:"max=255"`
	Description string     `json:"description"`
	Field       string     `json:"field"`
	HourlyRate  NumberText `json:"hourly_rate"`
}

// Draft converts the payload to domain input.
func (r CreateServiceRequest) Draft() domain.ServiceDraft {
	return domain.ServiceDraft{
		Name:        r.Name,
		Description: r.Description,
		Field:       r.Field,
		HourlyRate:  r.HourlyRate.String(),
	}
}

// ServiceResponse is a catalog entry as seen by clients.
type ServiceResponse struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Field       domain.FieldOfWork      `json:"field"`
	HourlyRate  string                  `json:"hourly_rate"`
	Status      domain.ModerationStatus `json:"status"`
	CompanyID   string                  `json:"company_id"`
	Company     string                  `json:"company"`
	Rating      domain.RatingSummary    `json:"rating"`
	CreatedAt   time.Time               `json:"created_at"`
	ModeratedAt *time.Time              `json:"moderated_at,omitempty"`
}

// NewServiceResponse renders an entry with its rating aggregate.
func NewServiceResponse(entry domain.CatalogEntry, rating domain.RatingSummary) ServiceResponse {
	return ServiceResponse{
		ID:          entry.ID,
		Name:        entry.Name,
		Title:       entry.String(),
		Description: entry.Description,
		Field:       entry.Field,
		HourlyRate:  pricing.FormatAmount(entry.HourlyRate),
		Status:      entry.Status,
		CompanyID:   entry.CompanyID,
		Company:     entry.CompanyName,
		Rating:      rating,
		CreatedAt:   entry.CreatedAt,
		ModeratedAt: entry.ModeratedAt,
	}
}

// NewServiceListResponse renders listings in order.
func NewServiceListResponse(listings []service.EntryListing) []ServiceResponse {
	return lo.Map(listings, func(l service.EntryListing, _ int) ServiceResponse {
		return NewServiceResponse(l.Entry, l.Rating)
	})
}

// NewEntryListResponse renders bare entries, as in the moderation queue.
func NewEntryListResponse(entries []domain.CatalogEntry) []ServiceResponse {
	return lo.Map(entries, func(e domain.CatalogEntry, _ int) ServiceResponse {
		return NewServiceResponse(e, domain.RatingSummary{})
	})
}

// ServiceDetailResponse adds the caller's capabilities to an entry.
type ServiceDetailResponse struct {
	ServiceResponse
	CanRequest      bool `json:"can_request"`
	CanRate         bool `json:"can_rate"`
	CanViewRequests bool `json:"can_view_requests"`
}

// NewServiceDetailResponse renders a single entry for its viewer.
func NewServiceDetailResponse(detail *service.EntryDetail) ServiceDetailResponse {
	return ServiceDetailResponse{
		ServiceResponse: NewServiceResponse(detail.Entry, detail.Rating),
		CanRequest:      detail.CanRequest,
		CanRate:         detail.CanRate,
		CanViewRequests: detail.CanViewRequests,
	}
}

// PageMeta describes a page of results.
type PageMeta struct {
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	Total      int                 `json:"total"`
	TotalPages int                 `json:"total_pages"`
	Field      *domain.FieldOfWork `json:"field,omitempty"`
}

// NewPageMeta extracts pagination metadata.
func NewPageMeta(page *service.CatalogPage) PageMeta {
	return PageMeta{
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
		Field:      page.Field,
	}
}
