package dto

import (
	"time"

	"github.com/samber/lo"

	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/pricing"
	"github.com/spec-kit/xpertshub/internal/service"
)

// CreateServiceRequestRequest payload for POST /services/:id/requests.
type CreateServiceRequestRequest struct {
	Address       string     `json:"address"`
	DurationHours NumberText `json:"duration_hours"`
}

// Input converts the payload to service input.
func (r CreateServiceRequestRequest) Input() service.RequestInput {
	return service.RequestInput{Address: r.Address, DurationHours: r.DurationHours.String()}
}

// ServiceRequestResponse is a booked request with its derived cost.
type ServiceRequestResponse struct {
	ID            string             `json:"id"`
	ServiceID     string             `json:"service_id"`
	ServiceName   string             `json:"service_name"`
	Field         domain.FieldOfWork `json:"field"`
	CompanyID     string             `json:"company_id"`
	Company       string             `json:"company"`
	Customer      string             `json:"customer"`
	Address       string             `json:"address"`
	DurationHours string             `json:"duration_hours"`
	HourlyRate    string             `json:"hourly_rate"`
	Cost          string             `json:"cost"`
	CreatedAt     time.Time          `json:"created_at"`
}

// NewServiceRequestResponse renders a request view.
func NewServiceRequestResponse(view domain.ServiceRequestView) ServiceRequestResponse {
	req := view.Request
	return ServiceRequestResponse{
		ID:            req.ID,
		ServiceID:     req.EntryID,
		ServiceName:   view.EntryName,
		Field:         view.EntryField,
		CompanyID:     view.CompanyID,
		Company:       view.CompanyName,
		Customer:      view.CustomerName,
		Address:       req.Address,
		DurationHours: req.DurationHours.String(),
		HourlyRate:    pricing.FormatAmount(req.HourlyRate),
		Cost:          pricing.FormatAmount(req.Cost()),
		CreatedAt:     req.CreatedAt,
	}
}

// NewServiceRequestListResponse renders request views in order.
func NewServiceRequestListResponse(views []domain.ServiceRequestView) []ServiceRequestResponse {
	return lo.Map(views, func(v domain.ServiceRequestView, _ int) ServiceRequestResponse {
		return NewServiceRequestResponse(v)
	})
}
