package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/xpertshub/internal/pricing"
)

// MinimumDurationHours is the shortest bookable duration.
var MinimumDurationHours = decimal.RequireFromString("0.5")

// ServiceRequest is a customer's booking of an approved catalog entry.
// HourlyRate is the entry's rate snapshotted when the request was made.
type ServiceRequest struct {
	ID            string
	EntryID       string
	CustomerID    string
	Address       string
	DurationHours decimal.Decimal
	HourlyRate    decimal.Decimal
	CreatedAt     time.Time
}

// Cost derives the request cost from the snapshotted rate.
func (r *ServiceRequest) Cost() decimal.Decimal {
	return pricing.CalculateCost(r.HourlyRate, r.DurationHours)
}

// ServiceRequestView joins a request with the parties and entry it refers to.
type ServiceRequestView struct {
	Request      ServiceRequest
	EntryName    string
	EntryField   FieldOfWork
	CompanyID    string
	CompanyName  string
	CompanyMail  string
	CustomerName string
	CustomerMail string
}
