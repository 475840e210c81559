package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogEntry is a priced service offered by a company, gated by moderation.
// CompanyName is filled on reads only.
type CatalogEntry struct {
	ID          string
	CompanyID   string
	CompanyName string
	Name        string
	Description string
	Field       FieldOfWork
	HourlyRate  decimal.Decimal
	Status      ModerationStatus
	CreatedAt   time.Time
	ModeratedBy *string
	ModeratedAt *time.Time
}

// IsApproved reports whether the entry is publicly visible and requestable.
func (e *CatalogEntry) IsApproved() bool {
	return e != nil && e.Status == StatusApproved
}

// OwnedBy reports whether the identity owns the entry.
func (e *CatalogEntry) OwnedBy(identity *Identity) bool {
	return e != nil && identity != nil && identity.IsCompany() && e.CompanyID == identity.ID
}

// String mirrors listing titles, e.g. "Pipe Repair - Pending Approval".
func (e *CatalogEntry) String() string {
	if e.Status == StatusApproved {
		return e.Name
	}
	return e.Name + " - " + e.Status.Label()
}
