package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/xpertshub/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventServiceRequestCreated EventType = "service_request_created"
	EventServiceModerated      EventType = "service_moderated"
	EventRatingCreated         EventType = "rating_created"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type       domain.SubjectType `json:"type"`
	IdentityID *string            `json:"identity_id,omitempty"`
	StaffID    *string            `json:"staff_id,omitempty"`
}

// IdentityActor builds an actor for a customer or company.
func IdentityActor(id string) Actor {
	return Actor{Type: domain.SubjectTypeIdentity, IdentityID: &id}
}

// StaffActor builds an actor for a staff member.
func StaffActor(id string) Actor {
	return Actor{Type: domain.SubjectTypeStaff, StaffID: &id}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ServiceID string      `json:"service_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, serviceID string, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ServiceID: serviceID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ServiceRequestCreatedPayload carries everything the request emails need.
type ServiceRequestCreatedPayload struct {
	RequestID     string             `json:"request_id"`
	ServiceName   string             `json:"service_name"`
	Field         domain.FieldOfWork `json:"field"`
	CompanyID     string             `json:"company_id"`
	CompanyName   string             `json:"company_name"`
	CompanyEmail  string             `json:"company_email"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	Address       string             `json:"address"`
	DurationHours decimal.Decimal    `json:"duration_hours"`
	HourlyRate    decimal.Decimal    `json:"hourly_rate"`
	Cost          decimal.Decimal    `json:"cost"`
	RequestedAt   time.Time          `json:"requested_at"`
}

// ServiceModeratedPayload payload.
type ServiceModeratedPayload struct {
	OldStatus domain.ModerationStatus `json:"old_status"`
	NewStatus domain.ModerationStatus `json:"new_status"`
}

// RatingCreatedPayload payload.
type RatingCreatedPayload struct {
	RatingID string `json:"rating_id"`
	Score    int    `json:"score"`
}
