package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationKind classifies a domain rule violation.
type ValidationKind string

const (
	KindInvalidRate         ValidationKind = "InvalidRate"
	KindMissingField        ValidationKind = "MissingField"
	KindUnknownField        ValidationKind = "UnknownField"
	KindFieldMismatch       ValidationKind = "FieldMismatch"
	KindDurationTooShort    ValidationKind = "DurationTooShort"
	KindInvalidDuration     ValidationKind = "InvalidDuration"
	KindServiceNotAvailable ValidationKind = "ServiceNotAvailable"
	KindScoreOutOfRange     ValidationKind = "ScoreOutOfRange"
	KindAlreadyRated        ValidationKind = "AlreadyRated"
	KindInvalidFormat       ValidationKind = "InvalidFormat"
)

// Amounts are stored as fixed-point NUMERIC(precision, AmountScale) columns.
const (
	AmountScale         = 2
	HourlyRatePrecision = 10
	DurationPrecision   = 5
)

var (
	// MaxHourlyRate is the largest storable hourly rate.
	MaxHourlyRate = maxNumeric(HourlyRatePrecision)
	// MaxDurationHours is the largest storable duration.
	MaxDurationHours = maxNumeric(DurationPrecision)
)

func maxNumeric(precision int32) decimal.Decimal {
	return decimal.New(1, precision-AmountScale).Sub(decimal.New(1, -AmountScale))
}

// FitsNumeric reports whether d is storable in NUMERIC(precision, AmountScale)
// without rounding or overflow.
func FitsNumeric(d decimal.Decimal, precision int32) bool {
	if !d.Equal(d.Truncate(AmountScale)) {
		return false
	}
	return d.Abs().LessThanOrEqual(maxNumeric(precision))
}

// ValidationError is a recoverable input error tied to one input field.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationDetails describes the error for API consumers.
func (e *ValidationError) ValidationDetails() map[string]any {
	return map[string]any{
		"kind":  string(e.Kind),
		"field": e.Field,
	}
}

func invalid(kind ValidationKind, field, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// ServiceDraft is unvalidated catalog entry input. Any status supplied by a
// client is ignored; new entries are always pending.
type ServiceDraft struct {
	Name        string
	Description string
	Field       string
	HourlyRate  string
}

// ValidatedService is a draft that passed ValidateNewService.
type ValidatedService struct {
	Name        string
	Description string
	Field       FieldOfWork
	HourlyRate  decimal.Decimal
}

// Entry builds the pending catalog entry owned by companyID.
func (v ValidatedService) Entry(companyID string) *CatalogEntry {
	return &CatalogEntry{
		CompanyID:   companyID,
		Name:        v.Name,
		Description: v.Description,
		Field:       v.Field,
		HourlyRate:  v.HourlyRate,
		Status:      StatusPending,
	}
}

// ValidateNewService checks a draft in rule order; the first failure wins.
func ValidateNewService(identity *Identity, draft ServiceDraft) (ValidatedService, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(draft.HourlyRate))
	if err != nil || !rate.IsPositive() {
		return ValidatedService{}, invalid(KindInvalidRate, "hourly_rate", "hourly rate must be a positive amount")
	}
	if !FitsNumeric(rate, HourlyRatePrecision) {
		return ValidatedService{}, invalid(KindInvalidRate, "hourly_rate",
			"hourly rate must have at most %d decimal places and not exceed %s", AmountScale, MaxHourlyRate)
	}

	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return ValidatedService{}, invalid(KindMissingField, "name", "name is required")
	}
	description := strings.TrimSpace(draft.Description)
	if description == "" {
		return ValidatedService{}, invalid(KindMissingField, "description", "description is required")
	}

	field := FieldOfWork(strings.TrimSpace(draft.Field))
	if !field.Valid() {
		return ValidatedService{}, invalid(KindUnknownField, "field", "unknown field of work %q", draft.Field)
	}

	if company, ok := identity.AsCompany(); ok {
		if allowed, concrete := company.Scope.Field(); concrete && allowed != field {
			return ValidatedService{}, invalid(KindFieldMismatch, "field",
				"You can only create services in your field of work: %s", allowed)
		}
	}

	return ValidatedService{
		Name:        name,
		Description: description,
		Field:       field,
		HourlyRate:  rate,
	}, nil
}

// ParseDurationHours parses a requested duration. More than AmountScale
// decimal places is a format error.
func ParseDurationHours(raw string) (decimal.Decimal, error) {
	hours, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, invalid(KindInvalidDuration, "duration_hours", "duration must be a number of hours")
	}
	if !hours.Equal(hours.Truncate(AmountScale)) {
		return decimal.Zero, invalid(KindInvalidDuration, "duration_hours",
			"duration must have at most %d decimal places", AmountScale)
	}
	return hours, nil
}

// ValidateRequest checks a booking of entry for the given duration.
func ValidateRequest(entry *CatalogEntry, durationHours decimal.Decimal) error {
	if durationHours.LessThan(MinimumDurationHours) {
		return invalid(KindDurationTooShort, "duration_hours", "Minimum service time is %s hours", MinimumDurationHours)
	}
	if !FitsNumeric(durationHours, DurationPrecision) {
		return invalid(KindInvalidDuration, "duration_hours",
			"duration must have at most %d decimal places and not exceed %s hours", AmountScale, MaxDurationHours)
	}
	if !entry.IsApproved() {
		return invalid(KindServiceNotAvailable, "service_id", "service is not available for requests")
	}
	return nil
}

// ValidateRating checks a score and the one-rating-per-customer rule.
// alreadyRated must come from the rating ledger for (entry, customer).
func ValidateRating(entry *CatalogEntry, customer *Identity, score int, alreadyRated bool) error {
	if score < MinScore || score > MaxScore {
		return invalid(KindScoreOutOfRange, "score", "score must be between %d and %d", MinScore, MaxScore)
	}
	if alreadyRated {
		return invalid(KindAlreadyRated, "score", "%s has already rated %s", customer.Username, entry.Name)
	}
	return nil
}
