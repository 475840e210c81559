package domain

import (
	"fmt"
	"strings"
)

// FieldOfWork is a concrete service category.
type FieldOfWork string

// AllInOneLabel is the wire/storage label of the wildcard field scope. It is
// never a valid FieldOfWork.
const AllInOneLabel = "All in One"

const (
	FieldAirConditioner FieldOfWork = "Air Conditioner"
	FieldCarpentry      FieldOfWork = "Carpentry"
	FieldElectricity    FieldOfWork = "Electricity"
	FieldGardening      FieldOfWork = "Gardening"
	FieldHomeMachines   FieldOfWork = "Home Machines"
	FieldHousekeeping   FieldOfWork = "Housekeeping"
	FieldInteriorDesign FieldOfWork = "Interior Design"
	FieldLocks          FieldOfWork = "Locks"
	FieldPainting       FieldOfWork = "Painting"
	FieldPlumbing       FieldOfWork = "Plumbing"
	FieldWaterHeaters   FieldOfWork = "Water Heaters"
)

// fieldsOfWork is the process-wide enumeration, in display order. It is never
// mutated after package init; callers get copies from Fields.
var fieldsOfWork = [...]FieldOfWork{
	FieldAirConditioner,
	FieldCarpentry,
	FieldElectricity,
	FieldGardening,
	FieldHomeMachines,
	FieldHousekeeping,
	FieldInteriorDesign,
	FieldLocks,
	FieldPainting,
	FieldPlumbing,
	FieldWaterHeaters,
}

var fieldIndex = func() map[FieldOfWork]struct{} {
	idx := make(map[FieldOfWork]struct{}, len(fieldsOfWork))
	for _, f := range fieldsOfWork {
		idx[f] = struct{}{}
	}
	return idx
}()

// Fields returns the enumeration of concrete fields of work.
func Fields() []FieldOfWork {
	out := make([]FieldOfWork, len(fieldsOfWork))
	copy(out[:], fieldsOfWork[:])
	return out
}

// Valid reports whether f is one of the enumerated fields.
func (f FieldOfWork) Valid() bool {
	_, ok := fieldIndex[f]
	return ok
}

func (f FieldOfWork) String() string {
	return string(f)
}

// ParseFieldOfWork resolves a concrete field. The wildcard label is rejected.
func ParseFieldOfWork(raw string) (FieldOfWork, error) {
	f := FieldOfWork(strings.TrimSpace(raw))
	if !f.Valid() {
		return "", fmt.Errorf("unknown field of work %q", raw)
	}
	return f, nil
}

// FieldScope describes which fields a company may publish services in:
// either exactly one concrete field or any field.
type FieldScope struct {
	field FieldOfWork
	any   bool
}

// ConcreteScope restricts a company to a single field.
func ConcreteScope(f FieldOfWork) FieldScope {
	return FieldScope{field: f}
}

// AnyFieldScope is the wildcard scope.
func AnyFieldScope() FieldScope {
	return FieldScope{any: true}
}

// ParseFieldScope accepts either the wildcard label or a concrete field.
func ParseFieldScope(raw string) (FieldScope, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == AllInOneLabel {
		return AnyFieldScope(), nil
	}
	f, err := ParseFieldOfWork(trimmed)
	if err != nil {
		return FieldScope{}, err
	}
	return ConcreteScope(f), nil
}

// IsAny reports whether the scope is the wildcard.
func (s FieldScope) IsAny() bool {
	return s.any
}

// Field returns the concrete field; ok is false for the wildcard.
func (s FieldScope) Field() (FieldOfWork, bool) {
	if s.any {
		return "", false
	}
	return s.field, true
}

// Valid reports whether the scope was built from a known field or is the wildcard.
func (s FieldScope) Valid() bool {
	return s.any || s.field.Valid()
}

// Allows reports whether a service in field f may be created under this scope.
func (s FieldScope) Allows(f FieldOfWork) bool {
	if !f.Valid() {
		return false
	}
	if s.any {
		return true
	}
	return s.field == f
}

// String renders the storage label.
func (s FieldScope) String() string {
	if s.any {
		return AllInOneLabel
	}
	return string(s.field)
}
