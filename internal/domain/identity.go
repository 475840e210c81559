package domain

import (
	"errors"
	"fmt"
	"time"
)

// Role tags an identity as a customer or a company.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleCompany  Role = "company"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleCompany
}

// Profile carries the role-specific part of an identity. Only
// CustomerProfile and CompanyProfile implement it.
type Profile interface {
	Role() Role
	isProfile()
}

// CustomerProfile holds customer-only attributes.
type CustomerProfile struct {
	DateOfBirth *time.Time
}

// Role implements Profile.
func (CustomerProfile) Role() Role { return RoleCustomer }
func (CustomerProfile) isProfile() {}

// CompanyProfile holds company-only attributes.
type CompanyProfile struct {
	Scope FieldScope
}

// Role implements Profile.
func (CompanyProfile) Role() Role { return RoleCompany }
func (CompanyProfile) isProfile() {}

// Identity is a registered marketplace account. The role is fixed by the
// profile chosen at construction and cannot change afterwards.
type Identity struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time

	profile Profile
}

var errMissingProfile = errors.New("identity has no profile")

// NewCustomer builds a customer identity.
func NewCustomer(username, email string, dateOfBirth *time.Time) *Identity {
	return &Identity{
		Username: username,
		Email:    email,
		profile:  CustomerProfile{DateOfBirth: dateOfBirth},
	}
}

// NewCompany builds a company identity. The scope must be valid.
func NewCompany(username, email string, scope FieldScope) (*Identity, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("company requires a field of work")
	}
	return &Identity{
		Username: username,
		Email:    email,
		profile:  CompanyProfile{Scope: scope},
	}, nil
}

// RestoreProfile rebuilds the role-specific profile from stored columns,
// enforcing that customers never carry a field of work and companies always do.
func RestoreProfile(role Role, fieldOfWork *string, dateOfBirth *time.Time) (Profile, error) {
	switch role {
	case RoleCustomer:
		if fieldOfWork != nil && *fieldOfWork != "" {
			return nil, fmt.Errorf("customer cannot have a field of work")
		}
		return CustomerProfile{DateOfBirth: dateOfBirth}, nil
	case RoleCompany:
		if fieldOfWork == nil {
			return nil, fmt.Errorf("company requires a field of work")
		}
		scope, err := ParseFieldScope(*fieldOfWork)
		if err != nil {
			return nil, err
		}
		return CompanyProfile{Scope: scope}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

// RestoreIdentity rehydrates a stored identity row.
func RestoreIdentity(base Identity, role Role, fieldOfWork *string, dateOfBirth *time.Time) (*Identity, error) {
	profile, err := RestoreProfile(role, fieldOfWork, dateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("identity %s: %w", base.ID, err)
	}
	restored := base
	restored.profile = profile
	return &restored, nil
}

// WithProfile attaches a restored profile. It is intended for repositories
// hydrating rows; it refuses to change the role of an identity that already has one.
func (i *Identity) WithProfile(p Profile) error {
	if p == nil {
		return errMissingProfile
	}
	if i.profile != nil && i.profile.Role() != p.Role() {
		return fmt.Errorf("identity role is immutable")
	}
	i.profile = p
	return nil
}

// Profile returns the role-specific profile.
func (i *Identity) Profile() Profile {
	return i.profile
}

// Role returns the identity role, or an empty role when unset.
func (i *Identity) Role() Role {
	if i == nil || i.profile == nil {
		return ""
	}
	return i.profile.Role()
}

// IsCustomer reports whether the identity is a customer.
func (i *Identity) IsCustomer() bool {
	return i.Role() == RoleCustomer
}

// IsCompany reports whether the identity is a company.
func (i *Identity) IsCompany() bool {
	return i.Role() == RoleCompany
}

// AsCustomer returns the customer profile when the identity is a customer.
func (i *Identity) AsCustomer() (CustomerProfile, bool) {
	if i == nil {
		return CustomerProfile{}, false
	}
	p, ok := i.profile.(CustomerProfile)
	return p, ok
}

// AsCompany returns the company profile when the identity is a company.
func (i *Identity) AsCompany() (CompanyProfile, bool) {
	if i == nil {
		return CompanyProfile{}, false
	}
	p, ok := i.profile.(CompanyProfile)
	return p, ok
}

// FieldOfWorkLabel is the stored field-of-work column: nil for customers.
func (i *Identity) FieldOfWorkLabel() *string {
	company, ok := i.AsCompany()
	if !ok {
		return nil
	}
	label := company.Scope.String()
	return &label
}

// DateOfBirth is the stored date-of-birth column: nil for companies.
func (i *Identity) DateOfBirth() *time.Time {
	customer, ok := i.AsCustomer()
	if !ok {
		return nil
	}
	return customer.DateOfBirth
}

// DisplayName prefers the full name and falls back to the username.
func (i *Identity) DisplayName() string {
	name := i.FirstName
	if i.LastName != "" {
		if name != "" {
			name += " "
		}
		name += i.LastName
	}
	if name == "" {
		return i.Username
	}
	return name
}
