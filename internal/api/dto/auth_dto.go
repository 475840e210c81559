package dto

import (
	"time"

	"github.com/spec-kit/xpertshub/internal/domain"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// RegisterRequest carries the fields shared by both sign-up forms.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

// CustomerRegisterRequest payload for POST /auth/customers/register.
type CustomerRegisterRequest struct {
	RegisterRequest
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

// CompanyRegisterRequest payload for POST /auth/companies/register.
type CompanyRegisterRequest struct {
	RegisterRequest
	FieldOfWork string `json:"field_of_work" validate:"required"`
}

// LoginRequest payload for identity and staff login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IdentityResponse is the public view of a customer or company.
type IdentityResponse struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email,omitempty"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Role        domain.Role `json:"role"`
	FieldOfWork *string     `json:"field_of_work,omitempty"`
	DateOfBirth *string     `json:"date_of_birth,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewIdentityResponse renders identity. Email and date of birth are only
// included when private is set.
func NewIdentityResponse(identity *domain.Identity, private bool) IdentityResponse {
	resp := IdentityResponse{
		ID:          identity.ID,
		Username:    identity.Username,
		FirstName:   identity.FirstName,
		LastName:    identity.LastName,
		Role:        identity.Role(),
		FieldOfWork: identity.FieldOfWorkLabel(),
		CreatedAt:   identity.CreatedAt,
	}
	if private {
		resp.Email = identity.Email
		if dob := identity.DateOfBirth(); dob != nil {
			formatted := dob.Format(DateLayout)
			resp.DateOfBirth = &formatted
		}
	}
	return resp
}

// StaffResponse is the view of a staff member.
type StaffResponse struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Email  string           `json:"email"`
	Role   domain.StaffRole `json:"role"`
	Active bool             `json:"active"`
}

// NewStaffResponse renders a staff member.
func NewStaffResponse(staff *domain.StaffMember) StaffResponse {
	return StaffResponse{ID: staff.ID, Name: staff.Name, Email: staff.Email, Role: staff.Role, Active: staff.Active}
}
