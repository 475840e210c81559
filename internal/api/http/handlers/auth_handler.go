package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/xpertshub/internal/api/dto"
	"github.com/spec-kit/xpertshub/internal/auth"
	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/service"
	apperrors "github.com/spec-kit/xpertshub/pkg/util/errorutil"
)

// AuthHandler exposes sign-up and login endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// RegisterCustomer handles POST /auth/customers/register.
func (h *AuthHandler) RegisterCustomer(c *fiber.Ctx) error {
	var req dto.CustomerRegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	input := service.CustomerRegistration{RegistrationInput: registration(req.RegisterRequest)}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(dto.DateLayout, req.DateOfBirth)
		if err != nil {
			return apperrors.NewValidationError("invalid date of birth", map[string]any{"field": "date_of_birth"})
		}
		input.DateOfBirth = &dob
	}

	session, err := h.auth.RegisterCustomer(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": identitySession(session)})
}

// RegisterCompany handles POST /auth/companies/register.
func (h *AuthHandler) RegisterCompany(c *fiber.Ctx) error {
	var req dto.CompanyRegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.auth.RegisterCompany(c.UserContext(), service.CompanyRegistration{
		RegistrationInput: registration(req.RegisterRequest),
		FieldOfWork:       req.FieldOfWork,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": identitySession(session)})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.auth.LoginIdentity(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": identitySession(session)})
}

// StaffLogin handles POST /auth/staff/login.
func (h *AuthHandler) StaffLogin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.auth.LoginStaff(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"staff": dto.NewStaffResponse(session.StaffMember),
			"auth":  authResponse(session),
		},
	})
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.PasswordChangeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	subject := service.AuthSubject{Type: principal.SubjectType}
	switch principal.SubjectType {
	case domain.SubjectTypeIdentity:
		subject.ID = principal.Identity.ID
	case domain.SubjectTypeStaff:
		subject.ID = principal.Staff.ID
	default:
		return apperrors.NewUnauthorized("unknown subject")
	}

	if err := h.auth.ChangePassword(c.UserContext(), subject, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_changed"}})
}

func registration(req dto.RegisterRequest) service.RegistrationInput {
	return service.RegistrationInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	}
}

func authResponse(session *service.Session) dto.AuthResponse {
	return dto.AuthResponse{Token: session.Token, ExpiresAt: session.Meta.ExpiresAt}
}

func identitySession(session *service.Session) fiber.Map {
	return fiber.Map{
		"identity": dto.NewIdentityResponse(session.Identity, true),
		"auth":     authResponse(session),
	}
}
