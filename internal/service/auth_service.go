package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/xpertshub/internal/auth"
	"github.com/spec-kit/xpertshub/internal/cache"
	"github.com/spec-kit/xpertshub/internal/config"
	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/repository"
	apperrors "github.com/spec-kit/xpertshub/pkg/util/errorutil"
)

// maxUsernameAttempts bounds the suffix search in GenerateUsername.
const maxUsernameAttempts = 1000

// AuthSubject identifies the caller when changing password.
type AuthSubject struct {
	Type domain.SubjectType
	ID   string
}

// RegistrationInput is shared by customer and company sign-up.
type RegistrationInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// CustomerRegistration adds customer-only attributes.
type CustomerRegistration struct {
	RegistrationInput
	DateOfBirth *time.Time
}

// CompanyRegistration adds the company's field of work, which may be the
// "All in One" wildcard.
type CompanyRegistration struct {
	RegistrationInput
	FieldOfWork string
}

// Session is an issued access token.
type Session struct {
	Token       string
	Meta        domain.Token
	Identity    *domain.Identity
	StaffMember *domain.StaffMember
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	identities repository.IdentityRepository
	staff      repository.StaffRepository
	cache      *cache.Cache
	tokenMgr   *auth.TokenManager
	bcryptCost int
	now        func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	IdentityRepo repository.IdentityRepository
	StaffRepo    repository.StaffRepository
	Cache        *cache.Cache
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		identities: deps.IdentityRepo,
		staff:      deps.StaffRepo,
		cache:      deps.Cache,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
		now:        time.Now,
	}
}

// RegisterCustomer creates a customer account and signs it in.
func (s *AuthService) RegisterCustomer(ctx context.Context, input CustomerRegistration) (*Session, error) {
	if input.DateOfBirth != nil && input.DateOfBirth.After(s.now()) {
		return nil, apperrors.NewValidationError("date of birth cannot be in the future", map[string]any{"field": "date_of_birth"})
	}
	return s.register(ctx, input.RegistrationInput, func(username, email string) (*domain.Identity, error) {
		return domain.NewCustomer(username, email, input.DateOfBirth), nil
	})
}

// RegisterCompany creates a company account and signs it in.
func (s *AuthService) RegisterCompany(ctx context.Context, input CompanyRegistration) (*Session, error) {
	scope, err := domain.ParseFieldScope(strings.TrimSpace(input.FieldOfWork))
	if err != nil {
		return nil, apperrors.NewValidationError("unknown field of work", map[string]any{
			"field": "field_of_work",
			"kind":  string(domain.KindUnknownField),
		})
	}
	return s.register(ctx, input.RegistrationInput, func(username, email string) (*domain.Identity, error) {
		return domain.NewCompany(username, email, scope)
	})
}

func (s *AuthService) register(ctx context.Context, input RegistrationInput, build func(username, email string) (*domain.Identity, error)) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.identities.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "password"})
		}
		return nil, apperrors.NewInternalError(err)
	}

	username, err := s.GenerateUsername(ctx, input.FirstName, input.LastName)
	if err != nil {
		return nil, err
	}

	identity, err := build(username, email)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	identity.FirstName = strings.TrimSpace(input.FirstName)
	identity.LastName = strings.TrimSpace(input.LastName)
	identity.PasswordHash = hash

	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("account already exists", nil)
		}
		return nil, apperrors.MapError(err)
	}
	s.cache.Delete(ctx, cache.StatsKey)
	return s.issueIdentity(identity)
}

// GenerateUsername derives "first.last", appending 1, 2, ... until unused.
func (s *AuthService) GenerateUsername(ctx context.Context, firstName, lastName string) (string, error) {
	base := usernameBase(firstName, lastName)
	if base == "" {
		return "", apperrors.NewValidationError("first name is required", map[string]any{"field": "first_name"})
	}

	candidate := base
	for counter := 1; counter <= maxUsernameAttempts; counter++ {
		exists, err := s.identities.UsernameExists(ctx, candidate)
		if err != nil {
			return "", apperrors.MapError(err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, counter)
	}
	return "", apperrors.NewConflict("could not allocate a username", nil)
}

func usernameBase(firstName, lastName string) string {
	first := slugPart(firstName)
	last := slugPart(lastName)
	switch {
	case first == "":
		return ""
	case last == "":
		return first
	default:
		return first + "." + last
	}
}

func slugPart(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), "")
}

// LoginIdentity authenticates a customer or company by email.
func (s *AuthService) LoginIdentity(ctx context.Context, email, password string) (*Session, error) {
	identity, err := s.identities.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(identity.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issueIdentity(identity)
}

// LoginStaff authenticates staff and returns role-bearing token.
func (s *AuthService) LoginStaff(ctx context.Context, email, password string) (*Session, error) {
	staff, err := s.staff.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(staff.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !staff.Active {
		return nil, apperrors.NewForbidden("staff account disabled")
	}
	meta, token, err := s.tokenMgr.GenerateToken(staff.ID, domain.SubjectTypeStaff, &staff.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{Token: token, Meta: meta, StaffMember: staff}, nil
}

func (s *AuthService) issueIdentity(identity *domain.Identity) (*Session, error) {
	meta, token, err := s.tokenMgr.GenerateToken(identity.ID, domain.SubjectTypeIdentity, nil)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{Token: token, Meta: meta, Identity: identity}, nil
}

// ChangePassword verifies current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, subject AuthSubject, currentPassword, newPassword string) error {
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return apperrors.NewValidationError(err.Error(), map[string]any{"field": "new_password"})
		}
		return apperrors.NewInternalError(err)
	}

	switch subject.Type {
	case domain.SubjectTypeIdentity:
		identity, err := s.identities.GetByID(ctx, subject.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if err := auth.ComparePassword(identity.PasswordHash, currentPassword); err != nil {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		return apperrors.MapError(s.identities.UpdatePassword(ctx, identity.ID, hash))
	case domain.SubjectTypeStaff:
		staff, err := s.staff.GetByID(ctx, subject.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if err := auth.ComparePassword(staff.PasswordHash, currentPassword); err != nil {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		return apperrors.MapError(s.staff.UpdatePassword(ctx, staff.ID, hash))
	default:
		return apperrors.NewUnauthorized("unknown subject")
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
