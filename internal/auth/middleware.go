package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/xpertshub/internal/domain"
	apperrors "github.com/spec-kit/xpertshub/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller: exactly one of Identity
// or Staff is set.
type Principal struct {
	SubjectType domain.SubjectType
	Identity    *domain.Identity
	Staff       *domain.StaffMember
}

// IdentityLookup loads customers and companies by id.
type IdentityLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
}

// StaffLookup loads staff members by id.
type StaffLookup interface {
	GetByID(ctx context.Context, id string) (*domain.StaffMember, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens     *TokenManager
	identities IdentityLookup
	staff      StaffLookup
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, identities IdentityLookup, staff StaffLookup) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, identities: identities, staff: staff}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	principal, err := m.authenticate(c.UserContext(), authHeader)
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Optional loads a principal when a bearer token is supplied and lets
// anonymous requests through. A supplied but invalid token is still rejected.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Next()
	}
	principal, err := m.authenticate(c.UserContext(), authHeader)
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

func (m *AuthMiddleware) authenticate(ctx context.Context, authHeader string) (*Principal, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	principal := &Principal{SubjectType: claims.Kind}

	switch claims.Kind {
	case domain.SubjectTypeIdentity:
		identity, err := m.identities.GetByID(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewUnauthorized("account not found")
			}
			return nil, apperrors.MapError(err)
		}
		principal.Identity = identity
	case domain.SubjectTypeStaff:
		staff, err := m.staff.GetByID(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewUnauthorized("staff not found")
			}
			return nil, apperrors.MapError(err)
		}
		if !staff.Active {
			return nil, apperrors.NewUnauthorized("staff account disabled")
		}
		principal.Staff = staff
	default:
		return nil, apperrors.NewUnauthorized("unknown subject")
	}
	return principal, nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// IdentityFromContext returns the authenticated customer or company, if any.
func IdentityFromContext(c *fiber.Ctx) *domain.Identity {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return nil
	}
	return principal.Identity
}

// StaffFromContext returns the authenticated staff member, if any.
func StaffFromContext(c *fiber.Ctx) *domain.StaffMember {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return nil
	}
	return principal.Staff
}
