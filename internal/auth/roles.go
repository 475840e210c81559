package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/xpertshub/pkg/util/errorutil"
)

// RequireIdentity ensures a customer or company is authenticated.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IdentityFromContext(c) == nil {
			return apperrors.NewForbidden("customer or company account required")
		}
		return c.Next()
	}
}

// RequireCustomer ensures the caller is a customer.
func RequireCustomer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IdentityFromContext(c).IsCustomer() {
			return apperrors.NewForbidden("customer account required")
		}
		return c.Next()
	}
}

// RequireCompany ensures the caller is a company.
func RequireCompany() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IdentityFromContext(c).IsCompany() {
			return apperrors.NewForbidden("company account required")
		}
		return c.Next()
	}
}

// RequireModerator ensures an active staff member with moderation rights.
func RequireModerator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !StaffFromContext(c).CanModerate() {
			return apperrors.NewForbidden("moderator role required")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures caller is authenticated (identity or staff).
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
