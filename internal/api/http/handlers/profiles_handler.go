package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/xpertshub/internal/api/dto"
	"github.com/spec-kit/xpertshub/internal/service"
)

// ProfilesHandler serves public profile pages and platform statistics.
type ProfilesHandler struct {
	profiles *service.ProfileService
	stats    *service.StatsService
}

// NewProfilesHandler constructs handler.
func NewProfilesHandler(profiles *service.ProfileService, stats *service.StatsService) *ProfilesHandler {
	return &ProfilesHandler{profiles: profiles, stats: stats}
}

// Get handles GET /profiles/:username.
func (h *ProfilesHandler) Get(c *fiber.Ctx) error {
	profile, err := h.profiles.Get(c.UserContext(), viewerFrom(c), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(profile)})
}

// Stats handles GET /stats.
func (h *ProfilesHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.stats.Platform(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
