package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/xpertshub/internal/api/dto"
	"github.com/spec-kit/xpertshub/internal/auth"
	"github.com/spec-kit/xpertshub/internal/service"
)

// RatingsHandler exposes reviews of catalog entries.
type RatingsHandler struct {
	ratings *service.RatingService
}

// NewRatingsHandler constructs handler.
func NewRatingsHandler(ratings *service.RatingService) *RatingsHandler {
	return &RatingsHandler{ratings: ratings}
}

// Create handles POST /services/:id/ratings.
func (h *RatingsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateRatingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	rating, err := h.ratings.RateService(c.UserContext(), auth.IdentityFromContext(c), c.Params("id"), req.Input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRatingResponse(*rating)})
}

// List handles GET /services/:id/ratings.
func (h *RatingsHandler) List(c *fiber.Ctx) error {
	views, err := h.ratings.ListForEntry(c.UserContext(), viewerFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRatingListResponse(views)})
}
