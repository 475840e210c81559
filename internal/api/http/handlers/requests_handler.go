package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/xpertshub/internal/api/dto"
	"github.com/spec-kit/xpertshub/internal/auth"
	"github.com/spec-kit/xpertshub/internal/service"
)

// RequestsHandler exposes service request booking and listings.
type RequestsHandler struct {
	requests *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requests *service.RequestService) *RequestsHandler {
	return &RequestsHandler{requests: requests}
}

// Create handles POST /services/:id/requests.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateServiceRequestRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	view, err := h.requests.Create(c.UserContext(), auth.IdentityFromContext(c), c.Params("id"), req.Input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewServiceRequestResponse(*view)})
}

// ListForService handles GET /services/:id/requests.
func (h *RequestsHandler) ListForService(c *fiber.Ctx) error {
	page, err := pageParam(c)
	if err != nil {
		return err
	}
	views, err := h.requests.ListForEntry(c.UserContext(), auth.IdentityFromContext(c), c.Params("id"), page)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewServiceRequestListResponse(views)})
}

// ListMine handles GET /me/requests.
func (h *RequestsHandler) ListMine(c *fiber.Ctx) error {
	page, err := pageParam(c)
	if err != nil {
		return err
	}
	views, err := h.requests.ListMine(c.UserContext(), auth.IdentityFromContext(c), page)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewServiceRequestListResponse(views)})
}
