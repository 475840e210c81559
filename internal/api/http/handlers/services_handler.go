package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/spec-kit/xpertshub/internal/api/dto"
	"github.com/spec-kit/xpertshub/internal/auth"
	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/service"
)

// ServicesHandler exposes the catalog.
type ServicesHandler struct {
	catalog *service.CatalogService
}

// NewServicesHandler constructs handler.
func NewServicesHandler(catalog *service.CatalogService) *ServicesHandler {
	return &ServicesHandler{catalog: catalog}
}

func viewerFrom(c *fiber.Ctx) service.Viewer {
	return service.Viewer{Identity: auth.IdentityFromContext(c), Staff: auth.StaffFromContext(c)}
}

// List handles GET /services.
func (h *ServicesHandler) List(c *fiber.Ctx) error {
	page, err := pageParam(c)
	if err != nil {
		return err
	}
	result, err := h.catalog.ListApproved(c.UserContext(), c.Query("field"), page)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.NewServiceListResponse(result.Entries),
		"meta": dto.NewPageMeta(result),
	})
}

// Get handles GET /services/:id.
func (h *ServicesHandler) Get(c *fiber.Ctx) error {
	detail, err := h.catalog.GetService(c.UserContext(), viewerFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewServiceDetailResponse(detail)})
}

// Create handles POST /services.
func (h *ServicesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateServiceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	entry, err := h.catalog.CreateService(c.UserContext(), auth.IdentityFromContext(c), req.Draft())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.NewServiceResponse(*entry, domain.RatingSummary{}),
	})
}

// Fields handles GET /fields.
func (h *ServicesHandler) Fields(c *fiber.Ctx) error {
	fields := lo.Map(domain.Fields(), func(f domain.FieldOfWork, _ int) string { return f.String() })
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"fields":         fields,
			"company_scopes": append(fields, domain.AllInOneLabel),
		},
	})
}
