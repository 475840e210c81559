package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/xpertshub/internal/api/dto"
	"github.com/spec-kit/xpertshub/internal/auth"
	"github.com/spec-kit/xpertshub/internal/domain"
	"github.com/spec-kit/xpertshub/internal/service"
)

// ModerationHandler exposes the staff moderation queue.
type ModerationHandler struct {
	moderation *service.ModerationService
}

// NewModerationHandler constructs handler.
func NewModerationHandler(moderation *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

// Queue handles GET /moderation/services.
func (h *ModerationHandler) Queue(c *fiber.Ctx) error {
	page, err := pageParam(c)
	if err != nil {
		return err
	}
	entries, err := h.moderation.ListQueue(c.UserContext(), auth.StaffFromContext(c), c.Query("status"), page)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEntryListResponse(entries)})
}

// Approve handles POST /moderation/services/:id/approve.
func (h *ModerationHandler) Approve(c *fiber.Ctx) error {
	entry, err := h.moderation.Approve(c.UserContext(), auth.StaffFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewServiceResponse(*entry, domain.RatingSummary{})})
}

// Reject handles POST /moderation/services/:id/reject.
func (h *ModerationHandler) Reject(c *fiber.Ctx) error {
	entry, err := h.moderation.Reject(c.UserContext(), auth.StaffFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewServiceResponse(*entry, domain.RatingSummary{})})
}

// ApproveMany handles POST /moderation/services/approve.
func (h *ModerationHandler) ApproveMany(c *fiber.Ctx) error {
	return h.bulk(c, h.moderation.ApproveMany)
}

// RejectMany handles POST /moderation/services/reject.
func (h *ModerationHandler) RejectMany(c *fiber.Ctx) error {
	return h.bulk(c, h.moderation.RejectMany)
}

type bulkAction func(ctx context.Context, staff *domain.StaffMember, ids []string) (int, error)

func (h *ModerationHandler) bulk(c *fiber.Ctx, action bulkAction) error {
	var req dto.BulkModerationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	changed, err := action(c.UserContext(), auth.StaffFromContext(c), req.IDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BulkModerationResponse{Changed: changed}})
}
