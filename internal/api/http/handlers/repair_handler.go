package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-dataset/internal/api/dto"
	"github.com/spec-kit/ticket-dataset/internal/domain"
	"github.com/spec-kit/ticket-dataset/internal/service"
	"github.com/spec-kit/ticket-dataset/internal/timestamp"
	"github.com/spec-kit/ticket-dataset/pkg/util/errorutil"
)

// MaxRepairBatch bounds POST /v1/repair.
const MaxRepairBatch = 10000

// RepairHandler exposes batch repair and the stored audit trail.
type RepairHandler struct {
	repair *service.RepairService
}

// NewRepairHandler constructs handler.
func NewRepairHandler(repairService *service.RepairService) *RepairHandler {
	return &RepairHandler{repair: repairService}
}

// Repair POST /v1/repair.
func (h *RepairHandler) Repair(c *fiber.Ctx) error {
	var req dto.RepairRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if len(req.Tickets) == 0 {
		return errorutil.NewValidationError("tickets required", nil)
	}
	if len(req.Tickets) > MaxRepairBatch {
		return errorutil.NewValidationError("batch too large", map[string]any{"max": MaxRepairBatch})
	}

	tickets := make([]domain.Ticket, len(req.Tickets))
	for i, p := range req.Tickets {
		tickets[i] = p.Ticket()
	}

	fixed, changes, now, err := h.repair.RepairBatch(c.UserContext(), tickets)
	if err != nil {
		return err
	}

	resp := dto.RepairResponse{
		ProcessingTime: timestamp.Format(now),
		Tickets:        make([]dto.TicketPayload, len(fixed)),
		Changes:        changes,
	}
	if resp.Changes == nil {
		resp.Changes = []domain.ChangeLogEntry{}
	}
	for i, t := range fixed {
		resp.Tickets[i] = dto.NewTicketPayload(t)
	}
	return c.JSON(fiber.Map{"data": resp})
}

// TicketChanges GET /v1/tickets/:id/changes.
func (h *RepairHandler) TicketChanges(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return errorutil.NewValidationError("ticket id required", nil)
	}
	changes, err := h.repair.TicketChanges(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewChangeResponses(changes)})
}
