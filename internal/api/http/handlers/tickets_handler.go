package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-dataset/internal/api/dto"
	"github.com/spec-kit/ticket-dataset/internal/repository"
	"github.com/spec-kit/ticket-dataset/pkg/util/errorutil"
)

// TicketsHandler serves the persisted dataset.
type TicketsHandler struct {
	tickets repository.TicketRepository
}

// NewTicketsHandler constructs handler. tickets may be nil when no
// database is configured.
func NewTicketsHandler(tickets repository.TicketRepository) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// Get GET /v1/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	if h.tickets == nil {
		return errorutil.NewUnavailable("ticket store")
	}
	id := c.Params("id")
	ticket, err := h.tickets.GetByID(c.UserContext(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		return errorutil.NewNotFound("ticket", map[string]any{"id": id})
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketPayload(*ticket)})
}
