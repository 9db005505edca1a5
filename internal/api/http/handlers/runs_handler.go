package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-dataset/internal/service"
)

// RunsHandler starts pipeline runs and reports on them.
type RunsHandler struct {
	pipeline *service.PipelineService
}

// NewRunsHandler constructs handler.
func NewRunsHandler(pipeline *service.PipelineService) *RunsHandler {
	return &RunsHandler{pipeline: pipeline}
}

// Start POST /v1/runs.
func (h *RunsHandler) Start(c *fiber.Ctx) error {
	report, err := h.pipeline.Start(c.UserContext())
	if err != nil {
		return err
	}
	c.Location("/v1/runs/" + report.ID)
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": report})
}

// Latest GET /v1/runs/latest.
func (h *RunsHandler) Latest(c *fiber.Ctx) error {
	report, err := h.pipeline.LatestRun(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// Get GET /v1/runs/:id.
func (h *RunsHandler) Get(c *fiber.Ctx) error {
	report, err := h.pipeline.GetRun(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}
