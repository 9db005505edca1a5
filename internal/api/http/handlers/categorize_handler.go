package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-dataset/internal/api/dto"
	"github.com/spec-kit/ticket-dataset/internal/domain"
	"github.com/spec-kit/ticket-dataset/internal/service"
	"github.com/spec-kit/ticket-dataset/pkg/util/errorutil"
)

// CategorizeHandler exposes the categorization engine.
type CategorizeHandler struct {
	classifier *service.ClassificationService
}

// NewCategorizeHandler constructs handler.
func NewCategorizeHandler(classifier *service.ClassificationService) *CategorizeHandler {
	return &CategorizeHandler{classifier: classifier}
}

// Categorize POST /v1/categorize.
func (h *CategorizeHandler) Categorize(c *fiber.Ctx) error {
	var req dto.CategorizeRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	text := req.Text
	if strings.TrimSpace(text) == "" {
		if req.Summary == "" && req.Description == "" {
			return errorutil.NewValidationError("text or resumen/descripcion required", nil)
		}
		text = domain.Ticket{Summary: req.Summary, Description: req.Description}.Text()
	}

	res := h.classifier.Classify(c.UserContext(), text)
	return c.JSON(fiber.Map{"data": dto.NewCategorizeResponse(res)})
}
