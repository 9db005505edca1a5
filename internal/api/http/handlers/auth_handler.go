package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-dataset/internal/api/dto"
	"github.com/spec-kit/ticket-dataset/internal/service"
	"github.com/spec-kit/ticket-dataset/pkg/util/errorutil"
)

// AuthHandler issues access tokens to API clients.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Token handles POST /auth/token.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.ClientID) == "" || req.ClientSecret == "" {
		return errorutil.NewValidationError("client_id and client_secret required", nil)
	}

	issued, err := h.auth.IssueToken(c.UserContext(), req.ClientID, req.ClientSecret)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     issued.Token,
		TokenType: "Bearer",
		ExpiresAt: issued.ExpiresAt,
		Role:      string(issued.Role),
	}})
}
