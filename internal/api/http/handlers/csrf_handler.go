package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-pilot/internal/auth"
	"github.com/spec-kit/parking-pilot/internal/security"
	apperrors "github.com/spec-kit/parking-pilot/pkg/util"
)

// CSRFHandler issues anti-forgery tokens keyed by the caller's session.
type CSRFHandler struct {
	csrf *security.CSRFService
}

// NewCSRFHandler constructs handler.
func NewCSRFHandler(csrfService *security.CSRFService) *CSRFHandler {
	return &CSRFHandler{csrf: csrfService}
}

// Issue handles GET /csrf-token. The bearer token identifies the session; a
// fresh CSRF token replaces any prior one for it.
func (h *CSRFHandler) Issue(c *fiber.Ctx) error {
	sessionID := auth.BearerToken(c)
	if sessionID == "" {
		return apperrors.NewUnauthorized("access token required")
	}

	token, err := h.csrf.Issue(c.Context(), sessionID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"csrf_token": token})
}
