package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aurify/api/internal/service"
	"github.com/aurify/api/pkg/response"
)

type ThemeHandler struct {
	service service.ThemeRotator
}

func NewThemeHandler(svc service.ThemeRotator) *ThemeHandler {
	return &ThemeHandler{service: svc}
}

// Rotate handles POST /jobs/rotate-theme. It runs the same rotation the
// scheduler triggers and returns a plain status string.
func (h *ThemeHandler) Rotate(c *fiber.Ctx) error {
	status, err := h.service.SelectAndRotate(c.Context())
	if err != nil {
		return response.Status(c, "rotation failed: "+err.Error())
	}
	return response.Status(c, status)
}
