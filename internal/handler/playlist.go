package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/aurify/api/internal/model"
	"github.com/aurify/api/internal/service"
	"github.com/aurify/api/pkg/response"
)

type PlaylistHandler struct {
	service   service.PlaylistGenerator
	validator *validator.Validate
}

func NewPlaylistHandler(svc service.PlaylistGenerator, v *validator.Validate) *PlaylistHandler {
	return &PlaylistHandler{
		service:   svc,
		validator: v,
	}
}

// Generate handles POST /api/playlist/generate (and the attested variant at
// /api/app/playlist/generate — same contract).
//
// Every failure comes back as a 200 with an {error} body: an internal error
// must never surface as an unhandled fault or a non-2xx status, so the
// client always receives parseable output and branches only on the "error"
// key.
func (h *PlaylistHandler) Generate(c *fiber.Ctx) error {
	var req model.GenerationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ErrorValue(c, "invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ErrorValue(c, "image_url is required")
	}

	result, err := h.service.Generate(c.Context(), &req)
	if err != nil {
		return response.ErrorValue(c, err.Error())
	}

	return response.OK(c, result)
}
