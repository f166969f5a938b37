package generate

import (
	"github.com/gofiber/fiber/v3"
)

// RegisterRoutes registers the generation endpoint on the provided router.
func RegisterRoutes(r fiber.Router, h *Handler) {
	r.Post("/generate", h.HandleGenerate)
}
