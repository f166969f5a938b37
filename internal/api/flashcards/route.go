package flashcards

import (
	"github.com/gofiber/fiber/v3"
)

// RegisterRoutes registers saved-card and export routes on the provided router.
func RegisterRoutes(r fiber.Router, h *Handler) {
	grp := r.Group("/flashcards")

	grp.Post("/", h.HandleCreate)
	grp.Get("/", h.HandleList)
	grp.Get("/export", h.HandleExportSaved)
	grp.Get("/:id", h.HandleGet)

	r.Post("/export", h.HandleExport)
}
