package healthcheck

import (
	"context"
	"time"

	"mediflash/config"
	"mediflash/internal/database"
	"mediflash/pkg/apperror"
	"mediflash/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) ApiHealthCheck(c fiber.Ctx) error {
	return c.SendString("ok")
}

func (h *Handler) DatabaseHealthCheck(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()
	if err := database.Ping(ctx, h.db); err != nil {
		return apperror.InternalError(config.ModuleDatabase, c, status.DatabaseUnavailable, "Database unavailable", err)
	}
	return c.SendString("ok")
}
