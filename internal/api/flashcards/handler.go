package flashcards

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mediflash/config"
	"mediflash/internal/core/flashcard"
	"mediflash/internal/database/model"
	service "mediflash/internal/services/flashcards"
	"mediflash/pkg/apperror"
	"mediflash/pkg/apperror/status"
	"mediflash/pkg/validate"

	"github.com/gofiber/fiber/v3"
)

// Service is the persistence surface the handlers need.
type Service interface {
	Save(ctx context.Context, in service.SaveInput) (*model.Flashcard, error)
	List(ctx context.Context) ([]model.Flashcard, error)
	Get(ctx context.Context, id string) (*model.Flashcard, error)
}

type Handler struct {
	svc Service
	now func() time.Time
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

// HandleCreate stores one card and answers 201 with the stored record.
func (h *Handler) HandleCreate(c fiber.Ctx) error {
	var in service.SaveInput
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return apperror.Invalid(config.ModuleFlashcards, c, status.InvalidRequestBody, "", err.Error())
	}

	rec, err := h.svc.Save(c.Context(), in)
	if err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			return apperror.Invalid(config.ModuleFlashcards, c, status.InvalidFlashcard, verr.Field(), verr.Fields)
		}
		return apperror.InternalError(config.ModuleFlashcards, c, status.SaveFlashcardFailed, "Failed to save flashcard", err)
	}
	return apperror.Created(c, rec)
}

// HandleList returns every stored card, newest first.
func (h *Handler) HandleList(c fiber.Ctx) error {
	cards, err := h.svc.List(c.Context())
	if err != nil {
		return apperror.InternalError(config.ModuleFlashcards, c, status.ListFlashcardsFailed, "Failed to list flashcards", err)
	}
	if cards == nil {
		cards = []model.Flashcard{}
	}
	return apperror.OK(c, cards)
}

func (h *Handler) HandleGet(c fiber.Ctx) error {
	card, err := h.svc.Get(c.Context(), c.Params("id"))
	switch {
	case errors.Is(err, service.ErrNotFound):
		return apperror.NotFound(config.ModuleFlashcards, c, status.FlashcardNotFound, "Flashcard not found")
	case err != nil:
		return apperror.InternalError(config.ModuleFlashcards, c, status.GetFlashcardFailed, "Failed to get flashcard", err)
	}
	return apperror.OK(c, card)
}

// HandleExportSaved downloads the stored cards. ?format=anki|text, anki by default.
func (h *Handler) HandleExportSaved(c fiber.Ctx) error {
	format, err := flashcard.ParseFormat(c.Query("format"))
	if err != nil {
		return apperror.BadRequest(config.ModuleExport, c, status.InvalidExportFormat, err.Error())
	}
	cards, err := h.svc.List(c.Context())
	if err != nil {
		return apperror.InternalError(config.ModuleExport, c, status.ListFlashcardsFailed, "Failed to list flashcards", err)
	}
	return h.sendExport(c, flashcard.Render(format, cards))
}

// HandleExport renders cards posted in the body, typically a fresh generation
// result that was never saved.
func (h *Handler) HandleExport(c fiber.Ctx) error {
	format, err := flashcard.ParseFormat(c.Query("format"))
	if err != nil {
		return apperror.BadRequest(config.ModuleExport, c, status.InvalidExportFormat, err.Error())
	}
	var cards []flashcard.Flashcard
	if err := json.Unmarshal(c.Body(), &cards); err != nil {
		return apperror.Invalid(config.ModuleExport, c, status.InvalidRequestBody, "", err.Error())
	}
	if len(cards) == 0 {
		return apperror.BadRequest(config.ModuleExport, c, status.MissingInput, "No flashcards to export")
	}
	for i := range cards {
		cards[i] = cards[i].Clean()
	}
	return h.sendExport(c, flashcard.Render(format, cards))
}

func (h *Handler) sendExport(c fiber.Ctx, body string) error {
	c.Attachment(flashcard.ExportFilename(h.now()))
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(body)
}
