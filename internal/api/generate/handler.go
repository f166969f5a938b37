package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mediflash/config"
	"mediflash/internal/core/extract"
	"mediflash/internal/core/flashcard"
	"mediflash/internal/core/generation"
	"mediflash/internal/services/upload"
	"mediflash/pkg/apperror"
	"mediflash/pkg/apperror/status"
	"mediflash/pkg/validate"

	"github.com/gofiber/fiber/v3"
)

const (
	pdfField       = "pdf"
	pdfContentType = "application/pdf"
	generateFailed = "Failed to generate flashcards"
)

// Generator turns a validated request into cards.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) ([]flashcard.Flashcard, error)
}

// Limits bound what a caller may ask for.
type Limits struct {
	MinQuantity int
	MaxQuantity int
	MaxPDFBytes int64
}

type Handler struct {
	generator Generator
	archiver  upload.Archiver
	limits    Limits
}

func NewHandler(generator Generator, archiver upload.Archiver, limits Limits) *Handler {
	return &Handler{generator: generator, archiver: archiver, limits: limits}
}

// payload accepts quantity as a JSON number or a numeric string.
type payload struct {
	Text     string      `json:"text"`
	Mode     string      `json:"mode"`
	Level    string      `json:"level"`
	Quantity json.Number `json:"quantity"`
}

// HandleGenerate accepts JSON or a multipart form with an optional PDF in the
// "pdf" field. Text extracted from the PDF replaces any pasted text. The PDF
// is archived only once the request has passed validation.
func (h *Handler) HandleGenerate(c fiber.Ctx) error {
	in, err := h.readPayload(c)
	if err != nil {
		return apperror.Invalid(config.ModuleGenerate, c, status.InvalidRequestBody, "", err.Error())
	}

	doc, err := h.readPDF(c)
	if err != nil {
		return apperror.FromCoded(config.ModuleGenerate, c, err, generateFailed)
	}
	text := in.Text
	if doc != nil {
		text = doc.text
	}
	if strings.TrimSpace(text) == "" {
		return apperror.BadRequest(config.ModuleGenerate, c, status.MissingInput, "No text or PDF provided")
	}

	req := generation.Request{
		Text:  text,
		Mode:  generation.Mode(strings.TrimSpace(in.Mode)),
		Level: generation.Level(strings.TrimSpace(in.Level)),
	}
	if verr := h.bindQuantity(&req, in.Quantity); verr != nil {
		return apperror.Invalid(config.ModuleGenerate, c, status.InvalidParams, verr.Field(), verr.Fields)
	}
	if err := validate.Struct(req); err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			return apperror.Invalid(config.ModuleGenerate, c, status.InvalidParams, verr.Field(), verr.Fields)
		}
		return apperror.InternalError(config.ModuleGenerate, c, status.Internal, generateFailed, err)
	}

	if doc != nil {
		upload.Keep(c.Context(), h.archiver, doc.filename, doc.data)
	}

	cards, err := h.generator.Generate(c.Context(), req)
	switch {
	case errors.Is(err, generation.ErrEmptyText):
		return apperror.BadRequest(config.ModuleGenerate, c, status.MissingInput, "No text or PDF provided")
	case errors.Is(err, generation.ErrNoFlashcards):
		return apperror.InternalError(config.ModuleGenerate, c, status.NoFlashcardsParsed, generateFailed, err)
	case err != nil:
		return apperror.InternalError(config.ModuleGenerate, c, status.GenerationFailed, generateFailed, err)
	}
	return apperror.OK(c, cards)
}

func (h *Handler) readPayload(c fiber.Ctx) (payload, error) {
	var in payload
	if isForm(c) {
		in.Text = c.FormValue("text")
		in.Mode = c.FormValue("mode")
		in.Level = c.FormValue("level")
		in.Quantity = json.Number(strings.TrimSpace(c.FormValue("quantity")))
		return in, nil
	}
	if len(c.Body()) == 0 {
		return in, nil
	}
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return in, fmt.Errorf("malformed JSON body: %w", err)
	}
	return in, nil
}

func isForm(c fiber.Ctx) bool {
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	return strings.HasPrefix(ct, fiber.MIMEMultipartForm) || strings.HasPrefix(ct, fiber.MIMEApplicationForm)
}

type pdfUpload struct {
	filename string
	data     []byte
	text     string
}

// readPDF returns the uploaded PDF and its text, or nil when none was sent.
func (h *Handler) readPDF(c fiber.Ctx) (*pdfUpload, error) {
	if !isForm(c) {
		return nil, nil
	}
	fh, err := c.FormFile(pdfField)
	if err != nil || fh == nil {
		return nil, nil
	}
	if ct := fh.Header.Get(fiber.HeaderContentType); ct != "" && !strings.HasPrefix(strings.ToLower(ct), pdfContentType) {
		return nil, status.New(status.UnsupportedFileType, errors.New("Only PDF files are allowed"))
	}
	if h.limits.MaxPDFBytes > 0 && fh.Size > h.limits.MaxPDFBytes {
		return nil, status.New(status.FileTooLarge, fmt.Errorf("PDF exceeds the %d byte upload limit", h.limits.MaxPDFBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, status.New(status.ReadUploadFailed, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, status.New(status.ReadUploadFailed, err)
	}

	text, err := extract.PDFText(data)
	switch {
	case errors.Is(err, extract.ErrNotPDF):
		return nil, status.New(status.UnsupportedFileType, errors.New("Only PDF files are allowed"))
	case err != nil:
		return nil, status.New(status.NoExtractableText, fmt.Errorf("PDF contains no extractable text: %w", err))
	}

	return &pdfUpload{filename: fh.Filename, data: data, text: text}, nil
}

func (h *Handler) bindQuantity(req *generation.Request, raw json.Number) *validate.Error {
	if raw == "" {
		return &validate.Error{Fields: []validate.FieldError{{Field: "quantity", Rule: "required", Message: "quantity is required"}}}
	}
	q, err := strconv.Atoi(raw.String())
	if err != nil {
		return &validate.Error{Fields: []validate.FieldError{{Field: "quantity", Rule: "number", Message: "quantity must be a whole number"}}}
	}
	if q < h.limits.MinQuantity || q > h.limits.MaxQuantity {
		return &validate.Error{Fields: []validate.FieldError{{
			Field:   "quantity",
			Rule:    "range",
			Message: fmt.Sprintf("quantity must be between %d and %d", h.limits.MinQuantity, h.limits.MaxQuantity),
		}}}
	}
	req.Quantity = q
	return nil
}
