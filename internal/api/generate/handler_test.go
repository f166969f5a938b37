package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"mediflash/internal/core/flashcard"
	"mediflash/internal/core/generation"
	"mediflash/pkg/apperror"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	cards []flashcard.Flashcard
	err   error
	calls []generation.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req generation.Request) ([]flashcard.Flashcard, error) {
	f.calls = append(f.calls, req)
	return f.cards, f.err
}

type recordingArchiver struct {
	names []string
}

func (r *recordingArchiver) Archive(_ context.Context, filename string, _ []byte) (string, error) {
	r.names = append(r.names, filename)
	return "mem://" + filename, nil
}

var testLimits = Limits{MinQuantity: 5, MaxQuantity: 20, MaxPDFBytes: 1024}

func newApp(gen Generator, archiver *recordingArchiver) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app.Group("/api"), NewHandler(gen, archiver, testLimits))
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(fiber.MethodPost, "/api/generate", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func decodeError(t *testing.T, body []byte) apperror.ErrorResponse {
	t.Helper()
	var out apperror.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestHandleGenerate_JSON(t *testing.T) {
	gen := &fakeGenerator{cards: []flashcard.Flashcard{
		{Type: flashcard.TypeCloze, Front: "{{c1::Insulin}} lowers glucose", Back: "Insulin", Tag: "Medical", Deck: "Default"},
	}}
	app := newApp(gen, &recordingArchiver{})

	code, body := do(t, app, jsonRequest(`{"text":"Insulin lowers glucose.","mode":"clinical","level":"intern","quantity":"10"}`))
	require.Equal(t, fiber.StatusOK, code, string(body))

	var cards []flashcard.Flashcard
	require.NoError(t, json.Unmarshal(body, &cards))
	assert.Equal(t, gen.cards, cards)

	require.Len(t, gen.calls, 1)
	assert.Equal(t, generation.Request{
		Text:     "Insulin lowers glucose.",
		Mode:     generation.ModeClinical,
		Level:    generation.LevelIntern,
		Quantity: 10,
	}, gen.calls[0])
}

func TestHandleGenerate_RejectsBeforeGenerating(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		code  string
		field string
	}{
		{name: "malformed json", body: `{"text":`, code: "MF-0000"},
		{name: "no text", body: `{"text":"   ","mode":"clinical","level":"basic","quantity":5}`, code: "MF-0001"},
		{name: "missing quantity", body: `{"text":"x","mode":"clinical","level":"basic"}`, code: "MF-0002", field: "quantity"},
		{name: "quantity above max", body: `{"text":"x","mode":"clinical","level":"basic","quantity":21}`, code: "MF-0002", field: "quantity"},
		{name: "quantity below min", body: `{"text":"x","mode":"clinical","level":"basic","quantity":4}`, code: "MF-0002", field: "quantity"},
		{name: "fractional quantity", body: `{"text":"x","mode":"clinical","level":"basic","quantity":5.5}`, code: "MF-0002", field: "quantity"},
		{name: "unknown mode", body: `{"text":"x","mode":"surgical","level":"basic","quantity":5}`, code: "MF-0002", field: "mode"},
		{name: "missing level", body: `{"text":"x","mode":"board","quantity":5}`, code: "MF-0002", field: "level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			status, body := do(t, newApp(gen, &recordingArchiver{}), jsonRequest(tc.body))

			assert.Equal(t, fiber.StatusBadRequest, status)
			out := decodeError(t, body)
			assert.Equal(t, tc.code, out.Code)
			assert.Equal(t, tc.field, out.Field)
			assert.Empty(t, gen.calls)
		})
	}
}

func TestHandleGenerate_NoCardsIsServerError(t *testing.T) {
	gen := &fakeGenerator{err: generation.ErrNoFlashcards}

	status, body := do(t, newApp(gen, &recordingArchiver{}),
		jsonRequest(`{"text":"x","mode":"board","level":"resident","quantity":5}`))

	assert.Equal(t, fiber.StatusInternalServerError, status)
	out := decodeError(t, body)
	assert.Equal(t, "Failed to generate flashcards", out.Message)
	assert.Equal(t, "MF-2001", out.Code)
}

type formFile struct {
	name        string
	contentType string
	data        []byte
}

func formRequest(t *testing.T, fields map[string]string, file *formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="pdf"; filename="`+file.name+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/generate", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

var formFields = map[string]string{"mode": "conceptual", "level": "basic", "quantity": "5"}

func TestHandleGenerate_FormText(t *testing.T) {
	gen := &fakeGenerator{cards: []flashcard.Flashcard{{Type: flashcard.TypeQA, Front: "Q", Back: "A"}}}
	fields := map[string]string{"text": "Pasted notes.", "mode": "conceptual", "level": "basic", "quantity": "5"}

	status, body := do(t, newApp(gen, &recordingArchiver{}), formRequest(t, fields, nil))

	require.Equal(t, fiber.StatusOK, status, string(body))
	require.Len(t, gen.calls, 1)
	assert.Equal(t, "Pasted notes.", gen.calls[0].Text)
	assert.Equal(t, 5, gen.calls[0].Quantity)
}

func TestHandleGenerate_PDFRejections(t *testing.T) {
	cases := []struct {
		name string
		file formFile
		code string
		msg  string
	}{
		{
			name: "wrong content type",
			file: formFile{name: "notes.txt", contentType: "text/plain", data: []byte("hello")},
			code: "MF-0003",
			msg:  "Only PDF files are allowed",
		},
		{
			name: "not really a pdf",
			file: formFile{name: "notes.pdf", contentType: "application/pdf", data: []byte("hello")},
			code: "MF-0003",
			msg:  "Only PDF files are allowed",
		},
		{
			name: "too large",
			file: formFile{name: "big.pdf", contentType: "application/pdf", data: bytes.Repeat([]byte("a"), 2048)},
			code: "MF-0004",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			archiver := &recordingArchiver{}
			file := tc.file

			status, body := do(t, newApp(gen, archiver), formRequest(t, formFields, &file))

			assert.Equal(t, fiber.StatusBadRequest, status)
			out := decodeError(t, body)
			assert.Equal(t, tc.code, out.Code)
			if tc.msg != "" {
				assert.Equal(t, tc.msg, out.Message)
			}
			assert.Empty(t, gen.calls)
			assert.Empty(t, archiver.names)
		})
	}
}

func TestHandleGenerate_FormWithoutTextOrPDF(t *testing.T) {
	gen := &fakeGenerator{}

	status, body := do(t, newApp(gen, &recordingArchiver{}), formRequest(t, formFields, nil))

	assert.Equal(t, fiber.StatusBadRequest, status)
	out := decodeError(t, body)
	assert.Equal(t, "No text or PDF provided", out.Message)
	assert.Empty(t, gen.calls)
}

func TestHandleGenerate_PDFArchivedOnlyAfterValidation(t *testing.T) {
	data, err := os.ReadFile("testdata/notes.pdf")
	require.NoError(t, err)
	file := formFile{name: "notes.pdf", contentType: "application/pdf", data: data}

	t.Run("rejected request keeps nothing", func(t *testing.T) {
		gen := &fakeGenerator{}
		archiver := &recordingArchiver{}
		fields := map[string]string{"mode": "conceptual", "level": "basic", "quantity": "50"}

		status, body := do(t, newApp(gen, archiver), formRequest(t, fields, &file))

		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "quantity", decodeError(t, body).Field)
		assert.Empty(t, archiver.names)
		assert.Empty(t, gen.calls)
	})

	t.Run("accepted request is archived and generated from the pdf", func(t *testing.T) {
		gen := &fakeGenerator{cards: []flashcard.Flashcard{{Type: flashcard.TypeQA, Front: "Q", Back: "A"}}}
		archiver := &recordingArchiver{}
		fields := map[string]string{"text": "ignored", "mode": "conceptual", "level": "basic", "quantity": "5"}

		status, body := do(t, newApp(gen, archiver), formRequest(t, fields, &file))

		require.Equal(t, fiber.StatusOK, status, string(body))
		assert.Equal(t, []string{"notes.pdf"}, archiver.names)
		require.Len(t, gen.calls, 1)
		assert.Contains(t, gen.calls[0].Text, "Metformin is first line")
	})
}
