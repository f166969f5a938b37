package generation

import (
	"errors"

	"mediflash/internal/core/flashcard"
)

// Mode frames the content of the generated cards.
type Mode string

const (
	ModeConceptual Mode = "conceptual"
	ModeClinical   Mode = "clinical"
	ModeBoard      Mode = "board"
)

// Level is the seniority of the learner.
type Level string

const (
	LevelBasic    Level = "basic"
	LevelIntern   Level = "intern"
	LevelResident Level = "resident"
)

// Request is one generation call. Text has already been extracted from any
// uploaded document.
type Request struct {
	Text     string `json:"text" validate:"required"`
	Mode     Mode   `json:"mode" validate:"required,oneof=conceptual clinical board"`
	Level    Level  `json:"level" validate:"required,oneof=basic intern resident"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

var (
	// ErrEmptyText means there was nothing to chunk. Generation is never attempted.
	ErrEmptyText = errors.New("no text to generate from")
	// ErrInvalidQuantity means fewer than one card was requested.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrNoFlashcards means every chunk came back without a usable card.
	ErrNoFlashcards = errors.New("no flashcards could be generated")
)

// ChunkResult is the outcome of one chunk: its cards, or the reason it gave none.
type ChunkResult struct {
	Index     int
	Requested int
	Strategy  Strategy
	Cards     []flashcard.Flashcard
	Err       error
}

// OK reports whether the chunk produced a parseable reply.
func (r ChunkResult) OK() bool { return r.Err == nil }

// Run describes a whole generation call.
type Run struct {
	Chunks   int
	PerChunk int
	Results  []ChunkResult
	Cards    []flashcard.Flashcard
}

// Failed counts the chunks that did not produce a parseable reply.
func (r *Run) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK() {
			n++
		}
	}
	return n
}
