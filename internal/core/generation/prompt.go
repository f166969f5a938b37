package generation

import (
	"fmt"
	"strings"

	"mediflash/internal/core/flashcard"
)

// Prompt is the pair of messages sent for one chunk.
type Prompt struct {
	System string
	User   string
}

var modeFocus = map[Mode]string{
	ModeConceptual: "definitions and mechanisms",
	ModeClinical:   "clinical vignettes, presentation and diagnosis",
	ModeBoard:      "high-yield facts for rapid board exam review",
}

var levelAudience = map[Level]string{
	LevelBasic:    "basic sciences student (M1/M2)",
	LevelIntern:   "clinical clerkship student (M3/M4)",
	LevelResident: "resident or fellow",
}

// BuildPrompt assembles the messages asking for count cards about text.
func BuildPrompt(text string, mode Mode, level Level, count int) Prompt {
	types := make([]string, 0, len(flashcard.GenerationTypes))
	for _, t := range flashcard.GenerationTypes {
		types = append(types, string(t))
	}

	var b strings.Builder
	b.WriteString("You are an experienced medical educator writing professional Anki flashcards.\n\n")
	b.WriteString("FORMAT RULES:\n")
	b.WriteString(fmt.Sprintf("- Mix these card types: %s.\n", strings.Join(types, ", ")))
	b.WriteString("- cloze: front is one sentence hiding key terms with {{c1::term}} syntax; back is the same sentence with the terms revealed.\n")
	b.WriteString("- qa: front is a direct question; back is a short answer.\n")
	b.WriteString("- true_false: front is a statement; back starts with True or False followed by a one-line justification.\n")
	b.WriteString("- guided_completion: front is a partially written fact with {{c1::term}} gaps guiding recall; back is the completed fact.\n")
	b.WriteString(`- Reply with a JSON object only: {"flashcards": [{"type": "...", "front": "...", "back": "...", "tag": "...", "deck": "..."}]}.` + "\n\n")
	b.WriteString("CONTENT RULES:\n")
	b.WriteString("- At most 30 words per card.\n")
	b.WriteString("- At most 2 clozes per sentence, each hiding a single keyword or short phrase.\n")
	b.WriteString("- Focus on definitions, mechanisms, indications, contraindications, classic imaging findings and diagnostic criteria.\n")
	b.WriteString("- Avoid long explanations, non-essential statistics and trivia.\n")
	b.WriteString("- Every card must make sense on its own.\n\n")
	b.WriteString(fmt.Sprintf("MODE: %s (%s)\n", mode, describe(modeFocus, mode)))
	b.WriteString(fmt.Sprintf("LEVEL: %s (%s)\n", level, describe(levelAudience, level)))
	b.WriteString(fmt.Sprintf("QUANTITY: %d flashcards", count))

	return Prompt{
		System: b.String(),
		User:   "Source text to extract facts from:\n" + text,
	}
}

func describe[K ~string](m map[K]string, k K) string {
	if d, ok := m[k]; ok {
		return d
	}
	return "general"
}
