package flashcard

import "strings"

// Type is the card format. Unknown values are carried through untouched.
type Type string

const (
	TypeCloze            Type = "cloze"
	TypeQA               Type = "qa"
	TypeTrueFalse        Type = "true_false"
	TypeGuidedCompletion Type = "guided_completion"
	TypeMultipleChoice   Type = "multiple_choice"
)

const (
	DefaultType = TypeCloze
	DefaultTag  = "Medical"
	DefaultDeck = "Default"
)

// GenerationTypes is the mix requested from the model.
var GenerationTypes = []Type{TypeCloze, TypeQA, TypeTrueFalse, TypeGuidedCompletion}

// IsClozeStyle reports whether the front carries {{cN::...}} markers.
func (t Type) IsClozeStyle() bool {
	return t == TypeCloze || t == TypeGuidedCompletion
}

// Known reports whether t is one of the recognised formats.
func (t Type) Known() bool {
	switch t {
	case TypeCloze, TypeQA, TypeTrueFalse, TypeGuidedCompletion, TypeMultipleChoice:
		return true
	}
	return false
}

// Flashcard is a generated card before it is stored.
type Flashcard struct {
	Type    Type     `json:"type"`
	Front   string   `json:"front"`
	Back    string   `json:"back"`
	Tag     string   `json:"tag,omitempty"`
	Deck    string   `json:"deck,omitempty"`
	Options []string `json:"options,omitempty"`
}

// WithDefaults fills empty type, tag and deck.
func (f Flashcard) WithDefaults() Flashcard {
	if strings.TrimSpace(string(f.Type)) == "" {
		f.Type = DefaultType
	}
	if strings.TrimSpace(f.Tag) == "" {
		f.Tag = DefaultTag
	}
	if strings.TrimSpace(f.Deck) == "" {
		f.Deck = DefaultDeck
	}
	return f
}

// Complete reports whether both sides carry text.
func (f Flashcard) Complete() bool {
	return strings.TrimSpace(f.Front) != "" && strings.TrimSpace(f.Back) != ""
}
