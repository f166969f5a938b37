package generation

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"mediflash/internal/core/flashcard"

	"github.com/tidwall/gjson"
)

// Strategy names where the card array of a reply was found.
type Strategy string

const (
	StrategyInvalidJSON     Strategy = "invalid_json"
	StrategyTopLevelArray   Strategy = "top_level_array"
	StrategyFlashcardsField Strategy = "flashcards_field"
	StrategyFirstArrayField Strategy = "first_array_field"
	StrategyNoArray         Strategy = "no_array"
)

var (
	ErrInvalidJSON = errors.New("reply is not valid JSON")
	ErrNoCardArray = errors.New("reply contains no card array")
)

// Extraction is the normalized form of one backend reply. Err is set when the
// reply could not be used at all; Cards is then empty.
type Extraction struct {
	Strategy Strategy
	Cards    []flashcard.Flashcard
	Skipped  int
	Err      error
}

type locator struct {
	strategy Strategy
	find     func(doc gjson.Result) (gjson.Result, bool)
}

// locators run in order; the first hit wins and later ones are not consulted.
var locators = []locator{
	{StrategyTopLevelArray, func(doc gjson.Result) (gjson.Result, bool) {
		return doc, doc.IsArray()
	}},
	{StrategyFlashcardsField, func(doc gjson.Result) (gjson.Result, bool) {
		if !doc.IsObject() {
			return gjson.Result{}, false
		}
		field := doc.Get("flashcards")
		return field, field.IsArray()
	}},
	{StrategyFirstArrayField, firstArrayField},
}

// firstArrayField returns the first array member in property order: keys that
// are array indexes ("0", "7", "42") come first in ascending numeric order,
// then the remaining keys in document order. A repeated key keeps its first
// position and its last value.
func firstArrayField(doc gjson.Result) (gjson.Result, bool) {
	if !doc.IsObject() {
		return gjson.Result{}, false
	}
	type member struct {
		key   string
		index uint64
		isIdx bool
		value gjson.Result
	}
	var members []member
	seen := map[string]int{}
	doc.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if i, ok := seen[k]; ok {
			members[i].value = value
			return true
		}
		idx, isIdx := arrayIndex(k)
		seen[k] = len(members)
		members = append(members, member{key: k, index: idx, isIdx: isIdx, value: value})
		return true
	})
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.isIdx != b.isIdx {
			return a.isIdx
		}
		return a.isIdx && a.index < b.index
	})
	for _, m := range members {
		if m.value.IsArray() {
			return m.value, true
		}
	}
	return gjson.Result{}, false
}

// arrayIndex reports whether key is a canonical integer below 2^32-1.
func arrayIndex(key string) (uint64, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 64)
	if err != nil || n >= 1<<32-1 {
		return 0, false
	}
	return n, true
}

// Normalize turns a raw backend reply into flashcards. It never fails loudly:
// malformed replies come back as an Extraction with Err set and no cards.
// Malformed text is not repaired.
func Normalize(raw string) Extraction {
	raw = strings.TrimSpace(raw)
	if !gjson.Valid(raw) {
		return Extraction{Strategy: StrategyInvalidJSON, Err: ErrInvalidJSON}
	}
	doc := gjson.Parse(raw)

	for _, l := range locators {
		arr, ok := l.find(doc)
		if !ok {
			continue
		}
		cards, skipped := coerceCards(arr)
		return Extraction{Strategy: l.strategy, Cards: cards, Skipped: skipped}
	}
	return Extraction{Strategy: StrategyNoArray, Err: ErrNoCardArray}
}

func coerceCards(arr gjson.Result) ([]flashcard.Flashcard, int) {
	var (
		cards   []flashcard.Flashcard
		skipped int
	)
	arr.ForEach(func(_, el gjson.Result) bool {
		card, ok := coerceCard(el)
		if !ok {
			skipped++
			return true
		}
		cards = append(cards, card)
		return true
	})
	return cards, skipped
}

func coerceCard(el gjson.Result) (flashcard.Flashcard, bool) {
	if !el.IsObject() {
		return flashcard.Flashcard{}, false
	}
	card := flashcard.Flashcard{
		Type:  flashcard.Type(text(el.Get("type"))),
		Front: text(el.Get("front")),
		Back:  text(el.Get("back")),
		Tag:   text(el.Get("tag")),
		Deck:  text(el.Get("deck")),
	}
	card = card.Clean().WithDefaults()

	if card.Type == flashcard.TypeMultipleChoice {
		el.Get("options").ForEach(func(_, o gjson.Result) bool {
			if s := flashcard.CleanText(text(o)); s != "" {
				card.Options = append(card.Options, s)
			}
			return true
		})
	}

	if card.Type.IsClozeStyle() && len(flashcard.Payloads(card.Front)) > 0 &&
		!flashcard.BackResolves(card.Front, card.Back) {
		card.Back = flashcard.RenderAnswer(card.Front)
	}

	if !card.Complete() {
		return flashcard.Flashcard{}, false
	}
	return card, true
}

// text reads scalars leniently; objects, arrays and null read as empty.
func text(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number, gjson.True, gjson.False:
		return v.Raw
	}
	return ""
}
