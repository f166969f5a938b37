package generation

import (
	"testing"

	"mediflash/internal/core/flashcard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_TopLevelArray(t *testing.T) {
	ext := Normalize(`[{"front":"a","back":"b"}]`)

	require.NoError(t, ext.Err)
	assert.Equal(t, StrategyTopLevelArray, ext.Strategy)
	require.Len(t, ext.Cards, 1)
	assert.Equal(t, "a", ext.Cards[0].Front)
	assert.Equal(t, "b", ext.Cards[0].Back)
}

func TestNormalize_FlashcardsField(t *testing.T) {
	ext := Normalize(`{"flashcards":[{"front":"a","back":"b"}]}`)

	require.NoError(t, ext.Err)
	assert.Equal(t, StrategyFlashcardsField, ext.Strategy)
	require.Len(t, ext.Cards, 1)
	assert.Equal(t, "a", ext.Cards[0].Front)
	assert.Equal(t, "b", ext.Cards[0].Back)
}

func TestNormalize_FlashcardsFieldBeatsEarlierArray(t *testing.T) {
	ext := Normalize(`{"cards":[{"front":"first","back":"x"}],"flashcards":[{"front":"named","back":"y"}]}`)

	assert.Equal(t, StrategyFlashcardsField, ext.Strategy)
	require.Len(t, ext.Cards, 1)
	assert.Equal(t, "named", ext.Cards[0].Front)
}

func TestNormalize_FirstArrayFieldInDocumentOrder(t *testing.T) {
	ext := Normalize(`{"meta":{"n":2},"zeta":[{"front":"z","back":"1"}],"alpha":[{"front":"a","back":"2"}]}`)

	assert.Equal(t, StrategyFirstArrayField, ext.Strategy)
	require.Len(t, ext.Cards, 1)
	assert.Equal(t, "z", ext.Cards[0].Front)
}

func TestNormalize_FirstArrayFieldIndexKeysFirst(t *testing.T) {
	cases := map[string]string{
		`{"2":[{"front":"two","back":"x"}],"1":[{"front":"one","back":"x"}]}`:   "one",
		`{"b":[{"front":"b","back":"x"}],"10":[{"front":"ten","back":"x"}]}`:    "ten",
		`{"01":[{"front":"padded","back":"x"}],"x":[{"front":"x","back":"x"}]}`: "padded",
		`{"3":"none","9":[{"front":"nine","back":"x"}],"a":[]}`:                 "nine",
	}
	for raw, want := range cases {
		ext := Normalize(raw)
		assert.Equal(t, StrategyFirstArrayField, ext.Strategy, raw)
		require.Len(t, ext.Cards, 1, raw)
		assert.Equal(t, want, ext.Cards[0].Front, raw)
	}
}

func TestNormalize_FlashcardsFieldThatIsNotArrayFallsThrough(t *testing.T) {
	ext := Normalize(`{"flashcards":"none","items":[{"front":"a","back":"b"}]}`)

	assert.Equal(t, StrategyFirstArrayField, ext.Strategy)
	assert.Len(t, ext.Cards, 1)
}

func TestNormalize_Failures(t *testing.T) {
	cases := map[string]struct {
		raw      string
		strategy Strategy
		err      error
	}{
		"not json":    {"not json", StrategyInvalidJSON, ErrInvalidJSON},
		"empty":       {"", StrategyInvalidJSON, ErrInvalidJSON},
		"fenced":      {"```json\n[{\"front\":\"a\",\"back\":\"b\"}]\n```", StrategyInvalidJSON, ErrInvalidJSON},
		"truncated":   {`{"flashcards":[{"front":"a"`, StrategyInvalidJSON, ErrInvalidJSON},
		"no array":    {`{"front":"a","back":"b"}`, StrategyNoArray, ErrNoCardArray},
		"scalar":      {`42`, StrategyNoArray, ErrNoCardArray},
		"nested only": {`{"data":{"flashcards":[]}}`, StrategyNoArray, ErrNoCardArray},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			var ext Extraction
			assert.NotPanics(t, func() { ext = Normalize(c.raw) })
			assert.Equal(t, c.strategy, ext.Strategy)
			assert.ErrorIs(t, ext.Err, c.err)
			assert.Empty(t, ext.Cards)
		})
	}
}

func TestNormalize_EmptyArrayIsNotAnError(t *testing.T) {
	ext := Normalize(`{"flashcards":[]}`)
	assert.NoError(t, ext.Err)
	assert.Empty(t, ext.Cards)
}

func TestNormalize_SkipsUnusableElements(t *testing.T) {
	ext := Normalize(`[
		"just a string",
		null,
		7,
		{"front":"","back":"b"},
		{"front":"q","back":"   "},
		{"type":"qa","front":"q"},
		{"front":"ok","back":"fine"}
	]`)

	require.NoError(t, ext.Err)
	assert.Equal(t, 6, ext.Skipped)
	require.Len(t, ext.Cards, 1)
	assert.Equal(t, "ok", ext.Cards[0].Front)
}

func TestNormalize_AppliesDefaults(t *testing.T) {
	ext := Normalize(`[{"front":"a","back":"b"}]`)
	require.Len(t, ext.Cards, 1)

	card := ext.Cards[0]
	assert.Equal(t, flashcard.TypeCloze, card.Type)
	assert.Equal(t, "Medical", card.Tag)
	assert.Equal(t, "Default", card.Deck)
}

func TestNormalize_KeepsProvidedMetadataAndUnknownTypes(t *testing.T) {
	ext := Normalize(`[{"type":"Mnemonic","front":"a","back":"b","tag":"Renal","deck":"Step 1"}]`)
	require.Len(t, ext.Cards, 1)

	card := ext.Cards[0]
	assert.Equal(t, flashcard.Type("Mnemonic"), card.Type)
	assert.Equal(t, "Renal", card.Tag)
	assert.Equal(t, "Step 1", card.Deck)
}

func TestNormalize_ClozeBackDerivedFromFront(t *testing.T) {
	ext := Normalize(`{"flashcards":[
		{"type":"cloze","front":"The {{c1::aorta}} leaves the left ventricle."},
		{"type":"guided_completion","front":"{{c1::Digoxin}} inhibits the {{c2::Na/K ATPase}}.","back":"Digoxin inhibits a pump."},
		{"type":"cloze","front":"The {{c1::SA node}} paces the heart.","back":"The SA node is the pacemaker; it paces the heart."}
	]}`)
	require.NoError(t, ext.Err)
	require.Len(t, ext.Cards, 3)

	assert.Equal(t, "The aorta leaves the left ventricle.", ext.Cards[0].Back)
	assert.Equal(t, "Digoxin inhibits the Na/K ATPase.", ext.Cards[1].Back)
	// a back that already resolves every marker is kept
	assert.Equal(t, "The SA node is the pacemaker; it paces the heart.", ext.Cards[2].Back)
}

func TestNormalize_ClozeWithoutMarkersNeedsBack(t *testing.T) {
	ext := Normalize(`[{"type":"cloze","front":"no markers here"}]`)
	assert.Empty(t, ext.Cards)
	assert.Equal(t, 1, ext.Skipped)
}

func TestNormalize_LenientScalarsAndMarkup(t *testing.T) {
	ext := Normalize(`[{"type":"true_false","front":"<b>Aspirin</b> is an NSAID","back":true},{"type":"qa","front":"Normal K+ upper bound?","back":5.0}]`)
	require.Len(t, ext.Cards, 2)

	assert.Equal(t, "Aspirin is an NSAID", ext.Cards[0].Front)
	assert.Equal(t, "true", ext.Cards[0].Back)
	assert.Equal(t, "5.0", ext.Cards[1].Back)
}

func TestNormalize_MultipleChoiceOptions(t *testing.T) {
	ext := Normalize(`[
		{"type":"multiple_choice","front":"First-line for HTN?","back":"Thiazide","options":["Thiazide","<i>Digoxin</i>",""]},
		{"type":"qa","front":"q","back":"a","options":["ignored"]}
	]`)
	require.Len(t, ext.Cards, 2)

	assert.Equal(t, []string{"Thiazide", "Digoxin"}, ext.Cards[0].Options)
	assert.Nil(t, ext.Cards[1].Options)
}

func TestNormalize_KeepsComparisonsInText(t *testing.T) {
	ext := Normalize(`[
		{"type":"qa","front":"Hyponatremia is Na<Normal range; what if K>5?","back":"Check <b>ECG</b>"},
		{"type":"cloze","front":"Give {{c1::adrenaline}} if SBP<Ninety and HR>120"}
	]`)

	require.NoError(t, ext.Err)
	require.Len(t, ext.Cards, 2)
	assert.Equal(t, "Hyponatremia is Na<Normal range; what if K>5?", ext.Cards[0].Front)
	assert.Equal(t, "Check ECG", ext.Cards[0].Back)
	assert.Equal(t, "Give {{c1::adrenaline}} if SBP<Ninety and HR>120", ext.Cards[1].Front)
	assert.Equal(t, "Give adrenaline if SBP<Ninety and HR>120", ext.Cards[1].Back)
}
