package flashcard

import (
	"fmt"
	"strings"
	"time"
)

// Format names an export layout.
type Format string

const (
	// FormatAnki is the semicolon separated import file for Anki.
	FormatAnki Format = "anki"
	// FormatText is the Q:/A: layout used for copying to the clipboard.
	FormatText Format = "text"
)

// ParseFormat maps a query value to a Format. Empty means anki.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatAnki:
		return FormatAnki, nil
	case FormatText:
		return FormatText, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Side is anything with a front and a back.
type Side interface {
	FrontText() string
	BackText() string
}

func (f Flashcard) FrontText() string { return f.Front }
func (f Flashcard) BackText() string  { return f.Back }

// AnkiLine renders one card as front;back. Semicolons inside a field become
// commas so the delimiter stays unambiguous.
func AnkiLine(front, back string) string {
	return strings.ReplaceAll(front, ";", ",") + ";" + strings.ReplaceAll(back, ";", ",")
}

// Anki renders one line per card, joined by newlines, without a trailing newline.
func Anki[S Side](cards []S) string {
	lines := make([]string, 0, len(cards))
	for _, c := range cards {
		lines = append(lines, AnkiLine(c.FrontText(), c.BackText()))
	}
	return strings.Join(lines, "\n")
}

// Text renders cards as Q:/A: blocks separated by ---.
func Text[S Side](cards []S) string {
	blocks := make([]string, 0, len(cards))
	for _, c := range cards {
		blocks = append(blocks, "Q: "+c.FrontText()+"\nA: "+c.BackText())
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

// Render dispatches on format.
func Render[S Side](format Format, cards []S) string {
	if format == FormatText {
		return Text(cards)
	}
	return Anki(cards)
}

// ExportFilename is the download name for an export made at t.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("mediflash-export-%s.txt", t.UTC().Format("2006-01-02"))
}
