package flashcard

import (
	"regexp"
	"strings"
)

// Placeholder replaces hidden terms on the question side.
const Placeholder = "[...]"

var clozeMarker = regexp.MustCompile(`\{\{c\d+::(.*?)\}\}`)

// Segment is a run of text that is either plain or a cloze marker.
type Segment struct {
	Text    string // raw text as it appears in the source
	Payload string // hidden term, set only for markers
	Marker  bool
}

// SplitCloze cuts text into plain and marker segments in source order.
// Adjacent markers stay separate.
func SplitCloze(text string) []Segment {
	var out []Segment
	last := 0
	for _, m := range clozeMarker.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			out = append(out, Segment{Text: text[last:m[0]]})
		}
		out = append(out, Segment{
			Text:    text[m[0]:m[1]],
			Payload: text[m[2]:m[3]],
			Marker:  true,
		})
		last = m[1]
	}
	if last < len(text) {
		out = append(out, Segment{Text: text[last:]})
	}
	return out
}

// RenderQuestion hides every marker behind Placeholder.
func RenderQuestion(text string) string {
	return render(text, func(Segment) string { return Placeholder })
}

// RenderAnswer resolves every marker to its payload.
func RenderAnswer(text string) string {
	return render(text, func(s Segment) string { return s.Payload })
}

func render(text string, marker func(Segment) string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, s := range SplitCloze(text) {
		if s.Marker {
			b.WriteString(marker(s))
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

// Payloads lists the hidden terms of text in order.
func Payloads(text string) []string {
	var out []string
	for _, m := range clozeMarker.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

// BackResolves reports whether every hidden term of front shows up in back.
func BackResolves(front, back string) bool {
	for _, p := range Payloads(front) {
		if !strings.Contains(back, p) {
			return false
		}
	}
	return true
}
