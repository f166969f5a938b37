package flashcard

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// markup matches HTML comments and tags of common elements. Attributes must
// carry a value, so comparisons such as "a<b and c>d" are not tags.
var markup = regexp.MustCompile(`(?i)<!--[\s\S]*?-->|</?(?:a|abbr|b|big|blockquote|br|code|del|div|em|font|h[1-6]|hr|i|iframe|img|ins|li|mark|object|ol|p|pre|s|script|small|span|strike|strong|style|sub|sup|table|tbody|td|th|thead|tr|u|ul)(?:\s+[a-z_:][a-z0-9_:.-]*\s*=\s*(?:"[^"]*"|'[^']*'|[^\s"'<>]+))*\s*/?>`)

// CleanText strips markup from untrusted text and trims it. Text without
// markup is only trimmed. A '<' that does not open a tag is kept as written.
func CleanText(s string) string {
	spans := markup.FindAllStringIndex(s, -1)
	if len(spans) == 0 {
		return strings.TrimSpace(s)
	}

	var sb strings.Builder
	sb.Grow(len(s) + 8)
	next := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '<' {
			sb.WriteByte(s[i])
			continue
		}
		for next < len(spans) && spans[next][0] < i {
			next++
		}
		if next < len(spans) && spans[next][0] == i {
			sb.WriteByte('<')
			continue
		}
		sb.WriteString("&lt;")
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(sb.String())))
}

// Clean applies CleanText to every text field of f. Known types are matched
// case-insensitively; any other type is kept as written.
func (f Flashcard) Clean() Flashcard {
	f.Type = Type(CleanText(string(f.Type)))
	if lower := Type(strings.ToLower(string(f.Type))); lower.Known() {
		f.Type = lower
	}
	f.Front = CleanText(f.Front)
	f.Back = CleanText(f.Back)
	f.Tag = CleanText(f.Tag)
	f.Deck = CleanText(f.Deck)
	if len(f.Options) > 0 {
		opts := make([]string, 0, len(f.Options))
		for _, o := range f.Options {
			if o = CleanText(o); o != "" {
				opts = append(opts, o)
			}
		}
		f.Options = opts
	}
	return f
}
