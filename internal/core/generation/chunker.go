package generation

import "strings"

// DefaultChunkSize keeps a chunk near 3000 tokens at roughly 4 characters per token.
const DefaultChunkSize = 12000

// Chunk splits text into ordered windows of at most maxChunkSize runes.
// A window that stops short of the end is cut after its last newline or
// sentence end (". ") when one lies past the window start, otherwise at the
// raw edge. Segments are trimmed and blank ones dropped, so whitespace-only
// text yields no chunks. maxChunkSize below 1 means DefaultChunkSize.
func Chunk(text string, maxChunkSize int) []string {
	if maxChunkSize < 1 {
		maxChunkSize = DefaultChunkSize
	}
	runes := []rune(text)

	var chunks []string
	for start := 0; start < len(runes); {
		end := start + maxChunkSize
		if end >= len(runes) {
			end = len(runes)
		} else if cut := lastBoundary(runes[start:end]); cut > 0 {
			end = start + cut + 1
		}
		if seg := strings.TrimSpace(string(runes[start:end])); seg != "" {
			chunks = append(chunks, seg)
		}
		start = end
	}
	return chunks
}

// lastBoundary returns the index of the last newline or of the period of the
// last ". " in window, whichever is later, or -1.
func lastBoundary(window []rune) int {
	newline := -1
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '\n' {
			newline = i
			break
		}
	}
	period := -1
	for i := len(window) - 2; i > newline; i-- {
		if window[i] == '.' && window[i+1] == ' ' {
			period = i
			break
		}
	}
	return max(newline, period)
}

// PerChunkTarget is how many cards each of chunks is asked for so that the
// total reaches quantity: ceil(quantity/chunks), never below 1.
func PerChunkTarget(quantity, chunks int) int {
	if chunks < 1 {
		chunks = 1
	}
	return max(1, (quantity+chunks-1)/chunks)
}
