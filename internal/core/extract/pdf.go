package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

var (
	ErrNotPDF = errors.New("file is not a PDF")
	ErrNoText = errors.New("PDF contains no extractable text")
)

var pdfMagic = []byte("%PDF-")

// IsPDF sniffs the file header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), pdfMagic)
}

// PDFText returns the plain text of every page, normalized. Pages that fail to
// decode are skipped; a document without any text yields ErrNoText.
func PDFText(data []byte) (text string, err error) {
	if !IsPDF(data) {
		return "", ErrNotPDF
	}

	// the parser panics on some malformed cross reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	text = Normalize(b.String())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// Normalize unifies line endings, drops control characters and the BOM, trims
// every line and collapses runs of blank lines into one.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	b.Grow(len(s))
	blank := 0
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(printable(line))
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
			b.WriteString("\n")
			continue
		}
		blank = 0
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func printable(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\uFEFF', r == unicode.ReplacementChar:
			return -1
		case r == '\t':
			return ' '
		case !unicode.IsPrint(r) && !unicode.IsSpace(r):
			return -1
		}
		return r
	}, s)
}
