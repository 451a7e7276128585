// Package textscan finds characters in artifact text that render invisibly or
// misleadingly. A zero-width space inside "yara.exe" hides the tool name from
// the extractor, so query text is sanitized before it is scanned for tools.
package textscan

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Finding is one suspicious character.
type Finding struct {
	Category  string // zero-width, bidi-override, tag-char, control-char, invalid-utf8, homoglyph-*
	Offset    int    // byte offset in the input
	Codepoint string // e.g. "U+200B"
	Strip     bool   // removed from Result.Sanitized
}

func (f Finding) String() string {
	return fmt.Sprintf("%s %s at offset %d", f.Category, f.Codepoint, f.Offset)
}

// Result is the outcome of scanning one text.
type Result struct {
	Findings  []Finding
	Sanitized string
}

// Clean reports whether nothing suspicious was found.
func (r Result) Clean() bool { return len(r.Findings) == 0 }

// Stripped counts the characters removed from the sanitized text.
func (r Result) Stripped() int {
	n := 0
	for _, f := range r.Findings {
		if f.Strip {
			n++
		}
	}
	return n
}

// Scan inspects text and returns it with invisible characters removed.
// Homoglyphs are reported but kept, since the replacement is ambiguous.
func Scan(text string) Result {
	var result Result
	var sanitized strings.Builder
	sanitized.Grow(len(text))

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])

		if r == utf8.RuneError && size == 1 {
			result.Findings = append(result.Findings, Finding{
				Category:  "invalid-utf8",
				Offset:    i,
				Codepoint: fmt.Sprintf("0x%02X", text[i]),
				Strip:     true,
			})
			i++
			continue
		}

		// A leading BOM is an encoding marker, not content.
		if r == '\uFEFF' && i == 0 {
			i += size
			continue
		}

		if category, strip := classify(r); category != "" {
			result.Findings = append(result.Findings, Finding{
				Category:  category,
				Offset:    i,
				Codepoint: fmt.Sprintf("U+%04X", r),
				Strip:     strip,
			})
			if strip {
				i += size
				continue
			}
		}

		sanitized.WriteRune(r)
		i += size
	}

	result.Sanitized = sanitized.String()
	return result
}

func classify(r rune) (category string, strip bool) {
	switch {
	case isZeroWidth(r):
		return "zero-width", true
	case isBidiOverride(r):
		return "bidi-override", true
	case r >= 0xE0001 && r <= 0xE007F:
		return "tag-char", true
	case isUnsafeControl(r):
		return "control-char", true
	}

	if unicode.Is(unicode.Cyrillic, r) {
		if _, ok := cyrillicHomoglyphs[r]; ok {
			return "homoglyph-cyrillic", false
		}
	}
	if unicode.Is(unicode.Greek, r) {
		if _, ok := greekHomoglyphs[r]; ok {
			return "homoglyph-greek", false
		}
	}
	return "", false
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\uFEFF', '\u2060', '\u180E', '\u200E', '\u200F':
		return true
	}
	return false
}

func isBidiOverride(r rune) bool {
	switch r {
	case '\u202A', '\u202B', '\u202C', '\u202D', '\u202E',
		'\u2066', '\u2067', '\u2068', '\u2069':
		return true
	}
	return false
}

func isUnsafeControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return r <= 0x1F || r == 0x7F || (r >= 0x80 && r <= 0x9F)
}

// Cyrillic letters that render like Latin ones.
var cyrillicHomoglyphs = map[rune]rune{
	'\u0430': 'a', '\u0410': 'A', '\u0412': 'B', '\u0441': 'c', '\u0421': 'C', '\u0435': 'e', '\u0415': 'E',
	'\u041d': 'H', '\u0456': 'i', '\u0406': 'I', '\u041a': 'K', '\u041c': 'M', '\u043e': 'o', '\u041e': 'O',
	'\u0440': 'p', '\u0420': 'P', '\u0422': 'T', '\u0445': 'x', '\u0425': 'X', '\u0443': 'y', '\u0423': 'Y',
}

// Greek letters that render like Latin ones.
var greekHomoglyphs = map[rune]rune{
	'\u0391': 'A', '\u0392': 'B', '\u0395': 'E', '\u0397': 'H', '\u0399': 'I', '\u039a': 'K', '\u039c': 'M',
	'\u039d': 'N', '\u039f': 'O', '\u03bf': 'o', '\u03a1': 'P', '\u03a4': 'T', '\u03a7': 'X', '\u03a5': 'Y', '\u0396': 'Z',
}
