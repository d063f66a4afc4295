package ccqa

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Separator replaces newlines inside text payloads.
const Separator = "~"

// whitespaceRun matches two or more consecutive whitespace characters,
// including the no-break and narrow space variants common in scraped text.
var whitespaceRun = regexp.MustCompile(`[ \x{00A0}\x{202F}\x{2002}\t\n]{2,}`)

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// CollapseWhitespace replaces each run of two or more whitespace characters
// with the first character of the run.
func CollapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllStringFunc(s, func(run string) string {
		_, size := utf8.DecodeRuneInString(run)
		return run[:size]
	})
}

// CollapseRepeatedMarker replaces each run of consecutive marker
// occurrences with a single marker.
func CollapseRepeatedMarker(s, marker string) string {
	if marker == "" {
		return s
	}
	double := marker + marker
	if !strings.Contains(s, double) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for {
		i := strings.Index(s, double)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i+len(marker)])
		s = s[i+len(marker):]
		for strings.HasPrefix(s, marker) {
			s = s[len(marker):]
		}
	}
}

// EscapeText escapes the characters that are significant in HTML text content.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// SanitizeText normalizes a text payload for minified output: newlines become
// Separator, whitespace runs collapse, surrounding whitespace is trimmed and
// the result is HTML-escaped.
func SanitizeText(s string) string {
	s = strings.ReplaceAll(s, "\n", Separator)
	s = CollapseWhitespace(s)
	s = strings.TrimSpace(s)
	return EscapeText(s)
}
