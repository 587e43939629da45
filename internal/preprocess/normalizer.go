// Package preprocess normalizes raw extractor output before any
// classification or parsing runs.
package preprocess

import (
	"regexp"
	"strings"
	"unicode"
)

// mojibake maps UTF-8 text mis-decoded as cp1252 back to the intended
// glyphs. Currency signs and the accents of the supported locales are
// what upstream extractors mangle in practice.
var mojibake = strings.NewReplacer(
	"â‚¬", "€",
	"â€“", "–",
	"â€”", "—",
	"â€˜", "'",
	"â€™", "'",
	"â€œ", "\"",
	"â€¦", "…",
	"Ã©", "é",
	"Ã¨", "è",
	"Ãª", "ê",
	"Ã«", "ë",
	"Ã¤", "ä",
	"Ã¶", "ö",
	"Ã¼", "ü",
	"ÃŸ", "ß",
	"Ã§", "ç",
	"Ã±", "ñ",
	"Ã¡", "á",
	"Ã¢", "â",
	"Ã¬", "ì",
	"Ã­", "í",
	"Ã®", "î",
	"Ã²", "ò",
	"Ã³", "ó",
	"Ã´", "ô",
	"Ã¹", "ù",
	"Ãº", "ú",
	"Ã»", "û",
	"Ã ", "à",
	"Ã ", "à",
	"Â£", "£",
	"Â¥", "¥",
	"Â°", "°",
	"Â«", "«",
	"Â»", "»",
	"Â ", " ",
	"Â ", " ",
)

var (
	spaceRuns = regexp.MustCompile(`[ \t]+`)
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// Normalizer cleans encoding artifacts and whitespace from raw invoice
// text while preserving line boundaries.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize is deterministic, total and idempotent. Line structure
// survives: downstream extractors are line-oriented.
func (n *Normalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s := repairEncoding(raw)

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = stripInvisible(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")

	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.Trim(s, "\n")
}

// repairEncoding applies the mojibake table until the text stops
// changing. Nested artifacts resolve over multiple passes; every
// replacement shrinks the text, so the loop terminates.
func repairEncoding(s string) string {
	for {
		next := mojibake.Replace(s)
		if next == s {
			return s
		}
		s = next
	}
}

// stripInvisible removes zero-width and control runes (newline and tab
// excepted) and turns non-breaking spaces into plain ones.
func stripInvisible(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r == '\u00a0' || r == '\u202f':
			b.WriteByte(' ')
		case r == '\u200b' || r == '\u200c' || r == '\u200d' || r == '\ufeff':
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
