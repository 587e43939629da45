package constants

import "strings"

// Language is a supported invoice language and region variant.
type Language string

// Stable values (stored in results; region variants carry a suffix).
const (
	LangEN   Language = "en"
	LangENGB Language = "en-GB"
	LangENCA Language = "en-CA"
	LangENAU Language = "en-AU"
	LangDE   Language = "de"
	LangDECH Language = "de-CH"
	LangFR   Language = "fr"
	LangES   Language = "es"
	LangIT   Language = "it"
	LangJA   Language = "ja"
)

var allLanguages = []Language{
	LangEN,
	LangENGB,
	LangENCA,
	LangENAU,
	LangDE,
	LangDECH,
	LangFR,
	LangES,
	LangIT,
	LangJA,
}

// Languages returns every supported language as a string slice.
func Languages() []string {
	result := make([]string, len(allLanguages))
	for i, l := range allLanguages {
		result[i] = string(l)
	}
	return result
}

// Base strips the region suffix: "en-GB" -> "en".
func (l Language) Base() Language {
	s := string(l)
	if i := strings.IndexByte(s, '-'); i > 0 {
		return Language(s[:i])
	}
	return l
}

// CanonicalLanguage maps free-form input to a supported language value.
func CanonicalLanguage(input string) (Language, bool) {
	if input == "" {
		return LangEN, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Language{
		"english":  LangEN,
		"german":   LangDE,
		"deutsch":  LangDE,
		"french":   LangFR,
		"francais": LangFR,
		"spanish":  LangES,
		"espanol":  LangES,
		"italian":  LangIT,
		"japanese": LangJA,
		"jp":       LangJA,
		"uk":       LangENGB,
		"gb":       LangENGB,
		"ca":       LangENCA,
		"au":       LangENAU,
		"ch":       LangDECH,
		"swiss":    LangDECH,
	}

	if l, ok := synonyms[normalized]; ok {
		return l, true
	}

	for _, l := range allLanguages {
		if normalized == strings.ToLower(string(l)) {
			return l, true
		}
	}

	return LangEN, false
}
