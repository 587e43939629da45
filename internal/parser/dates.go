package parser

import (
	"regexp"
	"strings"
	"time"
)

// datePattern pairs a locale date regex with a builder that turns its
// capture groups into a canonical UTC date.
type datePattern struct {
	re    *regexp.Regexp
	build func(m []string) (time.Time, bool)
}

// numericDate builds a pattern whose groups are all numeric. Group
// indexes are 1-based positions in the regex.
func numericDate(pattern string, dayIdx, monthIdx, yearIdx int) datePattern {
	re := regexp.MustCompile(pattern)
	return datePattern{
		re: re,
		build: func(m []string) (time.Time, bool) {
			return makeDate(atoiSafe(m[yearIdx]), atoiSafe(m[monthIdx]), atoiSafe(m[dayIdx]))
		},
	}
}

// namedMonthDate builds a pattern whose month group is a localized
// month name resolved through months.
func namedMonthDate(pattern string, months map[string]time.Month, dayIdx, monthIdx, yearIdx int) datePattern {
	re := regexp.MustCompile(pattern)
	return datePattern{
		re: re,
		build: func(m []string) (time.Time, bool) {
			mon, ok := months[strings.ToLower(m[monthIdx])]
			if !ok {
				return time.Time{}, false
			}
			return makeDate(atoiSafe(m[yearIdx]), int(mon), atoiSafe(m[dayIdx]))
		},
	}
}

func makeDate(year, month, day int) (time.Time, bool) {
	if year < 1995 || year > 2100 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	ts := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject rollovers like February 30.
	if ts.Day() != day || int(ts.Month()) != month {
		return time.Time{}, false
	}
	return ts, true
}

var enMonths = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "jun": time.June, "jul": time.July,
	"aug": time.August, "sep": time.September, "sept": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var deMonths = map[string]time.Month{
	"januar": time.January, "februar": time.February, "märz": time.March,
	"maerz": time.March, "april": time.April, "mai": time.May,
	"juni": time.June, "juli": time.July, "august": time.August,
	"september": time.September, "oktober": time.October,
	"november": time.November, "dezember": time.December,
}

var frMonths = map[string]time.Month{
	"janvier": time.January, "février": time.February, "fevrier": time.February,
	"mars": time.March, "avril": time.April, "mai": time.May,
	"juin": time.June, "juillet": time.July, "août": time.August,
	"aout": time.August, "septembre": time.September, "octobre": time.October,
	"novembre": time.November, "décembre": time.December, "decembre": time.December,
}

var esMonths = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "septiembre": time.September,
	"octubre": time.October, "noviembre": time.November, "diciembre": time.December,
}

var itMonths = map[string]time.Month{
	"gennaio": time.January, "febbraio": time.February, "marzo": time.March,
	"aprile": time.April, "maggio": time.May, "giugno": time.June,
	"luglio": time.July, "agosto": time.August, "settembre": time.September,
	"ottobre": time.October, "novembre": time.November, "dicembre": time.December,
}

const (
	enMonthAlt = `(?:january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov|dec)`
	deMonthAlt = `(?:januar|februar|märz|maerz|april|mai|juni|juli|august|september|oktober|november|dezember)`
	frMonthAlt = `(?:janvier|février|fevrier|mars|avril|mai|juin|juillet|août|aout|septembre|octobre|novembre|décembre|decembre)`
	esMonthAlt = `(?:enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)`
	itMonthAlt = `(?:gennaio|febbraio|marzo|aprile|maggio|giugno|luglio|agosto|settembre|ottobre|novembre|dicembre)`
)
