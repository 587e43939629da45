package parser

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/entity"
)

// localeParser is the table-driven parser variant; everything it does
// comes from base plus its pattern tables.
type localeParser struct {
	base
}

func (p *localeParser) Extract(text string) (*entity.InvoiceRecord, error) {
	return p.run(p, text)
}

// businessParser adds the format-specific preprocessing step: business
// layouts wrap one logical price-table row over several physical lines,
// so cell-only lines are folded back into the row above before
// scanning.
type businessParser struct {
	base
	cellOnly *regexp.Regexp
}

func (p *businessParser) Extract(text string) (*entity.InvoiceRecord, error) {
	return p.run(p, text)
}

func (p *businessParser) prepare(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(out) > 0 && trimmed != "" && p.cellOnly.MatchString(trimmed) {
			prev := out[len(out)-1]
			if p.t.amountRe.MatchString(prev) || asinRe.MatchString(prev) {
				out[len(out)-1] = prev + " " + trimmed
				continue
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func newLocaleParser(t tables, deps Deps) *localeParser {
	return &localeParser{base: newBase(t, deps)}
}

func newBusinessParser(t tables, deps Deps) *businessParser {
	cell := `(?:` + t.amountRe.String() + `|\d{1,2}\s?%)`
	return &businessParser{
		base:     newBase(t, deps),
		cellOnly: regexp.MustCompile(`^` + cell + `(?:\s+` + cell + `)*$`),
	}
}

type registryKey struct {
	format constants.InvoiceFormat
	lang   constants.Language
}

// Registry holds every supported (format, language) parser. It is
// built once at startup; the parsers and their tables are read-only
// afterwards, so selection is safe under concurrent batch processing.
type Registry struct {
	parsers map[registryKey]Parser
	generic Parser
	log     *slog.Logger
}

func NewRegistry(deps Deps) *Registry {
	deps = deps.withDefaults()

	r := &Registry{
		parsers: make(map[registryKey]Parser),
		log:     deps.Log,
	}
	add := func(p Parser) {
		r.parsers[registryKey{p.Format(), p.Language()}] = p
	}
	// EU consumer layouts serve both consumer families: the
	// VAT-inclusive column selection is identical.
	addEU := func(t tables) {
		p := newLocaleParser(t, deps)
		add(p)
		r.parsers[registryKey{constants.ConsumerStandard, t.language}] = p
	}

	generic := newLocaleParser(tablesEN(), deps)
	r.generic = generic
	add(generic)
	add(newLocaleParser(tablesENGB(), deps))
	add(newLocaleParser(tablesENCA(), deps))
	add(newLocaleParser(tablesENAU(), deps))
	add(newLocaleParser(tablesDECH(), deps))
	add(newLocaleParser(tablesJA(), deps))

	addEU(tablesConsumerDE())
	addEU(tablesConsumerFR())
	addEU(tablesES())
	addEU(tablesIT())

	add(newBusinessParser(tablesBusinessDE(), deps))
	add(newBusinessParser(tablesBusinessFR(), deps))

	return r
}

// Select resolves the parser for a classified invoice. The fallback
// chain guarantees a parser always exists: exact pair, base language,
// the language's consumer parser, then the English generic parser.
func (r *Registry) Select(format constants.InvoiceFormat, lang constants.Language) Parser {
	if format == constants.FormatUnknown {
		format = constants.ConsumerStandard
	}
	chain := []registryKey{
		{format, lang},
		{format, lang.Base()},
		{constants.ConsumerStandard, lang},
		{constants.ConsumerStandard, lang.Base()},
		{constants.ConsumerEUVatInclusive, lang.Base()},
	}
	for _, k := range chain {
		if p, ok := r.parsers[k]; ok {
			return p
		}
	}
	r.log.Debug("parser.select.fallback",
		"format", string(format),
		"language", string(lang))
	return r.generic
}
