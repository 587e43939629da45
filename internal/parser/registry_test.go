package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
)

func TestSelectExactPair(t *testing.T) {
	r := NewRegistry(Deps{})

	tests := []struct {
		name   string
		format constants.InvoiceFormat
		lang   constants.Language
		want   constants.Language
	}{
		{"german consumer", constants.ConsumerEUVatInclusive, constants.LangDE, constants.LangDE},
		{"german business", constants.BusinessExVat, constants.LangDE, constants.LangDE},
		{"french business", constants.BusinessExVat, constants.LangFR, constants.LangFR},
		{"swiss", constants.ConsumerStandard, constants.LangDECH, constants.LangDECH},
		{"british", constants.ConsumerStandard, constants.LangENGB, constants.LangENGB},
		{"japanese", constants.ConsumerStandard, constants.LangJA, constants.LangJA},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := r.Select(tc.format, tc.lang)
			require.NotNil(t, p)
			assert.Equal(t, tc.want, p.Language())
		})
	}
}

func TestSelectFallbackChain(t *testing.T) {
	r := NewRegistry(Deps{})

	// No Italian business parser exists: fall back to the Italian
	// consumer parser rather than losing the language.
	p := r.Select(constants.BusinessExVat, constants.LangIT)
	require.NotNil(t, p)
	assert.Equal(t, constants.LangIT, p.Language())

	// Unknown format resolves through the language's consumer parser.
	p = r.Select(constants.FormatUnknown, constants.LangFR)
	require.NotNil(t, p)
	assert.Equal(t, constants.LangFR, p.Language())

	// A pair with no registered parser at all lands on the English
	// generic parser, never nil.
	p = r.Select(constants.FormatUnknown, constants.Language("xx"))
	require.NotNil(t, p)
	assert.Equal(t, constants.LangEN, p.Language())

	p = r.Select(constants.BusinessExVat, constants.Language("en-NZ"))
	require.NotNil(t, p)
	assert.Equal(t, constants.LangEN, p.Language())
}
