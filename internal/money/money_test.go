package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		conv  Convention
		want  string
	}{
		{"german decimal comma", "66,38 €", CommaDecimal, "66.38"},
		{"german grouped", "1.234,56 €", CommaDecimal, "1234.56"},
		{"french narrow space group", "1 234,56 €", CommaDecimal, "1234.56"},
		{"english plain", "$29.99", DotDecimal, "29.99"},
		{"english grouped", "£1,234.56", DotDecimal, "1234.56"},
		{"swiss apostrophe", "1'176.45 CHF", ApostropheThousand, "1176.45"},
		{"swiss typographic apostrophe", "1’176.45", ApostropheThousand, "1176.45"},
		{"swiss comma fallback", "176,45 CHF", ApostropheThousand, "176.45"},
		{"yen grouped", "¥1,234", IntegerYen, "1234"},
		{"yen plain", "1234円", IntegerYen, "1234"},
		{"negative", "-15,00 €", CommaDecimal, "-15"},
		{"auto german", "66,38", AutoDetect, "66.38"},
		{"auto english", "29.99", AutoDetect, "29.99"},
		{"auto grouped comma", "1,234", AutoDetect, "1234"},
		{"auto grouped dot", "1.234", AutoDetect, "1234"},
		{"auto both separators de", "1.234,56", AutoDetect, "1234.56"},
		{"auto both separators en", "1,234.56", AutoDetect, "1234.56"},
		{"code suffix", "55,32 EUR", CommaDecimal, "55.32"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, tt.conv)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "   ", "€", "abc", "12..34,,"} {
		_, err := Parse(input, AutoDetect)
		assert.Error(t, err, "input %q", input)
	}
}

func TestDetectCurrency(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Gesamtsumme: 66,38 €", "EUR"},
		{"Total: 1'176.45 CHF", "CHF"},
		{"Order Total: £23.50", "GBP"},
		{"合計 ¥1,234", "JPY"},
		{"Total: $45.00 CAD", "CAD"},
		{"Grand Total: $45.00", "USD"},
		{"no amounts here", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectCurrency(tt.input), tt.input)
	}
}
