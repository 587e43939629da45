package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"currency mojibake",
			"Gesamtsumme: 66,38 â‚¬",
			"Gesamtsumme: 66,38 €",
		},
		{
			"accent mojibake",
			"15 dÃ©cembre 2023\nFrais d'expÃ©dition",
			"15 décembre 2023\nFrais d'expédition",
		},
		{
			"windows line endings",
			"Order #123\r\nTotal: $5.00\r",
			"Order #123\nTotal: $5.00",
		},
		{
			"whitespace collapse",
			"Subtotal:\t\t  $10.00   \nTotal:      $12.00",
			"Subtotal: $10.00\nTotal: $12.00",
		},
		{
			"blank line runs",
			"a\n\n\n\n\nb",
			"a\n\nb",
		},
		{
			"zero width and bom",
			"\ufeffOrder\u200b Number",
			"Order Number",
		},
		{
			"non breaking spaces",
			"1 234,56 €",
			"1 234,56 €",
		},
		{
			"empty",
			"",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer()

	inputs := []string{
		"Gesamtsumme: 66,38 â‚¬\r\n\r\n\r\nZwischensumme:\t55,32 â‚¬",
		"ASIN: B08N5WRWNW\n155,32 €\n20%\n66,38 €66,38 €",
		"Ã¢‚¬ nested artifact",
		"  plain   text  with   noise ​  ",
		"",
		"\n\n\n",
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}
