package parser

import (
	"regexp"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/money"
)

// tablesJA covers amazon.co.jp: yen amounts carry no decimal places.
func tablesJA() tables {
	return tables{
		format:   constants.ConsumerStandard,
		language: constants.LangJA,
		currency: "JPY",
		conv:     money.IntegerYen,
		orderNumber: []*regexp.Regexp{
			regexp.MustCompile(`注文番号\s*[::#]?\s*(\d{3}-\d{7}-\d{7})`),
		},
		dates: []datePattern{
			numericDate(`(\d{4})年\s?(\d{1,2})月\s?(\d{1,2})日`, 3, 2, 1),
		},
		subtotal: []*regexp.Regexp{
			labelAmt(`商品の小計|小計`, amtYen),
		},
		shipping: []*regexp.Regexp{
			labelAmt(`配送料|送料`, amtYen),
		},
		tax: []*regexp.Regexp{
			labelAmt(`消費税`, amtYen),
		},
		total: []*regexp.Regexp{
			labelAmt(`注文合計|ご請求額|合計`, amtYen),
		},
		quantity: []*regexp.Regexp{
			regexp.MustCompile(`数量[^0-9]{0,10}(\d{1,3})`),
		},
		amountRe: regexp.MustCompile(`[¥￥]\s?` + amtYen + `|` + amtYen + `\s?円`),
	}
}
