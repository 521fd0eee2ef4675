package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// KZT is the marketplace settlement currency; the backend quotes every price
// in tenge.
var KZT = currency.MustParseISO("KZT")

var pricePrinter = message.NewPrinter(language.MustParse("kk"))

// FormatPrice renders an amount with the tenge sign for templates.
func FormatPrice(d decimal.Decimal) string {
	f, _ := d.Float64()
	return pricePrinter.Sprintf("%v", currency.NarrowSymbol(KZT.Amount(f)))
}
