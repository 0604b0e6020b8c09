package renderer

import (
	"bytes"
	"io"

	"github.com/Rhymond/go-money"
	"github.com/etnz/profit"
	"github.com/shopspring/decimal"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// Amount formats v in the currency's own precision and symbol. Absent values
// are rendered empty. Unknown currencies fall back to two decimals and the code.
func Amount(v decimal.NullDecimal, currency string) string {
	if !v.Valid {
		return ""
	}
	cur := money.GetCurrency(profit.CanonicalCurrency(currency))
	if cur == nil {
		if currency == "" {
			return v.Decimal.StringFixed(2)
		}
		return v.Decimal.StringFixed(2) + " " + currency
	}
	minor := v.Decimal.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// Percent formats a yield in percent with two decimals.
func Percent(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.StringFixed(2) + "%"
}

