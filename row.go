package profit

import (
	"fmt"

	"github.com/etnz/profit/date"
	"github.com/shopspring/decimal"
)

// PositionKind tells which kind of position a Row describes.
type PositionKind string

const (
	KindOpened     PositionKind = "opened"
	KindClosed     PositionKind = "closed"
	KindFictitious PositionKind = "fictitious"
)

// Row holds the financial figures of one position. Monetary fields are in
// the instrument's pricing currency, rounded to 6 decimal places, and are
// invalid when the underlying data is absent.
type Row struct {
	Security string
	Currency string
	Kind     PositionKind
	OpenDate date.Date
	Count    int // signed, negative for short positions

	OpenPrice           decimal.NullDecimal
	OpenAmount          decimal.NullDecimal
	OpenAccruedInterest decimal.NullDecimal
	OpenCommission      decimal.NullDecimal

	CloseDate            date.Date // zero unless Kind is KindClosed
	CloseAmount          decimal.NullDecimal
	CloseAccruedInterest decimal.NullDecimal
	CloseCommission      decimal.NullDecimal

	Coupon       decimal.NullDecimal
	Amortization decimal.NullDecimal
	Dividend     decimal.NullDecimal
	Tax          decimal.NullDecimal

	ForecastTax decimal.NullDecimal
	Profit      decimal.NullDecimal
	Yield       decimal.NullDecimal // annualized, in percent
}

// Closed reports whether the row describes a closed position.
func (r Row) Closed() bool { return r.Kind == KindClosed }

func (r Row) String() string {
	if r.Closed() {
		return fmt.Sprintf("%s %d %s..%s profit %s", r.Security, r.Count, r.OpenDate, r.CloseDate, r.Profit.Decimal)
	}
	return fmt.Sprintf("%s %d %s %s", r.Security, r.Count, r.OpenDate, r.Kind)
}

// MarshalJSON writes the row with a stable field order, omitting absent values.
func (r Row) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("security", r.Security)
	w.Optional("currency", r.Currency)
	w.Append("kind", r.Kind)
	w.Append("openDate", r.OpenDate)
	w.Append("count", r.Count)
	w.Amount("openPrice", r.OpenPrice)
	w.Amount("openAmount", r.OpenAmount)
	w.Amount("openAccruedInterest", r.OpenAccruedInterest)
	w.Amount("openCommission", r.OpenCommission)
	if !r.CloseDate.IsZero() {
		w.Append("closeDate", r.CloseDate)
	}
	w.Amount("closeAmount", r.CloseAmount)
	w.Amount("closeAccruedInterest", r.CloseAccruedInterest)
	w.Amount("closeCommission", r.CloseCommission)
	w.Amount("coupon", r.Coupon)
	w.Amount("amortization", r.Amortization)
	w.Amount("dividend", r.Dividend)
	w.Amount("tax", r.Tax)
	w.Amount("forecastTax", r.ForecastTax)
	w.Amount("profit", r.Profit)
	w.Amount("yield", r.Yield)
	return w.MarshalJSON()
}
