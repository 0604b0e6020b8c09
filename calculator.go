package profit

import (
	"fmt"

	"github.com/etnz/profit/date"
	"github.com/shopspring/decimal"
)

// CashFlowLookup finds the cash flow of a given kind attached to a transaction.
type CashFlowLookup interface {
	Find(portfolio string, transactionID int64, kind CashFlowType) (TransactionCashFlow, bool)
}

// DefaultTaxRate is the statutory rate applied to price appreciation.
var DefaultTaxRate = decimal.New(13, -2)

const scale = 6 // decimal places of every monetary output

var (
	hundred    = decimal.NewFromInt(100)
	daysInYear = decimal.NewFromInt(365)
)

// Calculator computes the profit row of positions.
//
// All amounts are converted to the pricing currency of the instrument, which
// is the currency of its PRICE cash flows. It is resolved once per instrument
// and kept in the CurrencyCache.
type Calculator struct {
	lookup     CashFlowLookup
	converter  Converter
	currencies *CurrencyCache

	// TaxRate applied to price appreciation of closed positions.
	TaxRate decimal.Decimal
}

// NewCalculator returns a Calculator. A nil cache is replaced by a fresh one.
// converter is only called for cash flows in a currency other than the
// pricing currency.
func NewCalculator(lookup CashFlowLookup, converter Converter, cache *CurrencyCache) *Calculator {
	if cache == nil {
		cache = NewCurrencyCache()
	}
	return &Calculator{
		lookup:     lookup,
		converter:  converter,
		currencies: cache,
		TaxRate:    DefaultTaxRate,
	}
}

// Row dispatches to ClosedRow for closed positions and OpenedRow otherwise.
func (c *Calculator) Row(sec Security, p Position, paid PaidInterest, redemptions []SecurityEventCashFlow) (Row, error) {
	if cp, ok := p.(*ClosedPosition); ok {
		return c.ClosedRow(sec, cp, paid, redemptions)
	}
	return c.OpenedRow(sec, p, paid)
}

// OpenedRow computes the opening side of a position and the interest it received.
func (c *Calculator) OpenedRow(sec Security, p Position, paid PaidInterest) (Row, error) {
	// a security without a price to resolve its currency cannot be reported
	currency, err := c.pricingCurrency(p)
	if err != nil {
		return Row{}, err
	}
	tx := p.OpenTransaction()
	row := Row{
		Security: sec.Label(),
		Currency: currency,
		Kind:     KindOpened,
		OpenDate: date.Of(tx.Timestamp),
		Count:    p.Count() * sign(tx.Count),
	}
	if _, ok := p.(*FictitiousPosition); ok {
		row.Kind = KindFictitious
	}

	if row.OpenPrice, err = c.transactionCashFlow(p, tx, Price, 1, tx.Count); err != nil {
		return row, err
	}
	if row.OpenAmount, err = c.transactionCashFlow(p, tx, Price, p.Count(), tx.Count); err != nil {
		return row, err
	}
	if row.OpenAccruedInterest, err = c.transactionCashFlow(p, tx, AccruedInterest, p.Count(), tx.Count); err != nil {
		return row, err
	}
	if row.OpenCommission, err = c.transactionCashFlow(p, tx, Commission, p.Count(), tx.Count); err != nil {
		return row, err
	}
	if err := c.paidInterest(&row, p, paid); err != nil {
		return row, err
	}
	return row, nil
}

// ClosedRow computes both sides of a closed position, the interest it
// received, the forecast tax, the profit and the annualized yield.
//
// redemptions holds the REDEMPTION events of the instrument, used when the
// position was closed by redemption.
func (c *Calculator) ClosedRow(sec Security, p *ClosedPosition, paid PaidInterest, redemptions []SecurityEventCashFlow) (Row, error) {
	row, err := c.OpenedRow(sec, p, paid)
	if err != nil {
		return row, err
	}
	row.Kind = KindClosed

	tx := p.CloseTransaction()
	row.CloseDate = date.Of(tx.Timestamp)
	switch p.ClosingEvent() {
	case Price:
		row.CloseAmount, err = c.transactionCashFlow(p, tx, Price, p.Count(), tx.Count)
	case Redemption:
		row.CloseAmount, err = c.redemption(p, redemptions, p.Count(), tx.Count)
	default:
		err = fmt.Errorf("%w: security %s cannot be closed by a %v event", ErrInputIntegrity, tx.Instrument, p.ClosingEvent())
	}
	if err != nil {
		return row, err
	}
	if row.CloseAccruedInterest, err = c.transactionCashFlow(p, tx, AccruedInterest, p.Count(), tx.Count); err != nil {
		return row, err
	}
	if row.CloseCommission, err = c.transactionCashFlow(p, tx, Commission, p.Count(), tx.Count); err != nil {
		return row, err
	}

	c.closedProfit(&row, p.Long())
	return row, nil
}

// closedProfit fills the forecast tax, profit and yield of a closed row.
// Absent amounts count as zero.
func (c *Calculator) closedProfit(row *Row, long bool) {
	open := zero(row.OpenAmount).Add(zero(row.OpenAccruedInterest))
	closing := zero(row.CloseAmount).Add(zero(row.CloseAccruedInterest))
	commission := zero(row.OpenCommission).Add(zero(row.CloseCommission))
	buy, sell := open, closing
	if !long {
		buy, sell = closing, open
	}

	gain := sell.Add(zero(row.Amortization)).Sub(buy).Sub(commission)
	forecast := decimal.Max(decimal.Zero, gain).Mul(c.TaxRate).Round(scale)
	row.ForecastTax = decimal.NewNullDecimal(forecast)

	payments := zero(row.Coupon).Add(zero(row.Amortization)).Add(zero(row.Dividend))
	taxes := zero(row.Tax).Add(forecast)
	profit := sell.Add(payments).Sub(buy).Sub(taxes).Sub(commission).Round(scale)
	row.Profit = decimal.NewNullDecimal(profit)

	invested := open.Add(zero(row.OpenCommission))
	days := decimal.NewFromInt(int64(1 + abs(row.OpenDate.Days(row.CloseDate))))
	if invested.IsZero() {
		return
	}
	yield := profit.Mul(hundred).Mul(daysInYear).Div(invested.Mul(days)).Round(scale)
	row.Yield = decimal.NewNullDecimal(yield)
}

// paidInterest fills the coupon, amortization, dividend and tax totals.
func (c *Calculator) paidInterest(row *Row, p Position, paid PaidInterest) error {
	fields := map[CashFlowType]*decimal.NullDecimal{
		Coupon:       &row.Coupon,
		Amortization: &row.Amortization,
		Dividend:     &row.Dividend,
		Tax:          &row.Tax,
	}
	for _, kind := range InterestTypes {
		pays := paid.Get(kind, p)
		if len(pays) == 0 {
			continue
		}
		var total decimal.Decimal
		for _, e := range pays {
			rate, err := c.rate(e.Currency, p)
			if err != nil {
				return err
			}
			total = total.Add(e.Value.Mul(rate).Abs())
		}
		*fields[kind] = decimal.NewNullDecimal(total.Round(scale))
	}
	return nil
}

// transactionCashFlow returns |value * num / den| of the kind of cash flow of
// tx, converted into the pricing currency of p's instrument. It is invalid when
// tx is synthetic or the cash flow is absent or not material.
func (c *Calculator) transactionCashFlow(p Position, tx Transaction, kind CashFlowType, num, den int) (decimal.NullDecimal, error) {
	if tx.Synthetic() || den == 0 {
		return decimal.NullDecimal{}, nil
	}
	cash, ok := c.lookup.Find(tx.Portfolio, tx.ID, kind)
	if !ok || !IsMaterial(cash.Value) {
		return decimal.NullDecimal{}, nil
	}
	rate, err := c.rate(cash.Currency, p)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(scaled(cash.Value.Mul(rate), num, den)), nil
}

// redemption returns the redemption value scaled by num/den.
func (c *Calculator) redemption(p Position, redemptions []SecurityEventCashFlow, num, den int) (decimal.NullDecimal, error) {
	switch {
	case len(redemptions) == 0 || den == 0:
		return decimal.NullDecimal{}, nil
	case len(redemptions) > 1:
		return decimal.NullDecimal{}, fmt.Errorf("%w: at most one redemption per security, %s has %d: %v",
			ErrInputIntegrity, redemptions[0].Instrument, len(redemptions), redemptions)
	}
	r := redemptions[0]
	rate, err := c.rate(r.Currency, p)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(scaled(r.Value.Mul(rate), num, den)), nil
}

// rate returns the rate from currency to the pricing currency of p's
// instrument. It never calls the converter for the same currency.
func (c *Calculator) rate(currency string, p Position) (decimal.Decimal, error) {
	priced, err := c.pricingCurrency(p)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if SameCurrency(currency, priced) {
		return decimal.NewFromInt(1), nil
	}
	if c.converter == nil {
		return decimal.Decimal{}, fmt.Errorf("no converter from %s to %s", currency, priced)
	}
	rate, err := c.converter.Rate(currency, priced)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("cannot convert %s to %s: %w", currency, priced, err)
	}
	return rate, nil
}

// pricingCurrency returns the currency of the PRICE cash flow of the
// transaction that opened p, memoized per instrument.
func (c *Calculator) pricingCurrency(p Position) (string, error) {
	tx := p.OpenTransaction()
	if f, ok := p.(*FictitiousPosition); ok {
		tx = f.lot
	}
	return c.currencies.Currency(tx.Instrument, func() (string, error) {
		if tx.Synthetic() {
			return "", fmt.Errorf("%w: no price for the synthetic transaction of %s", ErrLookupExhausted, tx.Instrument)
		}
		cash, ok := c.lookup.Find(tx.Portfolio, tx.ID, Price)
		if !ok {
			return "", fmt.Errorf("%w: no price for transaction %d of %s", ErrLookupExhausted, tx.ID, tx.Instrument)
		}
		return cash.Currency, nil
	})
}

// scaled returns |v * num / den| rounded half up to scale decimal places.
func scaled(v decimal.Decimal, num, den int) decimal.Decimal {
	return v.Mul(decimal.NewFromInt(int64(num))).Div(decimal.NewFromInt(int64(den))).Abs().Round(scale)
}

func zero(v decimal.NullDecimal) decimal.Decimal {
	if v.Valid {
		return v.Decimal
	}
	return decimal.Zero
}
