package profit

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// TransactionSource returns the transactions of an instrument in a portfolio,
// sorted by timestamp then id.
type TransactionSource interface {
	Transactions(portfolio, instrument string) ([]Transaction, error)
}

// EventSource returns the security events of an instrument in a portfolio,
// by timestamp, restricted to the given kinds (all kinds when none).
type EventSource interface {
	Events(portfolio, instrument string, kinds ...CashFlowType) ([]SecurityEventCashFlow, error)
}

// Sources groups the collaborators a report reads from.
type Sources struct {
	Transactions TransactionSource
	Events       EventSource
	CashFlows    CashFlowLookup
	Converter    Converter
}

// Options tune a report.
type Options struct {
	// Currency, when set, restricts the report to instruments priced in it.
	Currency string
	// TaxRate, when valid, overrides DefaultTaxRate. A valid zero disables
	// the forecast tax.
	TaxRate decimal.NullDecimal
	Log     zerolog.Logger
}

// ProfitReport holds the rows of a portfolio: rows of opened and fictitious
// positions first, then rows of closed positions.
type ProfitReport struct {
	Portfolio string
	Rows      []Row
}

// Opened returns the rows of positions still held, fictitious ones included.
func (r *ProfitReport) Opened() []Row {
	var rows []Row
	for _, row := range r.Rows {
		if !row.Closed() {
			rows = append(rows, row)
		}
	}
	return rows
}

// Closed returns the rows of closed positions.
func (r *ProfitReport) Closed() []Row {
	var rows []Row
	for _, row := range r.Rows {
		if row.Closed() {
			rows = append(rows, row)
		}
	}
	return rows
}

// Report computes the profit rows of each security of the portfolio.
//
// Securities are processed independently: when one fails, its error is
// wrapped in an *InstrumentError and the others are still reported. The
// returned error joins all the instrument errors.
func Report(portfolio string, securities []Security, src Sources, opts Options) (*ProfitReport, error) {
	log := opts.Log.With().Str("portfolio", portfolio).Logger()
	calc := NewCalculator(src.CashFlows, src.Converter, NewCurrencyCache())
	if opts.TaxRate.Valid {
		calc.TaxRate = opts.TaxRate.Decimal
	}

	report := &ProfitReport{Portfolio: portfolio}
	var opened, closed []Row
	var errs []error
	for _, sec := range securities {
		o, c, err := instrumentRows(calc, portfolio, sec, src, opts.Currency)
		if err != nil {
			log.Error().Err(err).Str("instrument", sec.ID).Msg("instrument skipped")
			errs = append(errs, &InstrumentError{Instrument: sec.ID, Err: err})
			continue
		}
		log.Debug().Str("instrument", sec.ID).Int("opened", len(o)).Int("closed", len(c)).Msg("instrument done")
		opened = append(opened, o...)
		closed = append(closed, c...)
	}
	report.Rows = append(opened, closed...)
	return report, errors.Join(errs...)
}

// instrumentRows runs the whole pipeline for one security.
func instrumentRows(calc *Calculator, portfolio string, sec Security, src Sources, currency string) (opened, closed []Row, err error) {
	txs, err := src.Transactions.Transactions(portfolio, sec.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read transactions: %w", err)
	}
	if len(txs) == 0 {
		return nil, nil, nil
	}
	if currency != "" {
		priced, err := calc.pricingCurrency(&OpenedPosition{open: txs[0]})
		if err != nil {
			return nil, nil, err
		}
		if !SameCurrency(priced, currency) {
			return nil, nil, nil
		}
	}
	redemptions, err := src.Events.Events(portfolio, sec.ID, Redemption)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read redemptions: %w", err)
	}
	positions, err := Match(txs, redemptions)
	if err != nil {
		return nil, nil, err
	}
	events, err := src.Events.Events(portfolio, sec.ID, InterestTypes...)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read security events: %w", err)
	}
	paid := Allocate(events, positions.All())

	for _, p := range positions.Opened {
		row, err := calc.OpenedRow(sec, p, paid)
		if err != nil {
			return nil, nil, err
		}
		opened = append(opened, row)
	}
	for _, p := range positions.Closed {
		row, err := calc.ClosedRow(sec, p, paid, redemptions)
		if err != nil {
			return nil, nil, err
		}
		closed = append(closed, row)
	}
	for _, p := range positions.Fictitious {
		row, err := calc.OpenedRow(sec, p, paid)
		if err != nil {
			return nil, nil, err
		}
		opened = append(opened, row)
	}
	return opened, closed, nil
}
