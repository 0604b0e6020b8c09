package renderer

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/profit"
	"github.com/shopspring/decimal"
)

// ProfitMarkdown renders a profit report as markdown: a table of the positions
// still held, a table of the closed positions and the total profit per
// currency.
func ProfitMarkdown(r *profit.ProfitReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Profit of %s\n\n", r.Portfolio)
	if len(r.Rows) == 0 {
		fmt.Fprint(&b, "No positions.\n")
		return b.String()
	}

	ConditionalBlock(&b, func(w io.Writer) bool {
		rows := r.Opened()
		fmt.Fprint(w, "## Opened Positions\n\n")
		fmt.Fprintln(w, "| Security | Count | Opened | Price | Amount | Accrued Interest | Commission | Coupons | Amortization | Dividends | Taxes |")
		fmt.Fprintln(w, "|:---|---:|:---|---:|---:|---:|---:|---:|---:|---:|---:|")
		for _, row := range rows {
			security := row.Security
			if row.Kind == profit.KindFictitious {
				security += " (redeemed)"
			}
			fmt.Fprintf(w, "| %s | %d | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				security, row.Count, row.OpenDate,
				Amount(row.OpenPrice, row.Currency),
				Amount(row.OpenAmount, row.Currency),
				Amount(row.OpenAccruedInterest, row.Currency),
				Amount(row.OpenCommission, row.Currency),
				Amount(row.Coupon, row.Currency),
				Amount(row.Amortization, row.Currency),
				Amount(row.Dividend, row.Currency),
				Amount(row.Tax, row.Currency),
			)
		}
		fmt.Fprintln(w)
		return len(rows) > 0
	})

	ConditionalBlock(&b, func(w io.Writer) bool {
		rows := r.Closed()
		fmt.Fprint(w, "## Closed Positions\n\n")
		fmt.Fprintln(w, "| Security | Count | Opened | Closed | Open Amount | Close Amount | Commission | Interest | Taxes | Forecast Tax | Profit | Yield |")
		fmt.Fprintln(w, "|:---|---:|:---|:---|---:|---:|---:|---:|---:|---:|---:|---:|")
		totals := make(map[string]decimal.Decimal)
		for _, row := range rows {
			open := sum(row.OpenAmount, row.OpenAccruedInterest)
			closing := sum(row.CloseAmount, row.CloseAccruedInterest)
			commission := sum(row.OpenCommission, row.CloseCommission)
			interest := sum(row.Coupon, row.Amortization, row.Dividend)
			fmt.Fprintf(w, "| %s | %d | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				row.Security, row.Count, row.OpenDate, row.CloseDate,
				Amount(open, row.Currency),
				Amount(closing, row.Currency),
				Amount(commission, row.Currency),
				Amount(interest, row.Currency),
				Amount(row.Tax, row.Currency),
				Amount(row.ForecastTax, row.Currency),
				Amount(row.Profit, row.Currency),
				Percent(row.Yield),
			)
			if row.Profit.Valid {
				totals[row.Currency] = totals[row.Currency].Add(row.Profit.Decimal)
			}
		}
		currencies := make([]string, 0, len(totals))
		for cur := range totals {
			currencies = append(currencies, cur)
		}
		slices.Sort(currencies)
		for _, cur := range currencies {
			fmt.Fprintf(w, "| **Total %s** | | | | | | | | | | **%s** | |\n", cur, Amount(decimal.NewNullDecimal(totals[cur]), cur))
		}
		fmt.Fprintln(w)
		return len(rows) > 0
	})

	return b.String()
}

// sum adds the valid values, it is absent when none is.
func sum(values ...decimal.NullDecimal) decimal.NullDecimal {
	var total decimal.NullDecimal
	for _, v := range values {
		if v.Valid {
			total = decimal.NewNullDecimal(total.Decimal.Add(v.Decimal))
		}
	}
	return total
}
