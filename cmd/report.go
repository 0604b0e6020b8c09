package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/etnz/profit"
	"github.com/etnz/profit/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	portfolio string
	currency  string
	taxRate   string
	json      bool
	raw       bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "profit of opened and closed positions" }
func (*reportCmd) Usage() string {
	return `pnl report [-p <portfolio>] [-c <currency>] [-tax <rate>] [-json] [-raw]

  Matches the trades of each security in FIFO order and reports, for every
  position, the amounts paid and received, the interest collected, the
  forecast tax, the profit and the annualized yield.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio to report on. Defaults to the configured one, or all of them.")
	f.StringVar(&c.currency, "c", "", "Only report securities priced in this currency.")
	f.StringVar(&c.taxRate, "tax", "", "Tax rate on price appreciation, overrides the configuration.")
	f.BoolVar(&c.json, "json", false, "Print rows as JSON lines instead of markdown.")
	f.BoolVar(&c.raw, "raw", false, "Print plain markdown.")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.taxRate != "" {
		a.cfg.TaxRate = c.taxRate
	}
	rate, err := a.cfg.Rate()
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing tax rate: %v\n", err)
		return subcommands.ExitUsageError
	}
	currency := a.cfg.Currency
	if c.currency != "" {
		if err := profit.ValidateCurrency(c.currency); err != nil {
			fmt.Fprintf(stderr, "Error parsing currency: %v\n", err)
			return subcommands.ExitUsageError
		}
		currency = c.currency
	}
	style := a.cfg.Output.Style
	if c.raw {
		style = "raw"
	}

	status := subcommands.ExitSuccess
	src := a.sources()
	for _, portfolio := range a.portfolios(c.portfolio) {
		opts := profit.Options{Currency: currency, TaxRate: decimal.NewNullDecimal(rate), Log: a.log}
		report, err := profit.Report(portfolio, a.store.Securities(portfolio), src, opts)
		if err != nil {
			// the report still holds the securities that could be computed
			status = subcommands.ExitFailure
			var ierr *profit.InstrumentError
			if errors.As(err, &ierr) {
				fmt.Fprintf(stderr, "Some securities of %s were skipped:\n%v\n", portfolio, err)
			} else {
				fmt.Fprintf(stderr, "Error reporting %s: %v\n", portfolio, err)
				continue
			}
		}
		if c.json {
			if err := profit.EncodeRows(stdout, report.Rows); err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return subcommands.ExitFailure
			}
			continue
		}
		printMarkdown(renderer.ProfitMarkdown(report), style)
	}
	return status
}
