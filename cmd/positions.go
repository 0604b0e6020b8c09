package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/profit"
	"github.com/etnz/profit/renderer"
	"github.com/google/subcommands"
)

// positionsCmd holds the flags for the 'positions' subcommand.
type positionsCmd struct {
	portfolio string
	security  string
	raw       bool
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "FIFO matching of the trades of each security" }
func (*positionsCmd) Usage() string {
	return `pnl positions [-p <portfolio>] [-s <security>] [-raw]

  Shows how the trades of each security were matched into opened, closed and
  redeemed positions.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio to match. Defaults to the configured one, or all of them.")
	f.StringVar(&c.security, "s", "", "Only match this security (ISIN or name).")
	f.BoolVar(&c.raw, "raw", false, "Print plain markdown.")
}

func (c *positionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	style := a.cfg.Output.Style
	if c.raw {
		style = "raw"
	}

	status := subcommands.ExitSuccess
	var b strings.Builder
	for _, portfolio := range a.portfolios(c.portfolio) {
		fmt.Fprintf(&b, "# Positions of %s\n\n", portfolio)
		for _, sec := range a.store.Securities(portfolio) {
			if c.security != "" && c.security != sec.ID && c.security != sec.Name {
				continue
			}
			positions, err := matchSecurity(a.store, portfolio, sec)
			if err != nil {
				fmt.Fprintf(stderr, "Error matching %s: %v\n", sec.Label(), err)
				status = subcommands.ExitFailure
				continue
			}
			b.WriteString(renderer.PositionsMarkdown(sec, positions))
			b.WriteString("\n")
		}
	}
	printMarkdown(b.String(), style)
	return status
}

func matchSecurity(s *profit.Store, portfolio string, sec profit.Security) (*profit.Positions, error) {
	txs, err := s.Transactions(portfolio, sec.ID)
	if err != nil {
		return nil, err
	}
	redemptions, err := s.Events(portfolio, sec.ID, profit.Redemption)
	if err != nil {
		return nil, err
	}
	return profit.Match(txs, redemptions)
}
