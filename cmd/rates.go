package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/profit"
	"github.com/google/subcommands"
)

// ratesCmd holds the flags for the 'rates' subcommand.
type ratesCmd struct{}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "exchange rates used to convert cash flows" }
func (*ratesCmd) Usage() string {
	return `pnl rates <from> <to> [<from> <to>...]

  Prints the rate converting one unit of <from> into <to>, as used by the
  report: from the records file, or from eodhd when it is the configured
  converter.
`
}

func (c *ratesCmd) SetFlags(f *flag.FlagSet) {}

func (c *ratesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 || f.NArg()%2 != 0 {
		fmt.Fprintln(stderr, "rates expects pairs of currencies")
		return subcommands.ExitUsageError
	}
	var pairs [][2]string
	for i := 0; i < f.NArg(); i += 2 {
		from, to := strings.ToUpper(f.Arg(i)), strings.ToUpper(f.Arg(i+1))
		for _, cur := range []string{from, to} {
			if err := profit.ValidateCurrency(cur); err != nil {
				fmt.Fprintf(stderr, "Error parsing currency: %v\n", err)
				return subcommands.ExitUsageError
			}
		}
		pairs = append(pairs, [2]string{from, to})
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	conv := a.converter()
	status := subcommands.ExitSuccess
	for _, p := range pairs {
		rate, err := conv.Rate(p[0], p[1])
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Fprintf(stdout, "%s%s %s\n", p[0], p[1], rate)
	}
	return status
}
