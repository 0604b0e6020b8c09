package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/profit"
	"github.com/etnz/profit/date"
)

// PositionsMarkdown renders the result of matching the transactions of a
// security: one line per position with the transactions it was matched from.
func PositionsMarkdown(sec profit.Security, p *profit.Positions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", sec.Label())
	fmt.Fprintln(&b, "| Position | Count | Opened | Open Transaction | Closed | Close Transaction |")
	fmt.Fprintln(&b, "|:---|---:|:---|---:|:---|---:|")

	for _, o := range p.Opened {
		tx := o.OpenTransaction()
		fmt.Fprintf(&b, "| opened | %d | %s | %s | | |\n", o.Count()*direction(tx), date.Of(tx.Timestamp), txID(tx))
	}
	for _, c := range p.Closed {
		open, closing := c.OpenTransaction(), c.CloseTransaction()
		label := "closed"
		if c.ClosingEvent() == profit.Redemption {
			label = "redeemed"
		}
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s |\n", label, c.Count()*direction(open),
			date.Of(open.Timestamp), txID(open), date.Of(closing.Timestamp), txID(closing))
	}
	for _, f := range p.Fictitious {
		tx := f.OpenTransaction()
		fmt.Fprintf(&b, "| fictitious | %d | %s | %s | | |\n", f.Count()*direction(tx), date.Of(tx.Timestamp), txID(tx))
	}
	fmt.Fprintf(&b, "\nNet: %d\n", p.Net())
	return b.String()
}

func direction(tx profit.Transaction) int {
	if tx.Count < 0 {
		return -1
	}
	return 1
}

func txID(tx profit.Transaction) string {
	if tx.Synthetic() {
		return "-"
	}
	return fmt.Sprint(tx.ID)
}
