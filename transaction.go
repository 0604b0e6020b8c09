package profit

import (
	"cmp"
	"slices"
	"time"
)

// Transaction is a trade of an instrument in a portfolio. A positive Count
// buys (or covers a short), a negative one sells (or opens a short).
//
// Transactions built by the engine to stand for an event rather than a trade
// carry no ID, see Synthetic.
type Transaction struct {
	ID         int64     `json:"id"`
	Portfolio  string    `json:"portfolio"`
	Instrument string    `json:"instrument"`
	Timestamp  time.Time `json:"timestamp"`
	Count      int       `json:"count"`

	synthetic bool
}

// Synthetic reports whether t has no ID because it was not read from the
// broker ledger.
func (t Transaction) Synthetic() bool { return t.synthetic }

// withoutID returns a copy of t without identity.
func (t Transaction) withoutID() Transaction {
	t.ID = 0
	t.synthetic = true
	return t
}

// compareTransactions orders by timestamp then by id.
func compareTransactions(a, b Transaction) int {
	if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortTransactions sorts transactions in matching order: timestamp ascending, then id ascending.
func SortTransactions(txs []Transaction) {
	slices.SortStableFunc(txs, compareTransactions)
}

// Security identifies an instrument in reports.
type Security struct {
	ID   string `json:"id"` // ISIN for shares and bonds, contract name otherwise
	Name string `json:"name,omitempty"`
}

// Label returns the name of the security, or its id when the name is unknown.
func (s Security) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
