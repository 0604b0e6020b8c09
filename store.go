package profit

import (
	"cmp"
	"fmt"
	"slices"
)

type instrumentKey struct{ portfolio, instrument string }

type cashFlowKey struct {
	portfolio string
	id        int64
	kind      CashFlowType
}

// Store is an in-memory source of transactions, cash flows and security
// events. It implements TransactionSource, EventSource and CashFlowLookup.
type Store struct {
	securities   map[string]Security
	transactions map[instrumentKey][]Transaction
	cashFlows    map[cashFlowKey]TransactionCashFlow
	events       map[instrumentKey][]SecurityEventCashFlow
	rates        *RateTable
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		securities:   make(map[string]Security),
		transactions: make(map[instrumentKey][]Transaction),
		cashFlows:    make(map[cashFlowKey]TransactionCashFlow),
		events:       make(map[instrumentKey][]SecurityEventCashFlow),
		rates:        NewRateTable(),
	}
}

// AddSecurity declares the name of a security.
func (s *Store) AddSecurity(sec Security) {
	s.securities[sec.ID] = sec
}

// AddTransaction records a transaction and its cash flows. Cash flows below
// the materiality threshold are not recorded.
func (s *Store) AddTransaction(tx Transaction, flows ...TransactionCashFlow) error {
	k := instrumentKey{tx.Portfolio, tx.Instrument}
	for _, t := range s.transactions[k] {
		if t.ID == tx.ID {
			return fmt.Errorf("duplicate transaction %d in portfolio %s", tx.ID, tx.Portfolio)
		}
	}
	s.transactions[k] = append(s.transactions[k], tx)
	for _, f := range flows {
		if err := s.AddCashFlow(f); err != nil {
			return err
		}
	}
	return nil
}

// AddCashFlow records a transaction cash flow. There can be only one per
// transaction and kind.
func (s *Store) AddCashFlow(f TransactionCashFlow) error {
	if !IsMaterial(f.Value) {
		return nil
	}
	k := cashFlowKey{f.Portfolio, f.TransactionID, f.Kind}
	if _, ok := s.cashFlows[k]; ok {
		return fmt.Errorf("duplicate %v cash flow for transaction %d in portfolio %s", f.Kind, f.TransactionID, f.Portfolio)
	}
	s.cashFlows[k] = f
	return nil
}

// AddTrade records a broker trade as a transaction and its cash flows.
func (s *Store) AddTrade(t Trade) error {
	return s.AddTransaction(t.Transaction(), t.CashFlows()...)
}

// AddEvent records a security event.
func (s *Store) AddEvent(e SecurityEventCashFlow) {
	k := instrumentKey{e.Portfolio, e.Instrument}
	s.events[k] = append(s.events[k], e)
}

// Rates returns the exchange rates known to the store.
func (s *Store) Rates() *RateTable { return s.rates }

// Transactions implements TransactionSource.
func (s *Store) Transactions(portfolio, instrument string) ([]Transaction, error) {
	txs := slices.Clone(s.transactions[instrumentKey{portfolio, instrument}])
	SortTransactions(txs)
	return txs, nil
}

// Events implements EventSource.
func (s *Store) Events(portfolio, instrument string, kinds ...CashFlowType) ([]SecurityEventCashFlow, error) {
	var events []SecurityEventCashFlow
	for _, e := range s.events[instrumentKey{portfolio, instrument}] {
		if len(kinds) == 0 || slices.Contains(kinds, e.Kind) {
			events = append(events, e)
		}
	}
	slices.SortStableFunc(events, func(a, b SecurityEventCashFlow) int { return a.Timestamp.Compare(b.Timestamp) })
	return events, nil
}

// Find implements CashFlowLookup.
func (s *Store) Find(portfolio string, transactionID int64, kind CashFlowType) (TransactionCashFlow, bool) {
	f, ok := s.cashFlows[cashFlowKey{portfolio, transactionID, kind}]
	return f, ok
}

// Portfolios returns the portfolios that have transactions, sorted.
func (s *Store) Portfolios() []string {
	var list []string
	for k := range s.transactions {
		if !slices.Contains(list, k.portfolio) {
			list = append(list, k.portfolio)
		}
	}
	slices.Sort(list)
	return list
}

// Securities returns the securities traded in the portfolio, most recently
// traded first.
func (s *Store) Securities(portfolio string) []Security {
	type traded struct {
		sec  Security
		last Transaction
	}
	var list []traded
	for k, txs := range s.transactions {
		if k.portfolio != portfolio || len(txs) == 0 {
			continue
		}
		sec, ok := s.securities[k.instrument]
		if !ok {
			sec = Security{ID: k.instrument}
		}
		last := slices.MaxFunc(txs, compareTransactions)
		list = append(list, traded{sec, last})
	}
	slices.SortFunc(list, func(a, b traded) int {
		if c := compareTransactions(b.last, a.last); c != 0 {
			return c
		}
		return cmp.Compare(a.sec.ID, b.sec.ID)
	})
	securities := make([]Security, len(list))
	for i, t := range list {
		securities[i] = t.sec
	}
	return securities
}

// Sources returns the store as report sources, converting currencies with
// the store rates.
func (s *Store) Sources() Sources {
	return Sources{Transactions: s, Events: s, CashFlows: s, Converter: s.rates}
}
