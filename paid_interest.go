package profit

import "slices"

type interestKey struct {
	kind     CashFlowType
	position Position
}

// PaidInterest maps each position to the coupons, amortizations, dividends and
// taxes paid while it was held. It is read-only once built by Allocate.
type PaidInterest struct {
	payments map[interestKey][]SecurityEventCashFlow
}

// Allocate attributes interest events to the positions held when they were
// paid. A position opened at o and closed at c holds on [o, c); opened and
// fictitious positions hold from o onward.
//
// An event covered by several positions is recorded in full against each of
// them, it is not split by quantity. Events no position covers are dropped.
// Redemptions and transaction cash flows are ignored.
func Allocate(events []SecurityEventCashFlow, positions []Position) PaidInterest {
	paid := PaidInterest{payments: make(map[interestKey][]SecurityEventCashFlow)}
	for _, e := range events {
		if !e.Kind.IsInterest() {
			continue
		}
		for _, p := range positions {
			if p.holds(e.Timestamp) {
				k := interestKey{e.Kind, p}
				paid.payments[k] = append(paid.payments[k], e)
			}
		}
	}
	for _, list := range paid.payments {
		slices.SortStableFunc(list, func(a, b SecurityEventCashFlow) int { return a.Timestamp.Compare(b.Timestamp) })
	}
	return paid
}

// Get returns the events of the given kind paid to the position, by date.
func (p PaidInterest) Get(kind CashFlowType, position Position) []SecurityEventCashFlow {
	return p.payments[interestKey{kind, position}]
}
