package profit

import (
	"fmt"
)

// Match builds the positions of a single instrument by FIFO matching its
// transactions.
//
// Transactions must be sorted with SortTransactions and belong to the same
// portfolio and instrument. Trades in the same direction accumulate as
// distinct lots, an opposite trade closes the oldest lots first. When a trade
// closes more than what is held, the excess opens a new lot in the trade's own
// direction.
//
// redemptions holds the REDEMPTION events of the instrument, at most one. If
// present, the quantity still held after the last transaction is closed by
// the redemption, and a FictitiousPosition records that it was held up to
// that event.
func Match(transactions []Transaction, redemptions []SecurityEventCashFlow) (*Positions, error) {
	if len(redemptions) > 1 {
		return nil, fmt.Errorf("%w: at most one redemption per security, %s has %d", ErrInputIntegrity, redemptions[0].Instrument, len(redemptions))
	}
	if err := checkTransactions(transactions); err != nil {
		return nil, err
	}

	positions := new(Positions)
	var queue lots
	for _, tx := range transactions {
		if tx.Count == 0 {
			continue
		}
		dir := sign(tx.Count)
		if d := queue.direction(); d == 0 || d == dir {
			queue = queue.push(tx, abs(tx.Count))
			continue
		}
		var rest int
		queue, rest = queue.close(abs(tx.Count), func(open Transaction, count int) {
			positions.Closed = append(positions.Closed, &ClosedPosition{
				OpenedPosition: OpenedPosition{open: open, count: count},
				close:          tx,
				closing:        Price,
			})
		})
		if rest > 0 {
			// Closing more than what is held: either the trade flips the
			// position or the ledger starts after the position was opened.
			queue = queue.push(tx, rest)
		}
	}

	if len(redemptions) == 0 || len(queue) == 0 {
		for _, l := range queue {
			positions.Opened = append(positions.Opened, &OpenedPosition{open: l.open, count: l.remaining})
		}
		return positions, nil
	}

	redemption := redemptions[0]
	total := queue.total()
	closing := Transaction{
		Portfolio:  redemption.Portfolio,
		Instrument: redemption.Instrument,
		Timestamp:  redemption.Timestamp,
		Count:      -queue.direction() * total,
	}.withoutID()
	for _, l := range queue {
		positions.Fictitious = append(positions.Fictitious, &FictitiousPosition{
			OpenedPosition: OpenedPosition{open: l.open.withoutID(), count: l.remaining},
			lot:            l.open,
		})
		positions.Closed = append(positions.Closed, &ClosedPosition{
			OpenedPosition: OpenedPosition{open: l.open, count: l.remaining},
			close:          closing,
			closing:        Redemption,
		})
	}
	return positions, nil
}

func checkTransactions(transactions []Transaction) error {
	for i := 1; i < len(transactions); i++ {
		prev, tx := transactions[i-1], transactions[i]
		if tx.Portfolio != prev.Portfolio || tx.Instrument != prev.Instrument {
			return fmt.Errorf("%w: transaction %d belongs to %s/%s, expected %s/%s", ErrInputIntegrity,
				tx.ID, tx.Portfolio, tx.Instrument, prev.Portfolio, prev.Instrument)
		}
		if compareTransactions(prev, tx) > 0 {
			return fmt.Errorf("%w: transaction %d is not in (timestamp, id) order after %d", ErrInputIntegrity, tx.ID, prev.ID)
		}
	}
	return nil
}
