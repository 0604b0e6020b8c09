package profit

import (
	"fmt"
	"time"
)

// ClosingEvent is what closed a position: a trade (Price) or a Redemption.
type ClosingEvent = CashFlowType

// Position is a quantity of an instrument opened by a single transaction.
//
// Count is always a strictly positive magnitude, the direction of the
// position is the sign of the opening transaction's count.
type Position interface {
	OpenTransaction() Transaction
	Count() int
	// holds reports whether the position was held at t.
	holds(t time.Time) bool
}

// OpenedPosition is the part of an opening transaction still held.
type OpenedPosition struct {
	open  Transaction
	count int
}

func (p *OpenedPosition) OpenTransaction() Transaction { return p.open }
func (p *OpenedPosition) Count() int                   { return p.count }

// Long reports whether the position was opened by a buy.
func (p *OpenedPosition) Long() bool { return p.open.Count > 0 }

func (p *OpenedPosition) holds(t time.Time) bool { return !t.Before(p.open.Timestamp) }

func (p *OpenedPosition) String() string {
	return fmt.Sprintf("opened %s %d@%s", p.open.Instrument, p.count*sign(p.open.Count), p.open.Timestamp.Format(time.DateOnly))
}

// ClosedPosition is a quantity matched between an opening and a closing transaction.
type ClosedPosition struct {
	OpenedPosition
	close   Transaction
	closing ClosingEvent
}

func (p *ClosedPosition) CloseTransaction() Transaction { return p.close }

// ClosingEvent returns Price when a trade closed the position and Redemption
// when the instrument was redeemed.
func (p *ClosedPosition) ClosingEvent() ClosingEvent { return p.closing }

func (p *ClosedPosition) holds(t time.Time) bool {
	return !t.Before(p.open.Timestamp) && t.Before(p.close.Timestamp)
}

func (p *ClosedPosition) String() string {
	return fmt.Sprintf("closed %s %d@%s..%s by %s", p.open.Instrument, p.count*sign(p.open.Count),
		p.open.Timestamp.Format(time.DateOnly), p.close.Timestamp.Format(time.DateOnly), p.closing)
}

// FictitiousPosition stands for the quantity still held when the instrument
// was redeemed without any closing trade in the ledger. Its opening
// transaction has no ID.
type FictitiousPosition struct {
	OpenedPosition
	lot Transaction // the ledger transaction that opened the redeemed lot
}

func (p *FictitiousPosition) String() string {
	return "fictitious " + p.OpenedPosition.String()
}

// Positions is the result of matching the transactions of one instrument.
type Positions struct {
	Opened     []*OpenedPosition
	Closed     []*ClosedPosition
	Fictitious []*FictitiousPosition
}

// All returns every position, opened first, then closed, then fictitious.
func (p *Positions) All() []Position {
	all := make([]Position, 0, len(p.Opened)+len(p.Closed)+len(p.Fictitious))
	for _, o := range p.Opened {
		all = append(all, o)
	}
	for _, c := range p.Closed {
		all = append(all, c)
	}
	for _, f := range p.Fictitious {
		all = append(all, f)
	}
	return all
}

// Net returns the signed quantity still held according to the opened positions.
func (p *Positions) Net() int {
	var net int
	for _, o := range p.Opened {
		net += o.count * sign(o.open.Count)
	}
	return net
}
