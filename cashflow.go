package profit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CashFlowType identifies the nature of a cash flow, either attached to a
// transaction (price, accrued interest, commission) or to a security event
// (coupon, amortization, dividend, tax, redemption).
type CashFlowType int

const (
	Price CashFlowType = iota + 1
	AccruedInterest
	Commission
	Coupon
	Amortization
	Dividend
	Tax
	Redemption
)

var cashFlowTypeNames = map[CashFlowType]string{
	Price:           "PRICE",
	AccruedInterest: "ACCRUED_INTEREST",
	Commission:      "COMMISSION",
	Coupon:          "COUPON",
	Amortization:    "AMORTIZATION",
	Dividend:        "DIVIDEND",
	Tax:             "TAX",
	Redemption:      "REDEMPTION",
}

// InterestTypes lists the event kinds attributed to positions as interim payments.
var InterestTypes = []CashFlowType{Coupon, Amortization, Dividend, Tax}

func (t CashFlowType) String() string {
	if s, ok := cashFlowTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("CashFlowType(%d)", int(t))
}

// IsInterest reports whether t is a coupon, amortization, dividend or tax.
func (t CashFlowType) IsInterest() bool {
	switch t {
	case Coupon, Amortization, Dividend, Tax:
		return true
	}
	return false
}

// ParseCashFlowType parses the upper snake case name of a cash flow type.
func ParseCashFlowType(s string) (CashFlowType, error) {
	for t, name := range cashFlowTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown cash flow type: %q", s)
}

func (t CashFlowType) MarshalJSON() ([]byte, error) {
	if _, ok := cashFlowTypeNames[t]; !ok {
		return nil, fmt.Errorf("cannot marshal %v", t)
	}
	return json.Marshal(t.String())
}

func (t *CashFlowType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseCashFlowType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// minValue is the materiality threshold: cash flows whose magnitude is below it
// are rounding noise from broker reports and are not recorded.
var minValue = decimal.New(1, -2)

// IsMaterial reports whether |v| >= 0.01.
func IsMaterial(v decimal.Decimal) bool {
	return v.Abs().GreaterThanOrEqual(minValue)
}

// TransactionCashFlow is one monetary component of a transaction.
// There is at most one per transaction and kind.
type TransactionCashFlow struct {
	TransactionID int64           `json:"transaction"`
	Portfolio     string          `json:"portfolio"`
	Kind          CashFlowType    `json:"kind"`
	Value         decimal.Decimal `json:"value"`
	Currency      string          `json:"currency"`
}

// SecurityEventCashFlow is a payment related to a security but not to a trade.
type SecurityEventCashFlow struct {
	Instrument string          `json:"instrument"`
	Portfolio  string          `json:"portfolio"`
	Timestamp  time.Time       `json:"timestamp"`
	Kind       CashFlowType    `json:"kind"`
	Value      decimal.Decimal `json:"value"`
	Currency   string          `json:"currency"`
	Count      *int            `json:"count,omitempty"` // affected quantity, when the broker reports it
}

// Trade is a single trade line as parsed from a broker report: the trade
// itself plus the amounts the broker attached to it.
type Trade struct {
	ID                 int64
	Portfolio          string
	Instrument         string
	Timestamp          time.Time
	Count              int
	Value              decimal.Decimal // estimated value in the price currency
	AccruedInterest    decimal.Decimal // bonds only, in the price currency
	Commission         decimal.Decimal
	ValueCurrency      string
	CommissionCurrency string
}

// Transaction returns the trade as a Transaction.
func (t Trade) Transaction() Transaction {
	return Transaction{
		ID:         t.ID,
		Portfolio:  t.Portfolio,
		Instrument: t.Instrument,
		Timestamp:  t.Timestamp,
		Count:      t.Count,
	}
}

// CashFlows returns the trade amounts. The price is always present, accrued
// interest and commission only when material.
func (t Trade) CashFlows() []TransactionCashFlow {
	flows := make([]TransactionCashFlow, 0, 3)
	flows = append(flows, TransactionCashFlow{
		TransactionID: t.ID,
		Portfolio:     t.Portfolio,
		Kind:          Price,
		Value:         t.Value,
		Currency:      t.ValueCurrency,
	})
	if IsMaterial(t.AccruedInterest) { // shares have no accrued interest
		flows = append(flows, TransactionCashFlow{
			TransactionID: t.ID,
			Portfolio:     t.Portfolio,
			Kind:          AccruedInterest,
			Value:         t.AccruedInterest,
			Currency:      t.ValueCurrency,
		})
	}
	if IsMaterial(t.Commission) {
		flows = append(flows, TransactionCashFlow{
			TransactionID: t.ID,
			Portfolio:     t.Portfolio,
			Kind:          Commission,
			Value:         t.Commission,
			Currency:      t.CommissionCurrency,
		})
	}
	return flows
}
