package profit

import (
	"errors"
	"testing"

	"github.com/etnz/profit/date"
	"github.com/shopspring/decimal"
)

// trade is a helper for test to create a ruble trade of the test bond.
func trade(id int64, on string, count int, value, commission string) Trade {
	return Trade{
		ID:                 id,
		Portfolio:          testPortfolio,
		Instrument:         testBond,
		Timestamp:          day(on),
		Count:              count,
		Value:              dec(value),
		Commission:         dec(commission),
		ValueCurrency:      "RUB",
		CommissionCurrency: "RUB",
	}
}

// newTestStore is a helper for test to create a store of trades.
func newTestStore(t *testing.T, trades ...Trade) *Store {
	t.Helper()
	s := NewStore()
	for _, tr := range trades {
		if err := s.AddTrade(tr); err != nil {
			t.Fatalf("AddTrade(%d) error = %v", tr.ID, err)
		}
	}
	return s
}

// mapLookup is a CashFlowLookup that does not filter immaterial values.
type mapLookup []TransactionCashFlow

func (m mapLookup) Find(portfolio string, id int64, kind CashFlowType) (TransactionCashFlow, bool) {
	for _, f := range m {
		if f.Portfolio == portfolio && f.TransactionID == id && f.Kind == kind {
			return f, true
		}
	}
	return TransactionCashFlow{}, false
}

// assertAmount checks a monetary field. An empty want means the value must be absent.
func assertAmount(t *testing.T, name string, got decimal.NullDecimal, want string) {
	t.Helper()
	if want == "" {
		if got.Valid {
			t.Errorf("%s = %s, want absent", name, got.Decimal)
		}
		return
	}
	if !got.Valid {
		t.Errorf("%s is absent, want %s", name, want)
		return
	}
	if !got.Decimal.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", name, got.Decimal, want)
	}
}

// match is a helper for test to match the transactions of a store.
func match(t *testing.T, s *Store, redemptions ...SecurityEventCashFlow) *Positions {
	t.Helper()
	txs, err := s.Transactions(testPortfolio, testBond)
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	positions, err := Match(txs, redemptions)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	return positions
}

func TestCalculator_ClosedRow(t *testing.T) {
	s := newTestStore(t,
		trade(1, "2021-01-01", 10, "1000", "1"),
		trade(2, "2021-06-01", -10, "1100", "1"),
	)
	conv := &countingConverter{}
	calc := NewCalculator(s, conv, nil)
	positions := match(t, s)

	row, err := calc.ClosedRow(Security{ID: testBond, Name: "OFZ 26207"}, positions.Closed[0], PaidInterest{}, nil)
	if err != nil {
		t.Fatalf("ClosedRow() error = %v", err)
	}

	if row.Security != "OFZ 26207" || row.Currency != "RUB" || row.Kind != KindClosed || row.Count != 10 {
		t.Errorf("ClosedRow() = %v %s %s %d", row.Security, row.Currency, row.Kind, row.Count)
	}
	if row.OpenDate != date.New(2021, 1, 1) || row.CloseDate != date.New(2021, 6, 1) {
		t.Errorf("ClosedRow() dates = %s..%s, want 2021-01-01..2021-06-01", row.OpenDate, row.CloseDate)
	}
	assertAmount(t, "OpenPrice", row.OpenPrice, "100")
	assertAmount(t, "OpenAmount", row.OpenAmount, "1000")
	assertAmount(t, "OpenAccruedInterest", row.OpenAccruedInterest, "")
	assertAmount(t, "OpenCommission", row.OpenCommission, "1")
	assertAmount(t, "CloseAmount", row.CloseAmount, "1100")
	assertAmount(t, "CloseCommission", row.CloseCommission, "1")
	assertAmount(t, "Coupon", row.Coupon, "")
	assertAmount(t, "ForecastTax", row.ForecastTax, "12.74")
	assertAmount(t, "Profit", row.Profit, "85.26")
	assertAmount(t, "Yield", row.Yield, "20.453165")

	if conv.calls != 0 {
		t.Errorf("converter called %d times for a single currency instrument", conv.calls)
	}
}

func TestCalculator_PartialClose(t *testing.T) {
	s := newTestStore(t,
		trade(1, "2021-01-01", 10, "1000", "3"),
		trade(2, "2021-02-01", -4, "480", "0"),
	)
	calc := NewCalculator(s, nil, nil)
	positions := match(t, s)

	closed, err := calc.ClosedRow(Security{ID: testBond}, positions.Closed[0], PaidInterest{}, nil)
	if err != nil {
		t.Fatalf("ClosedRow() error = %v", err)
	}
	assertAmount(t, "OpenAmount", closed.OpenAmount, "400")
	assertAmount(t, "OpenCommission", closed.OpenCommission, "1.2")
	assertAmount(t, "CloseAmount", closed.CloseAmount, "480")
	assertAmount(t, "CloseCommission", closed.CloseCommission, "")

	opened, err := calc.OpenedRow(Security{ID: testBond}, positions.Opened[0], PaidInterest{})
	if err != nil {
		t.Fatalf("OpenedRow() error = %v", err)
	}
	if opened.Kind != KindOpened || opened.Count != 6 {
		t.Errorf("OpenedRow() = %s %d, want opened 6", opened.Kind, opened.Count)
	}
	assertAmount(t, "OpenPrice", opened.OpenPrice, "100")
	assertAmount(t, "OpenAmount", opened.OpenAmount, "600")
	assertAmount(t, "OpenCommission", opened.OpenCommission, "1.8")
	assertAmount(t, "Profit", opened.Profit, "")
	assertAmount(t, "Yield", opened.Yield, "")
}

func TestCalculator_Short(t *testing.T) {
	s := newTestStore(t,
		trade(1, "2021-01-01", -10, "1100", "0"),
		trade(2, "2021-01-11", 10, "1000", "0"),
	)
	calc := NewCalculator(s, nil, nil)
	row, err := calc.ClosedRow(Security{ID: testBond}, match(t, s).Closed[0], PaidInterest{}, nil)
	if err != nil {
		t.Fatalf("ClosedRow() error = %v", err)
	}
	if row.Count != -10 {
		t.Errorf("Count = %d, want -10", row.Count)
	}
	// sold 1100, bought back 1000: 100 gain taxed at 13%
	assertAmount(t, "ForecastTax", row.ForecastTax, "13")
	assertAmount(t, "Profit", row.Profit, "87")
	// 87 * 100 * 365 / (1100 * 11 days): a profitable short has a positive yield
	assertAmount(t, "Yield", row.Yield, "262.438017")
}

func TestCalculator_LossHasNoForecastTax(t *testing.T) {
	s := newTestStore(t,
		trade(1, "2021-01-01", 10, "1000", "0"),
		trade(2, "2021-01-01", -10, "900", "0"),
	)
	calc := NewCalculator(s, nil, nil)
	row, err := calc.ClosedRow(Security{ID: testBond}, match(t, s).Closed[0], PaidInterest{}, nil)
	if err != nil {
		t.Fatalf("ClosedRow() error = %v", err)
	}
	assertAmount(t, "ForecastTax", row.ForecastTax, "0")
	assertAmount(t, "Profit", row.Profit, "-100")
	// held a single day
	assertAmount(t, "Yield", row.Yield, "-3650")
}

func TestCalculator_Interest(t *testing.T) {
	s := newTestStore(t,
		trade(1, "2021-01-01", 10, "1000", "0"),
		trade(2, "2021-12-31", -10, "900", "0"),
	)
	positions := match(t, s)
	paid := Allocate([]SecurityEventCashFlow{
		event(Coupon, "2021-03-01", 40.5),
		event(Coupon, "2021-09-01", 40.5),
		event(Amortization, "2021-09-01", 100),
		event(Tax, "2021-09-01", -10.53),
	}, positions.All())

	calc := NewCalculator(s, nil, nil)
	row, err := calc.ClosedRow(Security{ID: testBond}, positions.Closed[0], paid, nil)
	if err != nil {
		t.Fatalf("ClosedRow() error = %v", err)
	}
	assertAmount(t, "Coupon", row.Coupon, "81")
	assertAmount(t, "Amortization", row.Amortization, "100")
	assertAmount(t, "Dividend", row.Dividend, "")
	assertAmount(t, "Tax", row.Tax, "10.53")
	// 900 + 100 amortization - 1000 leaves nothing to tax
	assertAmount(t, "ForecastTax", row.ForecastTax, "0")
	// 900 + 81 + 100 - 1000 - 10.53
	assertAmount(t, "Profit", row.Profit, "70.47")
}

func TestCalculator_Materiality(t *testing.T) {
	lookup := mapLookup{
		flow(1, Price, 1000),
		flow(1, Commission, 0.005),
		flow(1, AccruedInterest, 0.02),
	}
	positions, err := Match([]Transaction{tx(1, "2021-01-01", 1)}, nil)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	row, err := NewCalculator(lookup, nil, nil).OpenedRow(Security{ID: testBond}, positions.Opened[0], PaidInterest{})
	if err != nil {
		t.Fatalf("OpenedRow() error = %v", err)
	}
	assertAmount(t, "OpenCommission", row.OpenCommission, "")
	assertAmount(t, "OpenAccruedInterest", row.OpenAccruedInterest, "0.02")
}

func TestCalculator_Conversion(t *testing.T) {
	lookup := mapLookup{
		flow(1, Price, 1000),
		flowIn(1, Commission, 0.1, "USD"),
		flow(2, Price, 1100),
	}
	conv := &countingConverter{rates: map[string]decimal.Decimal{"USDRUB": dec("75.5")}}
	calc := NewCalculator(lookup, conv, nil)
	positions, err := Match([]Transaction{tx(1, "2021-01-01", 10), tx(2, "2021-01-02", -10)}, nil)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	row, err := calc.ClosedRow(Security{ID: testBond}, positions.Closed[0], PaidInterest{}, nil)
	if err != nil {
		t.Fatalf("ClosedRow() error = %v", err)
	}
	assertAmount(t, "OpenCommission", row.OpenCommission, "7.55")
	if conv.calls != 1 {
		t.Errorf("converter called %d times, want 1", conv.calls)
	}

	t.Run("unknown rate", func(t *testing.T) {
		lookup := mapLookup{flow(1, Price, 1000), flowIn(1, Commission, 1, "CHF")}
		calc := NewCalculator(lookup, conv, nil)
		positions, _ := Match([]Transaction{tx(1, "2021-01-01", 10)}, nil)
		if _, err := calc.OpenedRow(Security{ID: testBond}, positions.Opened[0], PaidInterest{}); !errors.Is(err, errNoRate) {
			t.Errorf("OpenedRow() error = %v, want %v", err, errNoRate)
		}
	})
}

func TestCalculator_Redemption(t *testing.T) {
	s := newTestStore(t,
		trade(1, "2021-01-01", 10, "9500", "0"),
		trade(2, "2021-02-01", 30, "29100", "0"),
		trade(3, "2021-03-01", -20, "19600", "0"),
	)
	redemption := event(Redemption, "2021-12-31", 20000)
	positions := match(t, s, redemption)
	if len(positions.Closed) != 3 || len(positions.Fictitious) != 1 {
		t.Fatalf("Match() = %d closed, %d fictitious, want 3 and 1", len(positions.Closed), len(positions.Fictitious))
	}
	paid := Allocate([]SecurityEventCashFlow{event(Coupon, "2021-06-01", 300)}, positions.All())
	calc := NewCalculator(s, nil, nil)

	redeemed, err := calc.ClosedRow(Security{ID: testBond}, positions.Closed[2], paid, []SecurityEventCashFlow{redemption})
	if err != nil {
		t.Fatalf("ClosedRow() error = %v", err)
	}
	if redeemed.Count != 20 || redeemed.CloseDate != date.New(2021, 12, 31) {
		t.Errorf("redeemed row = %v, want 20 closed on 2021-12-31", redeemed)
	}
	assertAmount(t, "OpenAmount", redeemed.OpenAmount, "19400")
	assertAmount(t, "CloseAmount", redeemed.CloseAmount, "20000")
	assertAmount(t, "CloseCommission", redeemed.CloseCommission, "")
	assertAmount(t, "Coupon", redeemed.Coupon, "300")

	fictitious, err := calc.OpenedRow(Security{ID: testBond}, positions.Fictitious[0], paid)
	if err != nil {
		t.Fatalf("OpenedRow() error = %v", err)
	}
	if fictitious.Kind != KindFictitious || fictitious.Count != 20 || fictitious.Currency != "RUB" {
		t.Errorf("fictitious row = %v %s %s", fictitious, fictitious.Kind, fictitious.Currency)
	}
	assertAmount(t, "OpenAmount", fictitious.OpenAmount, "")
	assertAmount(t, "Coupon", fictitious.Coupon, "300")

	t.Run("two redemptions", func(t *testing.T) {
		_, err := calc.ClosedRow(Security{ID: testBond}, positions.Closed[2], paid, []SecurityEventCashFlow{redemption, redemption})
		if !errors.Is(err, ErrInputIntegrity) {
			t.Errorf("ClosedRow() error = %v, want ErrInputIntegrity", err)
		}
	})
}

func TestCalculator_UnknownClosingEvent(t *testing.T) {
	s := newTestStore(t, trade(1, "2021-01-01", 10, "1000", "0"))
	p := &ClosedPosition{
		OpenedPosition: OpenedPosition{open: tx(1, "2021-01-01", 10), count: 10},
		close:          tx(2, "2021-02-01", -10),
		closing:        Coupon,
	}
	_, err := NewCalculator(s, nil, nil).ClosedRow(Security{ID: testBond}, p, PaidInterest{}, nil)
	if !errors.Is(err, ErrInputIntegrity) {
		t.Errorf("ClosedRow() error = %v, want ErrInputIntegrity", err)
	}
}

func TestCalculator_MissingPrice(t *testing.T) {
	testCases := []struct {
		name   string
		lookup mapLookup
	}{
		{"commission only", mapLookup{flow(1, Commission, 1)}},
		{"no cash flow", nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			positions, err := Match([]Transaction{tx(1, "2021-01-01", 10)}, nil)
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}
			_, err = NewCalculator(tc.lookup, nil, nil).OpenedRow(Security{ID: testBond}, positions.Opened[0], PaidInterest{})
			if !errors.Is(err, ErrLookupExhausted) {
				t.Errorf("OpenedRow() error = %v, want ErrLookupExhausted", err)
			}
		})
	}
}

func TestCalculator_ZeroInvestedHasNoYield(t *testing.T) {
	lookup := mapLookup{flow(2, Price, 100)}
	positions, err := Match([]Transaction{tx(1, "2021-01-01", 10), tx(2, "2021-02-01", -10)}, nil)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	calc := NewCalculator(lookup, nil, nil)
	// price currency is resolved from the opening transaction
	calc.currencies.currencies[testBond] = "RUB"
	row, err := calc.ClosedRow(Security{ID: testBond}, positions.Closed[0], PaidInterest{}, nil)
	if err != nil {
		t.Fatalf("ClosedRow() error = %v", err)
	}
	assertAmount(t, "OpenAmount", row.OpenAmount, "")
	assertAmount(t, "Profit", row.Profit, "87")
	assertAmount(t, "Yield", row.Yield, "")
}
