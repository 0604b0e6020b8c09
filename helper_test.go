package profit

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	testPortfolio = "P1"
	testBond      = "RU000A0JV3M2"
)

// day is a helper for test to create a timestamp at noon UTC from a date string.
func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t.Add(12 * time.Hour)
}

// tx is a helper for test to create a transaction of the test bond.
func tx(id int64, on string, count int) Transaction {
	return Transaction{ID: id, Portfolio: testPortfolio, Instrument: testBond, Timestamp: day(on), Count: count}
}

// event is a helper for test to create a security event of the test bond.
func event(kind CashFlowType, on string, value float64) SecurityEventCashFlow {
	return SecurityEventCashFlow{
		Instrument: testBond,
		Portfolio:  testPortfolio,
		Timestamp:  day(on),
		Kind:       kind,
		Value:      decimal.NewFromFloat(value),
		Currency:   "RUB",
	}
}

// flow is a helper for test to create a transaction cash flow in rubles.
func flow(id int64, kind CashFlowType, value float64) TransactionCashFlow {
	return flowIn(id, kind, value, "RUB")
}

func flowIn(id int64, kind CashFlowType, value float64, currency string) TransactionCashFlow {
	return TransactionCashFlow{
		TransactionID: id,
		Portfolio:     testPortfolio,
		Kind:          kind,
		Value:         decimal.NewFromFloat(value),
		Currency:      currency,
	}
}

// dec is a helper for test to create a decimal from a string const.
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// countingConverter records the conversions it is asked for.
type countingConverter struct {
	rates map[string]decimal.Decimal
	calls int
}

func (c *countingConverter) Rate(from, to string) (decimal.Decimal, error) {
	c.calls++
	if r, ok := c.rates[from+to]; ok {
		return r, nil
	}
	return decimal.Decimal{}, errNoRate
}

type testError string

func (e testError) Error() string { return string(e) }

const errNoRate = testError("no rate")
