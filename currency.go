package profit

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Converter returns the rate to convert one unit of from into to.
type Converter interface {
	Rate(from, to string) (decimal.Decimal, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(from, to string) (decimal.Decimal, error)

func (f ConverterFunc) Rate(from, to string) (decimal.Decimal, error) { return f(from, to) }

// legacyCurrencies are codes still found in broker reports but withdrawn from ISO 4217.
var legacyCurrencies = map[string]string{
	"RUR": "RUB",
}

// ValidateCurrency checks that cur is a known currency code.
func ValidateCurrency(cur string) error {
	if cur == "" {
		return fmt.Errorf("currency is missing")
	}
	if _, ok := legacyCurrencies[cur]; ok {
		return nil
	}
	if money.GetCurrency(cur) == nil {
		return fmt.Errorf("invalid currency %q", cur)
	}
	return nil
}

// SameCurrency reports whether a and b denote the same currency, legacy
// aliases included.
func SameCurrency(a, b string) bool {
	return CanonicalCurrency(a) == CanonicalCurrency(b)
}

// CanonicalCurrency returns the upper case ISO 4217 code of c.
func CanonicalCurrency(c string) string {
	c = strings.ToUpper(c)
	if iso, ok := legacyCurrencies[c]; ok {
		return iso
	}
	return c
}

// CurrencyCache memoizes the pricing currency of instruments. The currency an
// instrument is priced in does not change within a run so entries are never
// invalidated. It is safe for concurrent use.
type CurrencyCache struct {
	mu         sync.Mutex
	currencies map[string]string // instrument -> price currency
}

// NewCurrencyCache returns an empty cache.
func NewCurrencyCache() *CurrencyCache {
	return &CurrencyCache{currencies: make(map[string]string)}
}

// Currency returns the cached currency of the instrument, or calls resolve
// and caches its result.
func (c *CurrencyCache) Currency(instrument string, resolve func() (string, error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.currencies[instrument]; ok {
		return cur, nil
	}
	cur, err := resolve()
	if err != nil {
		return "", err
	}
	c.currencies[instrument] = cur
	return cur, nil
}

// RateTable is a Converter over a fixed set of exchange rates.
type RateTable struct {
	rates map[[2]string]decimal.Decimal
}

// NewRateTable returns an empty RateTable.
func NewRateTable() *RateTable {
	return &RateTable{rates: make(map[[2]string]decimal.Decimal)}
}

// Set records that one unit of from is worth rate units of to.
func (t *RateTable) Set(from, to string, rate decimal.Decimal) {
	t.rates[[2]string{CanonicalCurrency(from), CanonicalCurrency(to)}] = rate
}

// Rate implements Converter. When only the reverse pair is known, its
// inverse is used.
func (t *RateTable) Rate(from, to string) (decimal.Decimal, error) {
	from, to = CanonicalCurrency(from), CanonicalCurrency(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if r, ok := t.rates[[2]string{from, to}]; ok {
		return r, nil
	}
	if r, ok := t.rates[[2]string{to, from}]; ok && !r.IsZero() {
		return decimal.NewFromInt(1).Div(r), nil
	}
	return decimal.Decimal{}, fmt.Errorf("no exchange rate for %s to %s", from, to)
}
