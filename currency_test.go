package profit

import (
	"errors"
	"sync"
	"testing"
)

func TestValidateCurrency(t *testing.T) {
	for _, cur := range []string{"RUB", "USD", "EUR", "RUR"} {
		if err := ValidateCurrency(cur); err != nil {
			t.Errorf("ValidateCurrency(%q) error = %v", cur, err)
		}
	}
	for _, cur := range []string{"", "XYZ", "rubles"} {
		if err := ValidateCurrency(cur); err == nil {
			t.Errorf("ValidateCurrency(%q) should fail", cur)
		}
	}
}

func TestSameCurrency(t *testing.T) {
	testCases := []struct {
		a, b string
		want bool
	}{
		{"RUB", "RUB", true},
		{"RUR", "RUB", true},
		{"usd", "USD", true},
		{"USD", "RUB", false},
	}
	for _, tc := range testCases {
		if got := SameCurrency(tc.a, tc.b); got != tc.want {
			t.Errorf("SameCurrency(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCurrencyCache(t *testing.T) {
	cache := NewCurrencyCache()
	var mu sync.Mutex
	calls := 0
	resolve := func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return "USD", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if cur, err := cache.Currency("US0378331005", resolve); err != nil || cur != "USD" {
				t.Errorf("Currency() = %q, %v", cur, err)
			}
		}()
	}
	wg.Wait()
	if calls != 1 {
		t.Errorf("resolve called %d times, want 1", calls)
	}

	// failures are not cached
	failing := func() (string, error) { return "", ErrLookupExhausted }
	if _, err := cache.Currency(testBond, failing); !errors.Is(err, ErrLookupExhausted) {
		t.Errorf("Currency() error = %v, want ErrLookupExhausted", err)
	}
	if cur, err := cache.Currency(testBond, func() (string, error) { return "RUB", nil }); err != nil || cur != "RUB" {
		t.Errorf("Currency() = %q, %v, want RUB after a failure", cur, err)
	}
}

func TestRateTable(t *testing.T) {
	rates := NewRateTable()
	rates.Set("USD", "RUB", dec("80"))

	testCases := []struct {
		from, to string
		want     string
	}{
		{"USD", "RUB", "80"},
		{"USD", "RUR", "80"},
		{"RUB", "USD", "0.0125"},
		{"EUR", "EUR", "1"},
	}
	for _, tc := range testCases {
		got, err := rates.Rate(tc.from, tc.to)
		if err != nil {
			t.Errorf("Rate(%s, %s) error = %v", tc.from, tc.to, err)
			continue
		}
		if !got.Equal(dec(tc.want)) {
			t.Errorf("Rate(%s, %s) = %s, want %s", tc.from, tc.to, got, tc.want)
		}
	}
	if _, err := rates.Rate("EUR", "RUB"); err == nil {
		t.Error("Rate(EUR, RUB) should fail")
	}
}
