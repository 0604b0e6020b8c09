// Package eodhd converts currencies with the exchange rates published by
// https://eodhd.com.
package eodhd

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the root of the eodhd API.
const DefaultBaseURL = "https://eodhd.com/api"

// Converter implements profit.Converter using the latest forex quote of
// eodhd. Rates are fetched at most once per pair and per run, and the HTTP
// responses are cached on disk for the day.
type Converter struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
	Log     zerolog.Logger

	mu    sync.Mutex
	rates map[string]decimal.Decimal
}

// NewConverter returns a Converter that caches responses in cacheDir, or in
// the system temporary directory when cacheDir is empty.
func NewConverter(apiKey, cacheDir string, log zerolog.Logger) *Converter {
	log = log.With().Str("service", "eodhd").Logger()
	return &Converter{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
		Client:  newDailyCachingClient(cacheDir, log),
		Log:     log,
	}
}

// Rate returns the value of one unit of from in to.
func (c *Converter) Rate(from, to string) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	// The ticker for forex is in the format "fromCurrency+toCurrency.FOREX".
	ticker := from + to + ".FOREX"

	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.rates[ticker]; ok {
		return r, nil
	}
	r, err := c.fetch(ticker)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if c.rates == nil {
		c.rates = make(map[string]decimal.Decimal)
	}
	c.rates[ticker] = r
	c.Log.Debug().Str("ticker", ticker).Stringer("rate", r).Msg("rate")
	return r, nil
}

// fetch reads the last close of the ticker.
func (c *Converter) fetch(ticker string) (decimal.Decimal, error) {
	// https://eodhd.com/api/real-time/EURUSD.FOREX?api_token=demo&fmt=json
	// {"code":"EURUSD.FOREX","timestamp":1700000000,"gmtoffset":0,"open":1.0856,
	//  "high":1.0872,"low":1.0849,"close":1.0866,"volume":0,"previousClose":1.0855,
	//  "change":0.0011,"change_p":0.1013}
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	addr := fmt.Sprintf("%s/real-time/%s?fmt=json&api_token=%s", strings.TrimSuffix(base, "/"), url.PathEscape(ticker), url.QueryEscape(c.APIKey))

	var jobj any
	if err := jwget(client, addr, &jobj); err != nil {
		return decimal.Decimal{}, fmt.Errorf("error fetching %s: %w", ticker, err)
	}
	path := "$.close"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("error parsing %s: %q %w", ticker, path, err)
	}
	// jsonpath may return a list of one answer or the answer itself
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	var rate decimal.Decimal
	switch v := jval.(type) {
	case float64:
		rate = decimal.NewFromFloat(v)
	case string:
		// "NA" when the market has no quote
		if rate, err = decimal.NewFromString(v); err != nil {
			return decimal.Decimal{}, fmt.Errorf("no quote for %s: %q", ticker, v)
		}
	default:
		return decimal.Decimal{}, fmt.Errorf("error parsing %s: %q not a number %v", ticker, path, jval)
	}
	if !rate.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("invalid rate for %s: %s", ticker, rate)
	}
	return rate, nil
}
