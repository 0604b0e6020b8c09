// Package cmd implements the CLI application to report the profit of a portfolio.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/profit"
	"github.com/etnz/profit/eodhd"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "profit")
	c.Register(&positionsCmd{}, "profit")
	c.Register(&ratesCmd{}, "currencies")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", defaultConfigFile(), "Path to the TOML configuration file")
var recordsFile = flag.String("records", "", "Path to the JSONL records file, overrides the configuration")

// defaultConfigFile lets extensions inherit the configuration of the pnl that launched them.
func defaultConfigFile() string {
	if v := os.Getenv(EnvConfigFile); v != "" {
		return v
	}
	return "pnl.toml"
}

// stdout and stderr are variables so that tests can capture the output.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// app is what every subcommand needs: the configuration, a logger and the records.
type app struct {
	cfg   *Config
	log   zerolog.Logger
	store *profit.Store
}

// openApp loads the configuration and decodes the records file.
func openApp() (*app, error) {
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	if *recordsFile != "" {
		cfg.RecordsFile = *recordsFile
	}
	log := newLogger(cfg.Logging, stderr)

	f, err := os.Open(cfg.RecordsFile)
	if err != nil {
		return nil, fmt.Errorf("cannot open records: %w", err)
	}
	defer f.Close()
	store, err := profit.DecodeStore(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode records %q: %w", cfg.RecordsFile, err)
	}
	log.Debug().Str("records", cfg.RecordsFile).Strs("portfolios", store.Portfolios()).Msg("records loaded")
	return &app{cfg: cfg, log: log, store: store}, nil
}

// portfolios returns the portfolios to report on: the given one, the
// configured one, or all of them.
func (a *app) portfolios(portfolio string) []string {
	if portfolio == "" {
		portfolio = a.cfg.Portfolio
	}
	if portfolio != "" {
		return []string{portfolio}
	}
	return a.store.Portfolios()
}

// converter returns the rates of the records file, falling back to eodhd
// when it is configured.
func (a *app) converter() profit.Converter {
	rates := a.store.Rates()
	if a.cfg.Converter != ConverterEODHD {
		return rates
	}
	remote := eodhd.NewConverter(a.cfg.EODHD.APIKey, a.cfg.EODHD.CacheDir, a.log)
	if a.cfg.EODHD.BaseURL != "" {
		remote.BaseURL = a.cfg.EODHD.BaseURL
	}
	return profit.ConverterFunc(func(from, to string) (decimal.Decimal, error) {
		if r, err := rates.Rate(from, to); err == nil {
			return r, nil
		}
		return remote.Rate(from, to)
	})
}

// sources returns the report sources of the records file.
func (a *app) sources() profit.Sources {
	src := a.store.Sources()
	src.Converter = a.converter()
	return src
}
