package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/etnz/profit"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
)

// Config holds the configuration of the pnl CLI.
type Config struct {
	RecordsFile string        `toml:"records_file"` // JSONL records to report on
	Portfolio   string        `toml:"portfolio"`    // default portfolio, all when empty
	Currency    string        `toml:"currency"`     // only report instruments priced in it
	TaxRate     string        `toml:"tax_rate"`
	Converter   string        `toml:"converter"` // "records" or "eodhd"
	EODHD       EODHDConfig   `toml:"eodhd"`
	Logging     LoggingConfig `toml:"logging"`
	Output      OutputConfig  `toml:"output"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL  string `toml:"base_url"`
	APIKey   string `toml:"api_key"`
	CacheDir string `toml:"cache_dir"` // system temporary directory when empty
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"` // debug, info, warn, error
	Pretty bool   `toml:"pretty"`
}

// OutputConfig holds how markdown is printed.
type OutputConfig struct {
	Style string `toml:"style"` // glamour style, "raw" prints plain markdown
}

const (
	ConverterRecords = "records"
	ConverterEODHD   = "eodhd"
)

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		RecordsFile: "records.jsonl",
		TaxRate:     profit.DefaultTaxRate.String(),
		Converter:   ConverterRecords,
		EODHD: EODHDConfig{
			BaseURL: "https://eodhd.com/api",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Pretty: true,
		},
		Output: OutputConfig{
			Style: "auto",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Missing files are skipped, later files override earlier ones.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if v := os.Getenv(EnvRecordsFile); v != "" {
		config.RecordsFile = v
	}
	if v := os.Getenv("PNL_EODHD_API_KEY"); v != "" {
		config.EODHD.APIKey = v
	}
	if v := os.Getenv("PNL_LOG_LEVEL"); v != "" {
		config.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("PNL_CURRENCY"); v != "" {
		config.Currency = strings.ToUpper(v)
	}
}

func (c *Config) validate() error {
	if _, err := c.Rate(); err != nil {
		return err
	}
	switch c.Converter {
	case ConverterRecords, ConverterEODHD:
	default:
		return fmt.Errorf("unknown converter %q, want %q or %q", c.Converter, ConverterRecords, ConverterEODHD)
	}
	if c.Currency != "" {
		if err := profit.ValidateCurrency(c.Currency); err != nil {
			return fmt.Errorf("invalid report currency: %w", err)
		}
	}
	return nil
}

// Rate returns the tax rate as a decimal.
func (c *Config) Rate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid tax rate %q: %w", c.TaxRate, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Decimal{}, fmt.Errorf("tax rate %s must be in [0, 1)", rate)
	}
	return rate, nil
}
