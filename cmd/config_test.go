package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, "records.jsonl", cfg.RecordsFile)
	assert.Equal(t, ConverterRecords, cfg.Converter)
	assert.Equal(t, "warn", cfg.Logging.Level)

	rate, err := cfg.Rate()
	require.NoError(t, err)
	assert.Equal(t, "0.13", rate.String())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pnl.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
records_file = "broker.jsonl"
portfolio = "IIS"
tax_rate = "0.15"
converter = "eodhd"

[eodhd]
api_key = "from-file"
cache_dir = "/tmp/eodhd"

[logging]
level = "debug"
pretty = false
`), 0o644))

	cfg, err := LoadConfig(filepath.Join(dir, "missing.toml"), path)
	require.NoError(t, err)
	assert.Equal(t, "broker.jsonl", cfg.RecordsFile)
	assert.Equal(t, "IIS", cfg.Portfolio)
	assert.Equal(t, ConverterEODHD, cfg.Converter)
	assert.Equal(t, "from-file", cfg.EODHD.APIKey)
	assert.Equal(t, "https://eodhd.com/api", cfg.EODHD.BaseURL, "defaults survive partial files")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Pretty)

	rate, err := cfg.Rate()
	require.NoError(t, err)
	assert.Equal(t, "0.15", rate.String())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PNL_EODHD_API_KEY", "from-env")
	t.Setenv("PNL_LOG_LEVEL", "ERROR")
	t.Setenv("PNL_RECORDS_FILE", "env.jsonl")
	t.Setenv("PNL_CURRENCY", "rub")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.EODHD.APIKey)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "env.jsonl", cfg.RecordsFile)
	assert.Equal(t, "RUB", cfg.Currency)
}

func TestLoadConfig_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"syntax", `tax_rate = `, "failed to parse"},
		{"tax rate", `tax_rate = "thirteen"`, "invalid tax rate"},
		{"tax rate range", `tax_rate = "1.3"`, "must be in [0, 1)"},
		{"converter", `converter = "bank"`, "unknown converter"},
		{"currency", `currency = "XYZ"`, "invalid report currency"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "pnl.toml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))
			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
