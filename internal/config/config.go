// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/okian/compensa/internal/adapters/bands"
	"github.com/okian/compensa/internal/domain/model"
	"github.com/shopspring/decimal"
)

// BandConfig is one salary band as written in YAML. Amounts are kept as the
// literal text of the file so they parse as exact decimals.
type BandConfig struct {
	Role   string `koanf:"role"`
	Level  string `koanf:"level"`
	Min    string `koanf:"min"`
	Max    string `koanf:"max"`
	Target string `koanf:"target"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// WorkerCount bounds concurrent calculations within a batch.
	WorkerCount int `koanf:"worker_count"`

	// DivisionPrecision is the number of decimal places kept by divisions.
	DivisionPrecision int32 `koanf:"division_precision"`

	// HistogramBinWidth is the salary change histogram bin width in percentage points.
	HistogramBinWidth int `koanf:"histogram_bin_width"`

	// MaxBatchSize caps employees per batch request.
	MaxBatchSize int `koanf:"max_batch_size"`

	// MaxUploadBytes caps CSV upload bodies.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// MaxBodyBytes caps JSON request bodies on the calculate and summary routes.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// BandCacheTTLSeconds is how long looked-up bands are cached.
	BandCacheTTLSeconds int `koanf:"band_cache_ttl_seconds"`

	// SalaryBands is the role/level band table.
	SalaryBands []BandConfig `koanf:"salary_bands"`

	// FallbackBand applies to role/level pairs missing from SalaryBands.
	FallbackBand BandConfig `koanf:"fallback_band"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		WorkerCount:         runtime.NumCPU() * 4,
		DivisionPrecision:   28,
		HistogramBinWidth:   1,
		MaxBatchSize:        10_000,
		MaxUploadBytes:      10 << 20,
		MaxBodyBytes:        10 << 20,
		BandCacheTTLSeconds: 300,
		SalaryBands: []BandConfig{
			{Role: "Fund Manager", Level: "Senior", Min: "110000", Max: "150000", Target: "130000"},
			{Role: "Fund Manager", Level: "Junior", Min: "80000", Max: "120000", Target: "100000"},
			{Role: "Analyst", Level: "Senior", Min: "90000", Max: "130000", Target: "110000"},
			{Role: "Analyst", Level: "Junior", Min: "60000", Max: "100000", Target: "80000"},
		},
		FallbackBand: BandConfig{Min: "0", Max: "1000000", Target: "0"},
	}
}

// BandCacheTTL returns the band cache TTL as a duration.
func (c *Config) BandCacheTTL() time.Duration {
	return time.Duration(c.BandCacheTTLSeconds) * time.Second
}

// BandEntries converts SalaryBands into table entries.
func (c *Config) BandEntries() ([]bands.Entry, error) {
	entries := make([]bands.Entry, 0, len(c.SalaryBands))
	for i, b := range c.SalaryBands {
		band, err := b.toBand()
		if err != nil {
			return nil, fmt.Errorf("%w: salary_bands[%d] (%s/%s): %w", ErrInvalidConfig, i, b.Role, b.Level, err)
		}
		entries = append(entries, bands.Entry{Role: b.Role, Level: b.Level, Band: band})
	}
	return entries, nil
}

// Fallback converts FallbackBand into a model band.
func (c *Config) Fallback() (model.Band, error) {
	band, err := c.FallbackBand.toBand()
	if err != nil {
		return model.Band{}, fmt.Errorf("%w: fallback_band: %w", ErrInvalidConfig, err)
	}
	return band, nil
}

// BandTable builds the salary band table described by the config.
func (c *Config) BandTable() (*bands.Table, error) {
	entries, err := c.BandEntries()
	if err != nil {
		return nil, err
	}
	fallback, err := c.Fallback()
	if err != nil {
		return nil, err
	}
	table, err := bands.NewTable(entries, fallback)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return table, nil
}

func (b BandConfig) toBand() (model.Band, error) {
	minimum, err := decimal.NewFromString(b.Min)
	if err != nil {
		return model.Band{}, fmt.Errorf("min %q: %w", b.Min, err)
	}
	maximum, err := decimal.NewFromString(b.Max)
	if err != nil {
		return model.Band{}, fmt.Errorf("max %q: %w", b.Max, err)
	}
	target := decimal.Zero
	if b.Target != "" {
		if target, err = decimal.NewFromString(b.Target); err != nil {
			return model.Band{}, fmt.Errorf("target %q: %w", b.Target, err)
		}
	}
	return model.Band{Min: minimum, Max: maximum, Target: target}, nil
}
