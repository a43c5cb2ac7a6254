package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/iwvelando/installment-plans/internal/config"
	"github.com/iwvelando/installment-plans/internal/quote"
	"github.com/iwvelando/installment-plans/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address     string               `yaml:"address"`
	MaxBodySize string               `yaml:"maxBodySize"`
	Limits      Limits               `yaml:"limits"`
	Logging     config.LoggingConfig `yaml:"logging"`

	bodySizeBytes int64
}

// Limits bound how much work one request may ask the quote service for.
// Zero means the built-in default; nothing may exceed the hard caps in
// package constants.
type Limits struct {
	MaxDurationMonths int `yaml:"maxDurationMonths"`
	MaxBatchSize      int `yaml:"maxBatchSize"`
	BatchConcurrency  int `yaml:"batchConcurrency"`
}

// QuoteOptions builds quote service options that enforce these limits.
func (l Limits) QuoteOptions(durations []int) quote.Options {
	return quote.Options{
		Durations:         durations,
		BatchConcurrency:  l.BatchConcurrency,
		MaxDurationMonths: l.MaxDurationMonths,
		MaxBatchSize:      l.MaxBatchSize,
	}
}

func defaultConfig() *Config {
	return &Config{
		Address:     constants.DefaultServerAddress,
		MaxBodySize: strconv.FormatInt(constants.DefaultMaxBodySizeBytes, 10),
		Limits: Limits{
			MaxDurationMonths: constants.MaxDurationMonths,
			MaxBatchSize:      constants.MaxBatchSize,
			BatchConcurrency:  constants.DefaultBatchConcurrency,
		},
		bodySizeBytes: constants.DefaultMaxBodySizeBytes,
	}
}

// LoadConfig loads the server configuration from YAML. A missing file yields
// the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("invalid server config %s: %w", path, err)
	}
	return cfg, nil
}

// BodySizeBytes returns the configured request body limit in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySizeBytes
}

// SetBodySizeBytes overrides the request body limit. Non-positive sizes are
// ignored.
func (c *Config) SetBodySizeBytes(size int64) {
	if size <= 0 {
		return
	}
	c.bodySizeBytes = size
	c.MaxBodySize = strconv.FormatInt(size, 10)
}

func (c *Config) normalize() error {
	if strings.TrimSpace(c.Address) == "" {
		c.Address = constants.DefaultServerAddress
	}

	size, err := ParseSize(c.MaxBodySize)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxBodySizeBytes
	}
	c.SetBodySizeBytes(size)

	return c.Limits.normalize()
}

func (l *Limits) normalize() error {
	fields := []struct {
		name     string
		value    *int
		fallback int
		ceiling  int
	}{
		{"maxDurationMonths", &l.MaxDurationMonths, constants.MaxDurationMonths, constants.MaxDurationMonths},
		{"maxBatchSize", &l.MaxBatchSize, constants.MaxBatchSize, constants.MaxBatchSize},
		{"batchConcurrency", &l.BatchConcurrency, constants.DefaultBatchConcurrency, math.MaxInt32},
	}

	for _, f := range fields {
		switch {
		case *f.value < 0:
			return fmt.Errorf("limits.%s must not be negative, got %d", f.name, *f.value)
		case *f.value == 0:
			*f.value = f.fallback
		case *f.value > f.ceiling:
			return fmt.Errorf("limits.%s must be at most %d, got %d", f.name, f.ceiling, *f.value)
		}
	}
	return nil
}

// sizeUnits is ordered so two-letter suffixes match before "B".
var sizeUnits = []struct {
	suffix string
	factor int64
}{
	{"KB", 1 << 10},
	{"MB", 1 << 20},
	{"GB", 1 << 30},
	{"K", 1 << 10},
	{"M", 1 << 20},
	{"G", 1 << 30},
	{"B", 1},
}

// ParseSize converts a byte count such as "4096", "256K" or "10MB" into
// bytes. Units are binary and case-insensitive. An empty string yields the
// default body limit.
func ParseSize(value string) (int64, error) {
	s := strings.ToUpper(strings.TrimSpace(value))
	if s == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	factor := int64(1)
	for _, unit := range sizeUnits {
		if strings.HasSuffix(s, unit.suffix) {
			factor = unit.factor
			s = strings.TrimSpace(strings.TrimSuffix(s, unit.suffix))
			break
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size %q", value)
	}
	if n > math.MaxInt64/factor {
		return 0, fmt.Errorf("size %q overflows", value)
	}
	return n * factor, nil
}
