// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/iwvelando/installment-plans/pkg/constants"
	"github.com/iwvelando/installment-plans/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for installment-plans.
type Configuration struct {
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
	Plans    PlansConfig    `yaml:"plans,omitempty"`
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
	Export   ExportConfig   `yaml:"export,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// PlansConfig lists the plan durations offered to every customer.
type PlansConfig struct {
	Durations []int `yaml:"durations,omitempty"`
}

// DefaultsConfig pre-fills the quote form.
type DefaultsConfig struct {
	ItemName          string  `yaml:"itemName,omitempty" json:"itemName"`
	CustomerName      string  `yaml:"customerName,omitempty" json:"customerName"`
	Principal         float64 `yaml:"principal,omitempty" json:"principal"`
	AnnualRatePercent float64 `yaml:"annualRatePercent,omitempty" json:"annualRatePercent"`
	AdvancePayment    float64 `yaml:"advancePayment,omitempty" json:"advancePayment"`
}

// ExportConfig controls the exported summary document.
type ExportConfig struct {
	Title          string   `yaml:"title,omitempty"`
	Footer         []string `yaml:"footer,omitempty"`
	CurrencySymbol string   `yaml:"currencySymbol,omitempty"`
	// FontFile is an optional UTF-8 TrueType font for PDF text. Without it
	// the PDF uses the built-in Arial, which only covers Windows-1252.
	FontFile string `yaml:"fontFile,omitempty"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults double as the key registry AutomaticEnv needs for Unmarshal.
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("plans.durations", constants.DefaultDurations())
	v.SetDefault("defaults.itemName", constants.DefaultItemName)
	v.SetDefault("defaults.customerName", constants.DefaultCustomerName)
	v.SetDefault("defaults.principal", 1000.0)
	v.SetDefault("defaults.annualRatePercent", 5.0)
	v.SetDefault("defaults.advancePayment", 100.0)
	v.SetDefault("export.title", constants.DefaultDocumentTitle)
	v.SetDefault("export.footer", constants.DefaultFooter())
	v.SetDefault("export.currencySymbol", constants.DefaultCurrencySymbol)
	v.SetDefault("export.fontFile", "")
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Environment variables prefixed with INSTALLMENT_
// override file values (e.g. INSTALLMENT_PLANS_DURATIONS=3,6,9).
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r. Empty input
// yields the defaults.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	v := newViper()
	if len(bytes.TrimSpace(data)) > 0 {
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("error reading config data, %s", err)
		}
	}

	return decode(v)
}

// Default returns the built-in configuration with environment overrides applied.
func Default() (*Configuration, error) {
	return decode(newViper())
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if len(configuration.Plans.Durations) == 0 {
		configuration.Plans.Durations = constants.DefaultDurations()
	}
	return &configuration, nil
}

// ValidateConfiguration checks the configuration. Hard failures are returned
// as an error; questionable but usable values come back as warnings.
func (c *Configuration) ValidateConfiguration() ([]string, error) {
	var warnings []string

	if err := validation.ValidateDurations(c.Plans.Durations); err != nil {
		return nil, fmt.Errorf("invalid plans.durations: %w", err)
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			return nil, fmt.Errorf("invalid output.format: %w", err)
		}
	}

	seen := make(map[int]struct{}, len(c.Plans.Durations))
	for _, months := range c.Plans.Durations {
		if _, dup := seen[months]; dup {
			warnings = append(warnings, fmt.Sprintf("plan duration %d is listed more than once", months))
		}
		seen[months] = struct{}{}
	}

	d := c.Defaults
	amounts := []struct {
		key   string
		value float64
	}{
		{"defaults.principal", d.Principal},
		{"defaults.annualRatePercent", d.AnnualRatePercent},
		{"defaults.advancePayment", d.AdvancePayment},
	}
	for _, amount := range amounts {
		if amount.value < 0 || math.IsNaN(amount.value) {
			warnings = append(warnings, fmt.Sprintf("%s is %v; quotes with this value will be rejected", amount.key, amount.value))
		}
	}
	if d.AnnualRatePercent > constants.PercentageMultiplier {
		warnings = append(warnings, fmt.Sprintf("defaults.annualRatePercent of %.2f%% exceeds 100%%", d.AnnualRatePercent))
	}
	if d.Principal > 0 && d.AdvancePayment > d.Principal {
		warnings = append(warnings, "defaults.advancePayment exceeds defaults.principal")
	}
	return warnings, nil
}
