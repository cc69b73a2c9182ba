// Package rules holds the business rules every computation runs against:
// per-property revenue targets, fee deductions, the commission retention
// factor and the classification bands.
//
// A *Rules value is immutable once built. Callers pass it explicitly to each
// entry point so tests can run against their own rule sets.
package rules

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/aristath/rentboard/internal/domain"
)

// Threshold is the baseline monthly revenue target of one property
type Threshold struct {
	PropertyCode           string  `json:"property_code"`
	MonthlyTarget          float64 `json:"monthly_target"`
	MonthlyTargetSecondary float64 `json:"monthly_target_secondary"`
}

// Bands are the multipliers used by the classifier
type Bands struct {
	// Revenue cells at or above RevenueAbove x target are ABOVE,
	// at or below RevenueBelow x target are BELOW.
	RevenueAbove float64 `yaml:"revenue_above" json:"revenue_above"`
	RevenueBelow float64 `yaml:"revenue_below" json:"revenue_below"`
	// OccupancyTarget is the share of a month's days a property should be booked.
	OccupancyTarget float64 `yaml:"occupancy_target" json:"occupancy_target"`
	OccupancyAbove  float64 `yaml:"occupancy_above" json:"occupancy_above"`
	OccupancyBelow  float64 `yaml:"occupancy_below" json:"occupancy_below"`
}

// PropertyConfig is one property entry of a rules file
type PropertyConfig struct {
	Code          string   `yaml:"code"`
	MonthlyTarget float64  `yaml:"monthly_target"`
	Deduction     *float64 `yaml:"deduction,omitempty"`
}

// Config is the serialisable form of a rule set
type Config struct {
	PrimaryCurrency   string           `yaml:"primary_currency"`
	SecondaryCurrency string           `yaml:"secondary_currency"`
	ConversionRate    float64          `yaml:"conversion_rate"`
	RetentionFactor   float64          `yaml:"retention_factor"`
	DefaultDeduction  float64          `yaml:"default_deduction"`
	Owners            []string         `yaml:"owners"`
	Properties        []PropertyConfig `yaml:"properties"`
	SummaryExclusions []string         `yaml:"summary_exclusions"`
	Bands             Bands            `yaml:"bands"`
}

// Rules is an immutable, validated rule set
type Rules struct {
	primaryCurrency   string
	secondaryCurrency string
	conversionRate    float64
	retention         decimal.Decimal
	defaultDeduction  decimal.Decimal
	deductions        map[string]decimal.Decimal
	thresholds        map[string]Threshold
	properties        []string
	owners            []string
	exclusions        map[string]bool
	bands             Bands
}

func ptr(v float64) *float64 { return &v }

// DefaultConfig returns the built-in rule set
func DefaultConfig() Config {
	return Config{
		PrimaryCurrency:   "EUR",
		SecondaryCurrency: "MAD",
		ConversionRate:    10.8,
		RetentionFactor:   0.8,
		DefaultDeduction:  20,
		Owners:            []string{"Mohamed", "Mounia"},
		Properties: []PropertyConfig{
			{Code: "Alia 22", MonthlyTarget: 650},
			{Code: "Alia 36", MonthlyTarget: 850},
			{Code: "Alia 37", MonthlyTarget: 650},
			{Code: "Alia 41", MonthlyTarget: 800},
			{Code: "Menara 12", MonthlyTarget: 1000},
			{Code: "Menara 15", MonthlyTarget: 1000},
			{Code: "Oumnia A2 17", MonthlyTarget: 1800, Deduction: ptr(50)},
			{Code: "Palmeraie B9 A1", MonthlyTarget: 2000, Deduction: ptr(50)},
		},
		SummaryExclusions: []string{"Oumnia A2 17", "Palmeraie B9 A1"},
		Bands: Bands{
			RevenueAbove:    1.3,
			RevenueBelow:    1.0,
			OccupancyTarget: 0.8,
			OccupancyAbove:  1.2,
			OccupancyBelow:  0.8,
		},
	}
}

// Default returns the built-in rule set
func Default() *Rules {
	r, err := New(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("built-in rules are invalid: %v", err))
	}
	return r
}

// Load reads a YAML rules file. An empty path returns the built-in rules.
// Fields missing from the file keep their built-in values, except the
// property list which replaces the built-in one when present.
func Load(path string) (*Rules, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	return New(cfg)
}

// New validates cfg and builds a rule set from it
func New(cfg Config) (*Rules, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Rules{
		primaryCurrency:   cfg.PrimaryCurrency,
		secondaryCurrency: cfg.SecondaryCurrency,
		conversionRate:    cfg.ConversionRate,
		retention:         decimal.NewFromFloat(cfg.RetentionFactor),
		defaultDeduction:  decimal.NewFromFloat(cfg.DefaultDeduction),
		deductions:        make(map[string]decimal.Decimal, len(cfg.Properties)),
		thresholds:        make(map[string]Threshold, len(cfg.Properties)),
		exclusions:        make(map[string]bool, len(cfg.SummaryExclusions)),
		owners:            append([]string(nil), cfg.Owners...),
		bands:             cfg.Bands,
	}

	for _, p := range cfg.Properties {
		r.thresholds[p.Code] = Threshold{
			PropertyCode:           p.Code,
			MonthlyTarget:          p.MonthlyTarget,
			MonthlyTargetSecondary: p.MonthlyTarget * cfg.ConversionRate,
		}
		if p.Deduction != nil {
			r.deductions[p.Code] = decimal.NewFromFloat(*p.Deduction)
		}
		r.properties = append(r.properties, p.Code)
	}
	sort.Strings(r.properties)

	for _, code := range cfg.SummaryExclusions {
		r.exclusions[code] = true
	}

	return r, nil
}

// Validate checks the configuration for values the engine cannot work with
func (c Config) Validate() error {
	if c.RetentionFactor <= 0 || c.RetentionFactor > 1 {
		return fmt.Errorf("retention_factor must be in (0, 1], got %v", c.RetentionFactor)
	}
	if c.DefaultDeduction < 0 {
		return fmt.Errorf("default_deduction must not be negative, got %v", c.DefaultDeduction)
	}
	if c.ConversionRate <= 0 {
		return fmt.Errorf("conversion_rate must be positive, got %v", c.ConversionRate)
	}
	if len(c.Properties) == 0 {
		return fmt.Errorf("at least one property is required")
	}

	seen := make(map[string]bool, len(c.Properties))
	for _, p := range c.Properties {
		code := strings.TrimSpace(p.Code)
		if code == "" {
			return fmt.Errorf("property code must not be empty")
		}
		if seen[code] {
			return fmt.Errorf("duplicate property %q", code)
		}
		seen[code] = true
		if p.MonthlyTarget <= 0 {
			return fmt.Errorf("property %q: monthly_target must be positive, got %v", code, p.MonthlyTarget)
		}
		if p.Deduction != nil && *p.Deduction < 0 {
			return fmt.Errorf("property %q: deduction must not be negative, got %v", code, *p.Deduction)
		}
	}

	b := c.Bands
	if b.RevenueBelow <= 0 || b.RevenueAbove <= b.RevenueBelow {
		return fmt.Errorf("revenue bands must satisfy 0 < revenue_below < revenue_above")
	}
	if b.OccupancyTarget <= 0 || b.OccupancyTarget > 1 {
		return fmt.Errorf("occupancy_target must be in (0, 1], got %v", b.OccupancyTarget)
	}
	if b.OccupancyBelow <= 0 || b.OccupancyAbove <= b.OccupancyBelow {
		return fmt.Errorf("occupancy bands must satisfy 0 < occupancy_below < occupancy_above")
	}

	return nil
}

// Threshold returns the revenue target of a property
func (r *Rules) Threshold(propertyCode string) (Threshold, error) {
	t, ok := r.thresholds[propertyCode]
	if !ok {
		return Threshold{}, fmt.Errorf("%w: %q", domain.ErrUnknownProperty, propertyCode)
	}
	return t, nil
}

// Thresholds returns every threshold ordered by property code
func (r *Rules) Thresholds() []Threshold {
	out := make([]Threshold, 0, len(r.properties))
	for _, code := range r.properties {
		out = append(out, r.thresholds[code])
	}
	return out
}

// Known reports whether the property has configured rules
func (r *Rules) Known(propertyCode string) bool {
	_, ok := r.thresholds[propertyCode]
	return ok
}

// Deduction returns the flat fee removed from a booking of the property.
// Known properties without an override use the default deduction.
func (r *Rules) Deduction(propertyCode string) (decimal.Decimal, error) {
	if !r.Known(propertyCode) {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrUnknownProperty, propertyCode)
	}
	if d, ok := r.deductions[propertyCode]; ok {
		return d, nil
	}
	return r.defaultDeduction, nil
}

// DefaultDeduction returns the deduction applied to properties without an override
func (r *Rules) DefaultDeduction() decimal.Decimal { return r.defaultDeduction }

// Retention returns the share of revenue kept after platform commission
func (r *Rules) Retention() decimal.Decimal { return r.retention }

// Excluded reports whether the property is left out of performance summaries
func (r *Rules) Excluded(propertyCode string) bool { return r.exclusions[propertyCode] }

// Properties returns the configured property codes, sorted
func (r *Rules) Properties() []string { return append([]string(nil), r.properties...) }

// Owners returns the known owners
func (r *Rules) Owners() []string { return append([]string(nil), r.owners...) }

// Bands returns the classification bands
func (r *Rules) Bands() Bands { return r.bands }

// ConversionRate returns units of the secondary currency per primary unit
func (r *Rules) ConversionRate() float64 { return r.conversionRate }

// Currencies returns the primary and secondary currency codes
func (r *Rules) Currencies() (primary, secondary string) {
	return r.primaryCurrency, r.secondaryCurrency
}
