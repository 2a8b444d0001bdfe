package rentroll

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/etnz/rentroll/date"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of a run. It is passed explicitly; the core keeps no
// global configuration and never reads the current date.
type Config struct {
	// AsOf is the default as-of date; commands override it with -d.
	AsOf    date.Date `yaml:"as_of"`
	Workers int       `yaml:"workers" validate:"gte=0"`

	Rules       Rules             `yaml:",inline"`
	ChargeCodes Classification    `yaml:"charge_code_classification" validate:"required,dive,oneof=rent recovery tax other"`
	Snapshot    SnapshotOptions   `yaml:",inline"`
	Validation  ValidationOptions `yaml:",inline"`
	Quality     QualityOptions    `yaml:"quality"`
}

// DefaultClassification maps the usual base rent and rent adjustment codes to rent.
func DefaultClassification() Classification {
	return Classification{
		"RNT":  CategoryRent,
		"RENT": CategoryRent,
		"BRR":  CategoryRent,
		"CPI":  CategoryRent,
		"CAM":  CategoryRecovery,
		"INS":  CategoryRecovery,
		"UTL":  CategoryRecovery,
		"RET":  CategoryTax,
		"TAX":  CategoryTax,
		"PKG":  CategoryOther,
	}
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Rules:       DefaultRules(),
		ChargeCodes: DefaultClassification(),
		Snapshot:    DefaultSnapshotOptions(),
		Validation:  DefaultValidationOptions(),
		Quality:     DefaultQualityOptions(),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration values.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid configuration: %w", verrs)
		}
		return err
	}
	return nil
}

// workers returns the size of the worker pool.
func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// LoadConfig reads a YAML configuration over the defaults and validates it.
// Keys not known to Config are ignored so the same file can configure other packages.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
