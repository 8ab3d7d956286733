// Package config loads and validates the broker's yaml configuration.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"

	"github.com/quantra-lab/contango/internal/calendar"
	"github.com/quantra-lab/contango/internal/types"
	"github.com/quantra-lab/contango/pkg/errors"
)

// ProviderConfig names one external data source to register.
type ProviderConfig struct {
	Name string `yaml:"name" validate:"required"`
}

// InstrumentConfig is the yaml shape of one directory entry. Absent fields
// become absent options on the resulting instrument.
type InstrumentConfig struct {
	Symbol           string                      `yaml:"symbol" validate:"required"`
	UnderlyingSymbol string                      `yaml:"underlying_symbol"`
	Type             types.InstrumentType        `yaml:"type" validate:"required,oneof=FUTURE CONTINUOUS_FUTURE STOCK INDEX FOREX"`
	Expiration       *time.Time                  `yaml:"expiration"`
	DataSourceID     int64                       `yaml:"data_source_id"`
	DataSourceName   string                      `yaml:"data_source_name"`
	ContFut          *types.ContinuousFutureSpec `yaml:"cont_fut"`
	Sessions         types.SessionSchedule       `yaml:"sessions"`
}

// Instrument converts the config entry into a directory instrument.
func (c InstrumentConfig) Instrument() types.Instrument {
	instr := types.Instrument{
		Symbol:           c.Symbol,
		UnderlyingSymbol: c.UnderlyingSymbol,
		Type:             c.Type,
		DataSourceID:     c.DataSourceID,
		DataSourceName:   c.DataSourceName,
		Sessions:         c.Sessions,
	}

	if c.Expiration != nil {
		instr.Expiration = optional.Some(*c.Expiration)
	}

	if c.ContFut != nil {
		instr.ContFut = optional.Some(*c.ContFut)
	}

	return instr
}

// Config is the broker's startup configuration: the providers to register,
// the instruments to seed the directory with, and the expiration rules for
// Time-rollover front-contract resolution keyed by underlying symbol.
type Config struct {
	Providers       []ProviderConfig                   `yaml:"providers" validate:"required,min=1,dive"`
	Instruments     []InstrumentConfig                 `yaml:"instruments" validate:"dive"`
	ExpirationRules map[string]calendar.ExpirationRule `yaml:"expiration_rules" validate:"dive"`
}

// Parse decodes a yaml document into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	return Parse(data)
}

// Validate checks the structural constraints and the cross-field rules the
// struct tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	known := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		known[p.Name] = true
	}

	for _, instr := range c.Instruments {
		if instr.DataSourceName != "" && !known[instr.DataSourceName] {
			return errors.Newf(errors.ErrCodeInvalidConfiguration,
				"instrument %s references unknown data source %s", instr.Symbol, instr.DataSourceName)
		}

		if instr.ContFut != nil {
			if instr.Type != types.InstrumentTypeContinuousFuture {
				return errors.Newf(errors.ErrCodeInvalidConfiguration,
					"instrument %s carries a continuous-future spec but has type %s", instr.Symbol, instr.Type)
			}

			if err := validate.Struct(instr.ContFut); err != nil {
				return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err,
					"invalid continuous-future spec on %s", instr.Symbol)
			}
		}

		if instr.Type == types.InstrumentTypeContinuousFuture && instr.ContFut == nil {
			return errors.Newf(errors.ErrCodeInvalidConfiguration,
				"continuous future %s has no spec", instr.Symbol)
		}
	}

	for underlying, rule := range c.ExpirationRules {
		if err := validate.Struct(rule); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err,
				"invalid expiration rule for %s", underlying)
		}
	}

	return nil
}
