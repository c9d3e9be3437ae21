// Package config loads the tokenflow project file.
package config

import (
	"time"

	"github.com/alexisbeaulieu97/tokenflow/internal/generator"
	"github.com/alexisbeaulieu97/tokenflow/internal/token"
)

// Config represents the full tokenflow project document.
type Config struct {
	Version     string         `yaml:"version" toml:"version" validate:"required,semver"`
	Name        string         `yaml:"name" toml:"name" validate:"required,min=1,max=100"`
	Description string         `yaml:"description,omitempty" toml:"description"`
	Palette     Palette        `yaml:"palette" toml:"palette"`
	Preview     PreviewConfig  `yaml:"preview,omitempty" toml:"preview"`
	Server      ServerConfig   `yaml:"server,omitempty" toml:"server"`
	Snapshots   SnapshotConfig `yaml:"snapshots,omitempty" toml:"snapshots"`
	Logging     LoggingConfig  `yaml:"logging,omitempty" toml:"logging"`
}

// Palette holds the base inputs the generators expand.
type Palette struct {
	Colors     map[string]string `yaml:"colors" toml:"colors" validate:"omitempty,dive,keys,token_name,endkeys,hexcolor"`
	Spacing    SpacingConfig     `yaml:"spacing,omitempty" toml:"spacing"`
	Typography TypographyConfig  `yaml:"typography,omitempty" toml:"typography"`
}

type SpacingConfig struct {
	Base  string `yaml:"base,omitempty" toml:"base" validate:"omitempty,css_length"`
	Scale string `yaml:"scale,omitempty" toml:"scale" validate:"omitempty,spacing_scale"`
}

type TypographyConfig struct {
	Base    string `yaml:"base,omitempty" toml:"base" validate:"omitempty,css_length"`
	Pairing string `yaml:"pairing,omitempty" toml:"pairing" validate:"omitempty,type_pairing"`
}

// PreviewConfig tunes the preview engine and change bridge.
type PreviewConfig struct {
	FrameIntervalMS int    `yaml:"frame_interval_ms,omitempty" toml:"frame_interval_ms" validate:"omitempty,min=1,max=1000"`
	BudgetMS        int    `yaml:"budget_ms,omitempty" toml:"budget_ms" validate:"omitempty,min=1,max=10000"`
	SampleCapacity  int    `yaml:"sample_capacity,omitempty" toml:"sample_capacity" validate:"omitempty,min=1,max=10000"`
	StylePrefix     string `yaml:"style_prefix,omitempty" toml:"style_prefix" validate:"omitempty,token_prefix"`
	AutoCorrect     bool   `yaml:"auto_correct,omitempty" toml:"auto_correct"`
	ContrastPairing string `yaml:"contrast_pairing,omitempty" toml:"contrast_pairing" validate:"omitempty,oneof=all scoped"`
	CascadeDepth    int    `yaml:"cascade_depth,omitempty" toml:"cascade_depth" validate:"omitempty,min=1,max=16"`
	RelayTimeoutMS  int    `yaml:"relay_timeout_ms,omitempty" toml:"relay_timeout_ms" validate:"omitempty,min=1,max=60000"`
}

type ServerConfig struct {
	Addr string `yaml:"addr,omitempty" toml:"addr" validate:"omitempty,hostname_port"`
	// UpdateRate caps write requests per second; UpdateBurst is the bucket size.
	UpdateRate  float64 `yaml:"update_rate,omitempty" toml:"update_rate" validate:"omitempty,gt=0,lte=10000"`
	UpdateBurst int     `yaml:"update_burst,omitempty" toml:"update_burst" validate:"omitempty,min=1,max=100000"`
}

type SnapshotConfig struct {
	Dir string `yaml:"dir,omitempty" toml:"dir"`
}

type LoggingConfig struct {
	Level string `yaml:"level,omitempty" toml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Human bool   `yaml:"human,omitempty" toml:"human"`
}

// Defaults.
const (
	DefaultFrameIntervalMS = 16
	DefaultBudgetMS        = 100
	DefaultSampleCapacity  = 100
	DefaultCascadeDepth    = 1
	DefaultContrastPairing = "all"
	DefaultRelayTimeoutMS  = 5000
	DefaultAddr            = ":8080"
	DefaultUpdateRate      = 60
	DefaultUpdateBurst     = 120
	DefaultSnapshotDir     = ".tokenflow/snapshots"
	DefaultLogLevel        = "info"
)

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.Palette.Spacing.Base == "" {
		c.Palette.Spacing.Base = generator.DefaultSpacingBase
	}
	if c.Palette.Spacing.Scale == "" {
		c.Palette.Spacing.Scale = generator.DefaultSpacingScale
	}
	if c.Palette.Typography.Base == "" {
		c.Palette.Typography.Base = generator.DefaultTypographyBase
	}
	if c.Palette.Typography.Pairing == "" {
		c.Palette.Typography.Pairing = generator.DefaultPairing
	}

	p := &c.Preview
	if p.FrameIntervalMS == 0 {
		p.FrameIntervalMS = DefaultFrameIntervalMS
	}
	if p.BudgetMS == 0 {
		p.BudgetMS = DefaultBudgetMS
	}
	if p.SampleCapacity == 0 {
		p.SampleCapacity = DefaultSampleCapacity
	}
	if p.StylePrefix == "" {
		p.StylePrefix = token.DefaultStylePrefix
	}
	if p.CascadeDepth == 0 {
		p.CascadeDepth = DefaultCascadeDepth
	}
	if p.ContrastPairing == "" {
		p.ContrastPairing = DefaultContrastPairing
	}
	if p.RelayTimeoutMS == 0 {
		p.RelayTimeoutMS = DefaultRelayTimeoutMS
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.UpdateRate == 0 {
		c.Server.UpdateRate = DefaultUpdateRate
	}
	if c.Server.UpdateBurst == 0 {
		c.Server.UpdateBurst = DefaultUpdateBurst
	}
	if c.Snapshots.Dir == "" {
		c.Snapshots.Dir = DefaultSnapshotDir
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

// BaseInputs converts the palette section into generator inputs. Roles that
// are not listed are filled by the color generator.
func (c *Config) BaseInputs() generator.BaseInputs {
	colors := make(map[string]string, len(c.Palette.Colors))
	for role, value := range c.Palette.Colors {
		colors[role] = value
	}
	return generator.BaseInputs{
		Colors:     colors,
		Spacing:    generator.SpacingInput{Base: c.Palette.Spacing.Base, Scale: c.Palette.Spacing.Scale},
		Typography: generator.TypographyInput{Base: c.Palette.Typography.Base, Pairing: c.Palette.Typography.Pairing},
	}
}

func (p PreviewConfig) FrameInterval() time.Duration {
	return time.Duration(p.FrameIntervalMS) * time.Millisecond
}

func (p PreviewConfig) Budget() time.Duration {
	return time.Duration(p.BudgetMS) * time.Millisecond
}

func (p PreviewConfig) RelayTimeout() time.Duration {
	return time.Duration(p.RelayTimeoutMS) * time.Millisecond
}

// Default returns a configuration describing the built-in safe palette.
func Default() *Config {
	cfg := &Config{Version: "1.0.0", Name: "tokenflow", Palette: Palette{Colors: generator.DefaultInputs().Colors}}
	cfg.ApplyDefaults()
	return cfg
}
