package config

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/goliatone/go-alerts/pkg/domain"
	"github.com/goliatone/go-config/cfgx"
)

// Config captures module-level configuration knobs. Feature packages
// (preferences, storage, commands) pull from these nested structs.
type Config struct {
	Defaults   DefaultsConfig   `mapstructure:"defaults" json:"defaults"`
	Evaluation EvaluationConfig `mapstructure:"evaluation" json:"evaluation"`
}

// DefaultsConfig sets the baseline alert values used when no stored
// preference applies.
type DefaultsConfig struct {
	VibeIntensity     string `mapstructure:"vibe_intensity" json:"vibe_intensity"`
	DndMode           string `mapstructure:"dnd_mode" json:"dnd_mode"`
	AlternativeDesign bool   `mapstructure:"alternative_design" json:"alternative_design"`
	VibeDelay         bool   `mapstructure:"vibe_delay" json:"vibe_delay"`
}

// EvaluationConfig scopes evaluation behaviors.
type EvaluationConfig struct {
	// Timezone applies to quiet-hours windows that carry no timezone of
	// their own.
	Timezone string `mapstructure:"timezone" json:"timezone"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Defaults: DefaultsConfig{
			VibeIntensity:     string(domain.DefaultVibeIntensity),
			DndMode:           string(domain.DefaultDndNotificationMode),
			AlternativeDesign: false,
			VibeDelay:         false,
		},
		Evaluation: EvaluationConfig{
			Timezone: "UTC",
		},
	}
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	if _, err := domain.ParseVibeIntensity(c.Defaults.VibeIntensity); err != nil {
		return fmt.Errorf("defaults.vibe_intensity: %w", err)
	}
	if _, err := domain.ParseDndNotificationMode(c.Defaults.DndMode); err != nil {
		return fmt.Errorf("defaults.dnd_mode: %w", err)
	}
	return nil
}

// BaselineVibeIntensity returns the configured default vibe intensity.
func (c Config) BaselineVibeIntensity() domain.VibeIntensity {
	if intensity, err := domain.ParseVibeIntensity(c.Defaults.VibeIntensity); err == nil {
		return intensity
	}
	return domain.DefaultVibeIntensity
}

// BaselineDndMode returns the configured default DND notification mode.
func (c Config) BaselineDndMode() domain.DndNotificationMode {
	if mode, err := domain.ParseDndNotificationMode(c.Defaults.DndMode); err == nil {
		return mode
	}
	return domain.DefaultDndNotificationMode
}

// Load decodes arbitrary input (struct, map, cfg struct) using cfgx helpers.
// While cfgx.Build still returns zero values, we fallback to a lightweight
// decoder to keep smoke tests meaningful. Once cfgx is fully implemented we
// can drop the fallback.
func Load(input any, opts ...LoadOption) (Config, error) {
	settings := loadOptions{}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg, err := cfgx.Build(input, settings.buildOpts...)
	if err != nil {
		return Config{}, err
	}

	if isZero(cfg) {
		if err := decodeFallback(input, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg = cfg.withDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadOption lets callers amend cfgx build options.
type LoadOption func(*loadOptions)

type loadOptions struct {
	buildOpts []cfgx.Option[Config]
}

// WithBuildOptions forwards cfgx options (duration hooks, preprocessors, etc.).
func WithBuildOptions(opts ...cfgx.Option[Config]) LoadOption {
	return func(lo *loadOptions) {
		lo.buildOpts = append(lo.buildOpts, opts...)
	}
}

func (c Config) withDefaults() Config {
	defaults := Defaults()

	if c.Defaults.VibeIntensity == "" {
		c.Defaults.VibeIntensity = defaults.Defaults.VibeIntensity
	}
	if c.Defaults.DndMode == "" {
		c.Defaults.DndMode = defaults.Defaults.DndMode
	}
	if c.Evaluation.Timezone == "" {
		c.Evaluation.Timezone = defaults.Evaluation.Timezone
	}
	return c
}

func isZero(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func decodeFallback(input any, cfg *Config) error {
	switch v := input.(type) {
	case nil:
		return nil
	case Config:
		*cfg = v
		return nil
	case *Config:
		if v != nil {
			*cfg = *v
		}
		return nil
	case map[string]any:
		return decodeMap(v, cfg)
	default:
		return fmt.Errorf("unsupported config input type: %T", input)
	}
}

func decodeMap(input map[string]any, cfg *Config) error {
	if input == nil {
		return nil
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, cfg)
}
