package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/goliatone/go-config/cfgx"
)

// Config captures module-level configuration knobs. Feature packages (sidebars,
// localization, storage, etc.) pull from these nested structs.
type Config struct {
	Localization LocalizationConfig `mapstructure:"localization" json:"localization"`
	Blocks       BlocksConfig       `mapstructure:"blocks" json:"blocks"`
	Sidebars     SidebarsConfig     `mapstructure:"sidebars" json:"sidebars"`
	Storage      StorageConfig      `mapstructure:"storage" json:"storage"`
	Logging      LoggingConfig      `mapstructure:"logging" json:"logging"`
	Realtime     RealtimeConfig     `mapstructure:"realtime" json:"realtime"`
}

// LocalizationConfig controls the default locale and translation caching.
type LocalizationConfig struct {
	DefaultLocale string   `mapstructure:"default_locale" json:"default_locale"`
	RTLLocales    []string `mapstructure:"rtl_locales" json:"rtl_locales"`
	CacheSize     int      `mapstructure:"cache_size" json:"cache_size"`
}

// BlocksConfig scopes block validation on save.
type BlocksConfig struct {
	// StrictNames rejects blocks whose type is not registered.
	StrictNames bool `mapstructure:"strict_names" json:"strict_names"`
}

// SidebarsConfig bounds sidebar contents and seeds layered widget settings.
type SidebarsConfig struct {
	MaxWidgets int `mapstructure:"max_widgets" json:"max_widgets"`
	// TypeDefaults maps an id_base to the settings every widget of that type starts from.
	TypeDefaults map[string]map[string]any `mapstructure:"type_defaults" json:"type_defaults"`
	// SidebarDefaults maps a sidebar id to settings shared by its widgets.
	SidebarDefaults map[string]map[string]any `mapstructure:"sidebar_defaults" json:"sidebar_defaults"`
	// Template overrides the markup used to render a sidebar to HTML.
	Template string `mapstructure:"template" json:"template"`
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver" json:"driver"`
	DSN    string `mapstructure:"dsn" json:"dsn"`
}

// LoggingConfig sets the minimum level of the basic logger.
type LoggingConfig struct {
	Level string `mapstructure:"level" json:"level"`
}

// RealtimeConfig controls optional broadcaster integration.
type RealtimeConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

// Storage drivers.
const (
	StorageDriverMemory = "memory"
	StorageDriverSQLite = "sqlite"
)

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Localization: LocalizationConfig{
			DefaultLocale: "en",
			RTLLocales:    []string{"ar", "fa", "he", "ur"},
			CacheSize:     32,
		},
		Sidebars: SidebarsConfig{
			MaxWidgets: 100,
		},
		Storage: StorageConfig{
			Driver: StorageDriverMemory,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Realtime: RealtimeConfig{
			Enabled: true,
		},
	}
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	if c.Localization.DefaultLocale == "" {
		return errors.New("localization.default_locale is required")
	}
	if c.Localization.CacheSize <= 0 {
		return fmt.Errorf("localization.cache_size must be > 0")
	}
	if c.Sidebars.MaxWidgets < 0 {
		return fmt.Errorf("sidebars.max_widgets must be >= 0")
	}
	switch c.Storage.Driver {
	case StorageDriverMemory:
	case StorageDriverSQLite:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	return nil
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

	if c.Localization.DefaultLocale == "" {
		c.Localization.DefaultLocale = defaults.Localization.DefaultLocale
	}
	if c.Localization.RTLLocales == nil {
		c.Localization.RTLLocales = defaults.Localization.RTLLocales
	}
	if c.Localization.CacheSize == 0 {
		c.Localization.CacheSize = defaults.Localization.CacheSize
	}
	if c.Sidebars.MaxWidgets == 0 {
		c.Sidebars.MaxWidgets = defaults.Sidebars.MaxWidgets
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = defaults.Storage.Driver
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if !c.Realtime.Enabled {
		c.Realtime.Enabled = defaults.Realtime.Enabled
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
