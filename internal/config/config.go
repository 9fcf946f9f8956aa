// Package config loads the completepeaker settings from defaults, an
// optional YAML file, COMPLETEPEAKER_* environment variables and command
// line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-peak/measure/peak"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "COMPLETEPEAKER"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the effective tool configuration.
type Config struct {
	RTHalfWindow   float64 `mapstructure:"rt_half_window" yaml:"rt_half_window"`
	FractionOfApex float64 `mapstructure:"fraction_of_apex" yaml:"fraction_of_apex"`
	MaxExtension   int     `mapstructure:"max_extension" yaml:"max_extension"`
	Workers        int     `mapstructure:"workers" yaml:"workers"`

	Input       string `mapstructure:"input" yaml:"input"`
	Output      string `mapstructure:"output" yaml:"output"`
	Detailed    bool   `mapstructure:"detailed" yaml:"detailed"`
	DBPath      string `mapstructure:"db_path" yaml:"db_path"`
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`
	PlotDir     string `mapstructure:"plot_dir" yaml:"plot_dir"`

	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
	Debug   bool `mapstructure:"debug" yaml:"debug"`

	Serve ServeConfig `mapstructure:"serve" yaml:"serve"`
}

// ServeConfig configures the HTTP endpoint.
type ServeConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"rt-half-window":   "rt_half_window",
	"fraction-of-apex": "fraction_of_apex",
	"max-extension":    "max_extension",
	"workers":          "workers",
	"input":            "input",
	"output":           "output",
	"detailed":         "detailed",
	"db":               "db_path",
	"metrics-file":     "metrics_file",
	"plot-dir":         "plot_dir",
	"verbose":          "verbose",
	"debug":            "debug",
	"addr":             "serve.addr",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rt_half_window", peak.DefaultHalfWindow)
	v.SetDefault("fraction_of_apex", peak.DefaultFractionOfApex)
	v.SetDefault("max_extension", peak.DefaultMaxExtension)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("input", "")
	v.SetDefault("output", "")
	v.SetDefault("detailed", false)
	v.SetDefault("db_path", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("plot_dir", "")
	v.SetDefault("verbose", false)
	v.SetDefault("debug", false)
	v.SetDefault("serve.addr", ":8080")
}

// Load resolves the configuration. path may be empty; flags may be nil.
// Only flags the user actually set override file and environment values.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %q failed: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Params returns the detection parameters carried by c.
func (c *Config) Params() peak.Params {
	return peak.NewParams(
		peak.WithHalfWindow(c.RTHalfWindow),
		peak.WithFractionOfApex(c.FractionOfApex),
		peak.WithMaxExtension(c.MaxExtension),
	)
}

// Validate checks the parameter domains and the worker count.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1: %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// Dump renders c as YAML.
func (c *Config) Dump() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("rendering config failed: %w", err)
	}
	return out, nil
}
