package bargein

import (
	"fmt"
	"strings"
	"time"

	"github.com/harunnryd/bargein/pkg/configutil"
	"github.com/harunnryd/bargein/pkg/errorsx"
	"github.com/harunnryd/bargein/pkg/interrupt"
	"github.com/spf13/viper"
)

const EnvPrefix = "BARGEIN"

type Config struct {
	Interrupt   InterruptConfig `mapstructure:"interrupt"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
	Privacy     PrivacyConfig   `mapstructure:"privacy"`
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	LogFormat   string          `mapstructure:"log_format"`
}

type InterruptConfig struct {
	ValidationWindowMS int `mapstructure:"validation_window_ms"`
	// Nil lists select the built-in word sets.
	IgnoreWords  []string `mapstructure:"ignore_words"`
	CommandWords []string `mapstructure:"command_words"`
}

type MetricsConfig struct {
	Addr        string `mapstructure:"addr"`
	Namespace   string `mapstructure:"namespace"`
	EventsPath  string `mapstructure:"events_path"`
	AsyncBuffer int    `mapstructure:"async_buffer"`
}

type PrivacyConfig struct {
	RedactPII bool `mapstructure:"redact_pii"`
}

// FilterConfig converts the file settings into an engine configuration.
func (c InterruptConfig) FilterConfig() interrupt.Config {
	return interrupt.Config{
		ValidationWindow: configutil.MillisValue(c.ValidationWindowMS, interrupt.DefaultValidationWindow),
		IgnoreWords:      configutil.StringsValue(c.IgnoreWords, nil),
		CommandWords:     configutil.StringsValue(c.CommandWords, nil),
	}
}

// Window is the configured validation window before the engine's floor is applied.
func (c InterruptConfig) Window() time.Duration {
	return configutil.MillisValue(c.ValidationWindowMS, interrupt.DefaultValidationWindow)
}

// LoadConfig reads path (YAML, JSON or TOML by extension) over built-in defaults.
// An empty path loads defaults and environment only. Environment variables use
// the BARGEIN_ prefix with dots replaced by underscores, e.g.
// BARGEIN_INTERRUPT_VALIDATION_WINDOW_MS.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("interrupt.validation_window_ms", 200)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.namespace", "bargein")
	v.SetDefault("metrics.events_path", "")
	v.SetDefault("metrics.async_buffer", 256)
	v.SetDefault("privacy.redact_pii", true)
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Lists have no default, so AutomaticEnv alone would never see them.
	_ = v.BindEnv("interrupt.ignore_words")
	_ = v.BindEnv("interrupt.command_words")

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errorsx.Wrap(fmt.Errorf("read config: %w", err), errorsx.ReasonConfigLoad)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errorsx.Wrap(fmt.Errorf("unmarshal: %w", err), errorsx.ReasonConfigLoad)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Interrupt.ValidationWindowMS < 0 {
		return errorsx.Wrap(fmt.Errorf("interrupt.validation_window_ms must not be negative"), errorsx.ReasonConfigInvalid)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "text", "json":
	default:
		return errorsx.Wrap(fmt.Errorf("log_format %q must be text or json", c.LogFormat), errorsx.ReasonConfigInvalid)
	}
	if c.Metrics.Addr != "" {
		if err := configutil.RequireString(c.Metrics.Namespace, "metrics.namespace"); err != nil {
			return errorsx.Wrap(err, errorsx.ReasonConfigInvalid)
		}
	}
	return nil
}
