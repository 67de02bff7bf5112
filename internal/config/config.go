// Package config loads and validates monitor configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"webmonitor/internal/monitor"
)

// TargetConfig is one entry of the monitor or do_not_monitor lists.
type TargetConfig struct {
	URL                string   `mapstructure:"url"`
	AccessibilityTexts []string `mapstructure:"accessibility_texts"`
}

// LoggingConfig controls the zap logger destination and verbosity.
type LoggingConfig struct {
	File         string `mapstructure:"file"`
	Development  bool   `mapstructure:"development"`
	ConsoleLevel string `mapstructure:"console_level"`
}

// StatusConfig controls the optional status/metrics HTTP server.
type StatusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// PolitenessConfig throttles outbound checks per host. A zero RPS disables
// throttling entirely.
type PolitenessConfig struct {
	PerHostRPS float64 `mapstructure:"per_host_rps"`
	Burst      int     `mapstructure:"burst"`
}

// Config captures all configuration knobs loaded via Viper. Loaded once at
// startup and treated as immutable afterwards.
type Config struct {
	WebhookURL               string           `mapstructure:"webhook_url"`
	SendAlerts               bool             `mapstructure:"send_alerts"`
	RetainLogs               bool             `mapstructure:"retain_logs"`
	CheckFileSize            bool             `mapstructure:"check_file_size"`
	MaxFileSizeMB            int              `mapstructure:"max_file_size_mb"`
	ConcurrentRequests       int              `mapstructure:"concurrent_requests"`
	TimeoutSeconds           int              `mapstructure:"timeout"`
	GlobalAccessibilityTexts []string         `mapstructure:"global_accessibility_texts"`
	NumRuns                  int              `mapstructure:"num_runs"`
	IterationDelaySeconds    int              `mapstructure:"iteration_delay"`
	UserAgent                string           `mapstructure:"user_agent"`
	Monitor                  []TargetConfig   `mapstructure:"monitor"`
	DoNotMonitor             []TargetConfig   `mapstructure:"do_not_monitor"`
	Logging                  LoggingConfig    `mapstructure:"logging"`
	Status                   StatusConfig     `mapstructure:"status"`
	Politeness               PolitenessConfig `mapstructure:"politeness"`
}

// Load builds a Config from the given file plus WEBMONITOR_ environment
// overrides. A malformed or invalid configuration is fatal: it is the only
// error class that prevents the run loop from starting.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WEBMONITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("send_alerts", false)
	v.SetDefault("retain_logs", true)
	v.SetDefault("check_file_size", false)
	v.SetDefault("max_file_size_mb", 2048)
	v.SetDefault("concurrent_requests", 10)
	v.SetDefault("timeout", 10)
	v.SetDefault("num_runs", 1)
	v.SetDefault("iteration_delay", 0)
	v.SetDefault("user_agent", "webmonitor/0.1")
	v.SetDefault("logging.file", "app.log")
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.console_level", "warn")
	v.SetDefault("status.enabled", false)
	v.SetDefault("status.addr", ":9090")
	v.SetDefault("politeness.per_host_rps", 0)
	v.SetDefault("politeness.burst", 1)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.MaxFileSizeMB, validation.Min(1)),
		validation.Field(&c.ConcurrentRequests, validation.Required, validation.Min(1)),
		validation.Field(&c.TimeoutSeconds, validation.Required, validation.Min(1)),
		validation.Field(&c.IterationDelaySeconds, validation.Min(0)),
		validation.Field(&c.Monitor, validation.Each(validation.By(validateTarget))),
		validation.Field(&c.Logging, validation.By(validateLogging)),
	)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.NumRuns < monitor.RunsUnbounded {
		return fmt.Errorf("invalid configuration: num_runs must be >= -1, got %d", c.NumRuns)
	}
	if c.SendAlerts && c.WebhookURL != "" {
		if err := validateHTTPURL(c.WebhookURL); err != nil {
			return fmt.Errorf("invalid configuration: webhook_url: %w", err)
		}
	}
	return nil
}

func validateTarget(value interface{}) error {
	tc, ok := value.(TargetConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a monitor target")
	}
	if tc.URL == "" {
		return validation.NewError("validation_empty_url", "target URL cannot be empty")
	}
	if err := validateHTTPURL(tc.URL); err != nil {
		return validation.NewError("validation_invalid_url", err.Error())
	}
	return nil
}

func validateLogging(value interface{}) error {
	lc, ok := value.(LoggingConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
	}
	return validation.ValidateStruct(&lc,
		validation.Field(&lc.File, validation.Required),
		validation.Field(&lc.ConsoleLevel,
			validation.Required,
			validation.In("debug", "info", "warn", "error"),
		),
	)
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("must be a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %q must use http or https scheme", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q must have a host", raw)
	}
	return nil
}

// Targets converts the monitor and do_not_monitor lists into the engine's
// target set. Excluded entries are listed but never dispatched.
func (c Config) Targets() []monitor.Target {
	targets := make([]monitor.Target, 0, len(c.Monitor)+len(c.DoNotMonitor))
	for _, tc := range c.Monitor {
		targets = append(targets, monitor.Target{
			URL:                tc.URL,
			AccessibilityTexts: tc.AccessibilityTexts,
		})
	}
	for _, tc := range c.DoNotMonitor {
		targets = append(targets, monitor.Target{
			URL:      tc.URL,
			Excluded: true,
		})
	}
	return targets
}

// Timeout converts the per-check timeout into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IterationDelay converts the inter-iteration delay into a duration.
func (c Config) IterationDelay() time.Duration {
	return time.Duration(c.IterationDelaySeconds) * time.Second
}

// MaxFileSizeBytes converts the log truncation threshold into bytes.
func (c Config) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}
