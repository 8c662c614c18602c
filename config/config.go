// Package config loads and validates the host's configuration, following
// the precedence and layering the marmos91-dittofs pkg/config package uses:
// CLI flag > environment variable > YAML file > built-in default. Grounded
// on that package's Config/Load/setupViper/ApplyDefaults/Validate split,
// adapted from DittoFS's storage-server settings to MissionRPC's own
// listen address, quota and telemetry settings.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the full MissionRPC host configuration.
type Config struct {
	Listen      ListenConfig    `mapstructure:"listen"`
	Quota       QuotaConfig     `mapstructure:"quota"`
	Activity    ActivityConfig  `mapstructure:"activity"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	CleanupTick time.Duration   `mapstructure:"cleanup_tick" validate:"required,gt=0"`
}

// ListenConfig configures the TCP transport's accept address.
type ListenConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

// QuotaConfig describes how much scheduling work one client may have in
// flight at once, the MissionRPC analogue of the teacher's ResourceQuota.
// It is loaded and validated only; neither the kernel nor the scheduler
// reads or enforces it.
type QuotaConfig struct {
	MaxPendingContinuations int `mapstructure:"max_pending_continuations" validate:"required,gt=0"`
	MaxYieldsPerCall        int `mapstructure:"max_yields_per_call" validate:"required,gt=0"`
}

// ActivityConfig names a default activity context for new clients. It is
// loaded and validated only; the transport does not read it and runs
// every connection in activity.Flight.
type ActivityConfig struct {
	DefaultContext string `mapstructure:"default_context" validate:"required"`
}

// TelemetryConfig toggles OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" validate:"required_if=Enabled true"`
	SampleRate   float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// RateLimitConfig is the default per-client admission budget.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"required,gt=0"`
	BurstSize         int `mapstructure:"burst_size" validate:"gte=0"`
}

// Default returns the built-in baseline configuration.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{Address: "127.0.0.1:50051"},
		Quota: QuotaConfig{
			MaxPendingContinuations: 256,
			MaxYieldsPerCall:        1000,
		},
		Activity: ActivityConfig{DefaultContext: "Flight"},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 600,
			BurstSize:         50,
		},
		CleanupTick: 30 * time.Second,
	}
}

// Load reads configuration from, in ascending precedence: the built-in
// default, a YAML file at configPath (if non-empty and present),
// MISSIONRPC_* environment variables, then flagOverrides (already parsed
// by the caller's flag set, nil-safe).
func Load(configPath string, flagOverrides map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("MISSIONRPC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	for key, val := range flagOverrides {
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate runs struct-tag validation over cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// setDefaults seeds v with every field of d under its mapstructure key, so
// Unmarshal always has a complete baseline even when no file or env var
// supplies a given key.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("listen.address", d.Listen.Address)
	v.SetDefault("quota.max_pending_continuations", d.Quota.MaxPendingContinuations)
	v.SetDefault("quota.max_yields_per_call", d.Quota.MaxYieldsPerCall)
	v.SetDefault("activity.default_context", d.Activity.DefaultContext)
	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.otlp_endpoint", d.Telemetry.OTLPEndpoint)
	v.SetDefault("telemetry.sample_rate", d.Telemetry.SampleRate)
	v.SetDefault("rate_limit.requests_per_minute", d.RateLimit.RequestsPerMinute)
	v.SetDefault("rate_limit.burst_size", d.RateLimit.BurstSize)
	v.SetDefault("cleanup_tick", d.CleanupTick)
}
