package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the gateway configuration, loaded from an optional config file
// plus BANKLINK_* environment variables.
type Config struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	UpstreamBaseURL string        `mapstructure:"upstream_base_url"`
	JWTSecret       string        `mapstructure:"jwt_secret"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	ConfirmTTL      time.Duration `mapstructure:"confirm_ttl"`
	CORSOrigin      string        `mapstructure:"cors_origin"`
	DemoMode        bool          `mapstructure:"demo_mode"`

	// Transfer submission rate limit.
	TransferRateMax    int           `mapstructure:"transfer_rate_max"`
	TransferRateWindow time.Duration `mapstructure:"transfer_rate_window"`
}

// Load reads configuration. configPath may be empty, in which case only
// defaults and environment variables apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BANKLINK")
	v.AutomaticEnv()

	// Empty defaults keep env-only keys visible to Unmarshal.
	v.SetDefault("jwt_secret", "")
	v.SetDefault("upstream_base_url", "")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("confirm_ttl", 5*time.Minute)
	v.SetDefault("cors_origin", "*")
	v.SetDefault("demo_mode", false)
	v.SetDefault("transfer_rate_max", 60)
	v.SetDefault("transfer_rate_window", time.Minute)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt_secret is required (set BANKLINK_JWT_SECRET)")
	}
	if !cfg.DemoMode && cfg.UpstreamBaseURL == "" {
		return nil, errors.New("upstream_base_url is required unless demo_mode is set")
	}
	return &cfg, nil
}
