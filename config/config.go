package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the driver host configuration
type Config struct {
	Env           string `mapstructure:"env"`
	Port          string `mapstructure:"port"`
	LogLevel      string `mapstructure:"log_level"`
	Authorization string `mapstructure:"authorization"`
	GatewayURL    string `mapstructure:"gateway_url"`
	Host          Host   `mapstructure:"host"`
	Driver        Driver `mapstructure:"driver"`
	Redis         Redis  `mapstructure:"redis"`
	Events        Events `mapstructure:"events"`
}

type Host struct {
	DisplayName      string   `mapstructure:"display_name"`
	ReturnURLScheme  string   `mapstructure:"return_url_scheme"`
	InstalledSchemes []string `mapstructure:"installed_schemes"`
}

type Driver struct {
	ReturnGracePeriod time.Duration `mapstructure:"return_grace_period"`
	StateTTL          time.Duration `mapstructure:"state_ttl"`
	ConfigurationTTL  time.Duration `mapstructure:"configuration_ttl"`
	StateKeyFile      string        `mapstructure:"state_key_file"`
}

type Redis struct {
	URL string `mapstructure:"url"`
}

type Events struct {
	// Backend is "redis" to publish on Redis streams, anything else disables publishing
	Backend string `mapstructure:"backend"`
}

// Load reads configuration from an optional file and VENMO_* environment variables
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("VENMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("port", "9000")
	v.SetDefault("log_level", "info")
	v.SetDefault("authorization", "")
	v.SetDefault("gateway_url", "")

	v.SetDefault("host.display_name", "")
	v.SetDefault("host.return_url_scheme", "")
	v.SetDefault("host.installed_schemes", []string{"com.venmo.touch.v2"})

	v.SetDefault("driver.return_grace_period", 2*time.Second)
	v.SetDefault("driver.state_ttl", 15*time.Minute)
	v.SetDefault("driver.configuration_ttl", 5*time.Minute)
	v.SetDefault("driver.state_key_file", "")

	v.SetDefault("redis.url", "")
	v.SetDefault("events.backend", "none")
}

// Validate checks the settings a driver cannot run without
func (c *Config) Validate() error {
	var errs []error
	if c.Authorization == "" {
		errs = append(errs, errors.New("authorization is required"))
	}
	if c.Events.Backend == "redis" && c.Redis.URL == "" {
		errs = append(errs, errors.New("redis.url is required for the redis events backend"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Development reports whether the host runs outside production
func (c *Config) Development() bool {
	return c.Env == "local" || c.Env == "development"
}
