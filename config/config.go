package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Gateways GatewaysConfig `mapstructure:"gateways"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GatewayConfig holds one payment provider's credentials.
// Constructed once at startup and immutable thereafter.
type GatewayConfig struct {
	APIKey        string `mapstructure:"api_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	BaseURL       string `mapstructure:"base_url"` // override for testing; adapter default when empty
}

// GatewaysConfig bundles every provider's credentials plus routing settings.
type GatewaysConfig struct {
	Wayl       GatewayConfig `mapstructure:"wayl"`
	ZainDirect GatewayConfig `mapstructure:"zain_direct"`

	// Amounts strictly above this route to the large-amount provider.
	LargeAmountThreshold int64 `mapstructure:"large_amount_threshold"`

	// WebhookBaseURL is this service's public callback endpoint; the provider
	// query parameter is appended per adapter.
	WebhookBaseURL string `mapstructure:"webhook_base_url"`
	// RedirectionURL is where the gateway sends the payer after checkout.
	RedirectionURL string `mapstructure:"redirection_url"`

	// Timeout bounds outbound session-creation calls.
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: PAYCORE_.
// Nested keys use underscore: PAYCORE_DATABASE_HOST, PAYCORE_GATEWAYS_WAYL_API_KEY, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "payment_core")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("gateways.wayl.api_key", "")
	v.SetDefault("gateways.wayl.webhook_secret", "")
	v.SetDefault("gateways.wayl.base_url", "")
	v.SetDefault("gateways.zain_direct.api_key", "")
	v.SetDefault("gateways.zain_direct.webhook_secret", "")
	v.SetDefault("gateways.zain_direct.base_url", "")
	v.SetDefault("gateways.large_amount_threshold", 500000)
	v.SetDefault("gateways.webhook_base_url", "")
	v.SetDefault("gateways.redirection_url", "")
	v.SetDefault("gateways.timeout", "15s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: PAYCORE_GATEWAYS_WAYL_API_KEY -> gateways.wayl.api_key
	v.SetEnvPrefix("PAYCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate fails fast on missing gateway credentials. Secrets must be caught
// at startup, not at first webhook.
func (c *Config) Validate() error {
	var missing []string
	if c.Gateways.Wayl.APIKey == "" {
		missing = append(missing, "gateways.wayl.api_key")
	}
	if c.Gateways.Wayl.WebhookSecret == "" {
		missing = append(missing, "gateways.wayl.webhook_secret")
	}
	if c.Gateways.ZainDirect.APIKey == "" {
		missing = append(missing, "gateways.zain_direct.api_key")
	}
	if c.Gateways.ZainDirect.WebhookSecret == "" {
		missing = append(missing, "gateways.zain_direct.webhook_secret")
	}
	if c.Gateways.WebhookBaseURL == "" {
		missing = append(missing, "gateways.webhook_base_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.Gateways.LargeAmountThreshold <= 0 {
		return fmt.Errorf("gateways.large_amount_threshold must be positive, got %d", c.Gateways.LargeAmountThreshold)
	}
	return nil
}
