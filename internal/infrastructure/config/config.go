package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the application configuration, loaded from config.yaml with
// environment overrides (DRIFTCHAT_* variables take precedence).
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Crypto   CryptoConfig   `mapstructure:"crypto"`
	AI       AIConfig       `mapstructure:"ai"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, production
}

// Addr returns the bind address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig configures the relational store.
type DatabaseConfig struct {
	Type string `mapstructure:"type"` // postgres, sqlite
	DSN  string `mapstructure:"dsn"`
}

// RedisConfig configures the CVR snapshot cache and session store.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// CryptoConfig carries the base64 master key used to derive the API-key
// cipher key. Must decode to exactly 64 bytes; anything else is fatal at
// startup.
type CryptoConfig struct {
	MasterKey string `mapstructure:"master_key"`
}

// AIConfig sets the fallback model used when a user has no active-model row.
type AIConfig struct {
	DefaultProvider string `mapstructure:"default_provider"`
	DefaultModel    string `mapstructure:"default_model"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config.yaml from the working directory or /etc/driftchat,
// applies defaults, and overlays environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/driftchat")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "production")
	v.SetDefault("database.type", "postgres")
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("ai.default_provider", "openai")
	v.SetDefault("ai.default_model", "gpt-4.1-mini")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetEnvPrefix("DRIFTCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// MASTER_KEY is conventionally unprefixed in deployment environments.
	_ = v.BindEnv("crypto.master_key", "MASTER_KEY", "DRIFTCHAT_CRYPTO_MASTER_KEY")
	_ = v.BindEnv("database.dsn", "DATABASE_URL", "DRIFTCHAT_DATABASE_DSN")
	_ = v.BindEnv("redis.url", "REDIS_URL", "DRIFTCHAT_REDIS_URL")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; env vars can carry everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	if cfg.Crypto.MasterKey == "" {
		return nil, fmt.Errorf("crypto.master_key (MASTER_KEY) is required")
	}

	return &cfg, nil
}
