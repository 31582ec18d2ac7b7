// Package config loads likesd settings from an optional config file and
// LIKES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Cache drivers.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheTiered = "tiered"
)

// Config is the full likesd configuration.
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Store   StoreConfig   `mapstructure:"store"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type CacheConfig struct {
	Driver       string        `mapstructure:"driver"`
	Size         int           `mapstructure:"size"`
	LocalTTL     time.Duration `mapstructure:"local_ttl"` // tiered driver only
	AggregateTTL time.Duration `mapstructure:"aggregate_ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type SessionConfig struct {
	Salt           string `mapstructure:"salt"`
	DefaultAddress string `mapstructure:"default_address"`
}

type LogConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// New returns a viper instance with defaults and LIKES_ environment
// bindings, e.g. LIKES_STORE_DSN for store.dsn.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("likes")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LIKES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.request_timeout", 5*time.Second)

	v.SetDefault("store.driver", StoreSQLite)
	v.SetDefault("store.dsn", "likes.db")

	v.SetDefault("cache.driver", CacheMemory)
	v.SetDefault("cache.size", 10000)
	v.SetDefault("cache.local_ttl", 30*time.Second)
	v.SetDefault("cache.aggregate_ttl", 30*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "likes:")

	// Unset keys must still have a default for AutomaticEnv to see them
	// during Unmarshal.
	v.SetDefault("session.salt", "")
	v.SetDefault("session.default_address", "0.0.0.0")

	v.SetDefault("log.mode", "dev")
	v.SetDefault("log.level", "")
}

// Load reads file (or likes.{toml,yaml,json} in the working directory when
// file is empty), applies environment overrides and validates the result.
// A missing default config file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks driver names and required settings.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite, StorePostgres:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store.dsn is required for driver %q", c.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}

	switch c.Cache.Driver {
	case CacheMemory, CacheRedis, CacheTiered:
	default:
		errs = append(errs, fmt.Errorf("unknown cache.driver %q", c.Cache.Driver))
	}
	if c.Cache.Size <= 0 {
		errs = append(errs, errors.New("cache.size must be positive"))
	}
	if c.Cache.AggregateTTL < 0 || c.Cache.LocalTTL < 0 {
		errs = append(errs, errors.New("cache TTLs must not be negative"))
	}

	if c.Session.Salt == "" {
		errs = append(errs, errors.New("session.salt is required"))
	} else if len(c.Session.Salt) > 64 {
		errs = append(errs, errors.New("session.salt must be at most 64 bytes"))
	}

	return errors.Join(errs...)
}
