// Package config loads process configuration from a YAML file and
// CLAIMPACKET_* environment variables.
//
// Priority, highest first: flags bound by the caller, environment, config
// file, defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gompdf/claimpacket/internal/cache"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. CLAIMPACKET_SERVER_ADDR
const EnvPrefix = "CLAIMPACKET"

// Config is the full process configuration
type Config struct {
	Server  ServerConf  `mapstructure:"server" yaml:"server"`
	Log     LogConf     `mapstructure:"log" yaml:"log"`
	Store   StoreConf   `mapstructure:"store" yaml:"store"`
	Storage StorageConf `mapstructure:"storage" yaml:"storage"`
	Cache   CacheConf   `mapstructure:"cache" yaml:"cache"`
	Packet  PacketConf  `mapstructure:"packet" yaml:"packet"`

	// Source is the config file that was read, if any
	Source string `mapstructure:"-" yaml:"-"`
}

type ServerConf struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	JWTSecret      string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	ShutdownGrace  time.Duration `mapstructure:"shutdown_grace" yaml:"shutdown_grace"`
}

type LogConf struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// StoreConf selects the claim record database. Driver is one of sqlite,
// mysql or postgres.
type StoreConf struct {
	Driver   string `mapstructure:"driver" yaml:"driver"`
	DSN      string `mapstructure:"dsn" yaml:"dsn"`
	Migrate  bool   `mapstructure:"migrate" yaml:"migrate"`
	MaxConns int32  `mapstructure:"max_conns" yaml:"max_conns"`
}

// StorageConf locates evidence bytes. BaseURL wins over Dir.
type StorageConf struct {
	BaseURL       string        `mapstructure:"base_url" yaml:"base_url"`
	Bucket        string        `mapstructure:"bucket" yaml:"bucket"`
	Dir           string        `mapstructure:"dir" yaml:"dir"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Retries       int           `mapstructure:"retries" yaml:"retries"`
	MaxBytes      int64         `mapstructure:"max_bytes" yaml:"max_bytes"`
	RatePerSecond float64       `mapstructure:"rate_per_second" yaml:"rate_per_second"`
	Burst         int           `mapstructure:"burst" yaml:"burst"`
	// AllowedHosts are extra hosts absolute evidence URLs may point at
	AllowedHosts []string `mapstructure:"allowed_hosts" yaml:"allowed_hosts"`
}

// CacheConf selects the evidence byte cache: memory, redis or none
type CacheConf struct {
	Backend string          `mapstructure:"backend" yaml:"backend"`
	TTL     time.Duration   `mapstructure:"ttl" yaml:"ttl"`
	Redis   cache.RedisConf `mapstructure:"redis" yaml:"redis"`
}

type PacketConf struct {
	PageSize          string `mapstructure:"page_size" yaml:"page_size"`
	WrapMode          string `mapstructure:"wrap_mode" yaml:"wrap_mode"`
	PrefetchWindow    int    `mapstructure:"prefetch_window" yaml:"prefetch_window"`
	FetchRetries      int    `mapstructure:"fetch_retries" yaml:"fetch_retries"`
	MaxImageDimension int    `mapstructure:"max_image_dimension" yaml:"max_image_dimension"`
	MaxImagePixels    int64  `mapstructure:"max_image_pixels" yaml:"max_image_pixels"`
	FontRegular       string `mapstructure:"font_regular" yaml:"font_regular"`
	FontBold          string `mapstructure:"font_bold" yaml:"font_bold"`
	Author            string `mapstructure:"author" yaml:"author"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Server: ServerConf{
			Addr:           ":8080",
			RequestTimeout: 60 * time.Second,
			ShutdownGrace:  10 * time.Second,
		},
		Log: LogConf{Level: "info", Format: "json"},
		Store: StoreConf{
			Driver:   "sqlite",
			DSN:      "claims.db",
			MaxConns: 10,
		},
		Storage: StorageConf{
			Bucket:   "claim-evidence",
			Dir:      ".",
			Timeout:  20 * time.Second,
			Retries:  0,
			MaxBytes: 25 << 20,
		},
		Cache: CacheConf{
			Backend: "memory",
			TTL:     10 * time.Minute,
			Redis:   cache.RedisConf{Addr: "localhost:6379", Prefix: "claimpacket:"},
		},
		Packet: PacketConf{
			PageSize:          "letter",
			WrapMode:          "chars",
			PrefetchWindow:    4,
			FetchRetries:      2,
			MaxImageDimension: 2400,
			MaxImagePixels:    40_000_000,
		},
	}
}

// New returns a viper instance with defaults and environment binding
// applied. Callers may bind flags onto it before Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (or ./claimpacket.yaml when path is empty and the file
// exists) into v and decodes the result
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("claimpacket")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated fields
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	switch c.Cache.Backend {
	case "memory", "redis", "none", "":
	default:
		return fmt.Errorf("config: unknown cache backend %q", c.Cache.Backend)
	}
	switch strings.ToLower(c.Packet.PageSize) {
	case "letter", "a4", "legal":
	default:
		return fmt.Errorf("config: unknown page size %q", c.Packet.PageSize)
	}
	switch c.Packet.WrapMode {
	case "chars", "metrics":
	default:
		return fmt.Errorf("config: unknown wrap mode %q", c.Packet.WrapMode)
	}
	if c.Packet.PrefetchWindow < 1 {
		return fmt.Errorf("config: prefetch_window must be at least 1")
	}
	return nil
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.jwt_secret", d.Server.JWTSecret)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("server.shutdown_grace", d.Server.ShutdownGrace)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("store.migrate", d.Store.Migrate)
	v.SetDefault("store.max_conns", d.Store.MaxConns)

	v.SetDefault("storage.base_url", d.Storage.BaseURL)
	v.SetDefault("storage.bucket", d.Storage.Bucket)
	v.SetDefault("storage.dir", d.Storage.Dir)
	v.SetDefault("storage.timeout", d.Storage.Timeout)
	v.SetDefault("storage.retries", d.Storage.Retries)
	v.SetDefault("storage.max_bytes", d.Storage.MaxBytes)
	v.SetDefault("storage.rate_per_second", d.Storage.RatePerSecond)
	v.SetDefault("storage.burst", d.Storage.Burst)
	v.SetDefault("storage.allowed_hosts", d.Storage.AllowedHosts)

	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.redis.addr", d.Cache.Redis.Addr)
	v.SetDefault("cache.redis.password", d.Cache.Redis.Password)
	v.SetDefault("cache.redis.db", d.Cache.Redis.DB)
	v.SetDefault("cache.redis.prefix", d.Cache.Redis.Prefix)

	v.SetDefault("packet.page_size", d.Packet.PageSize)
	v.SetDefault("packet.wrap_mode", d.Packet.WrapMode)
	v.SetDefault("packet.prefetch_window", d.Packet.PrefetchWindow)
	v.SetDefault("packet.fetch_retries", d.Packet.FetchRetries)
	v.SetDefault("packet.max_image_dimension", d.Packet.MaxImageDimension)
	v.SetDefault("packet.max_image_pixels", d.Packet.MaxImagePixels)
	v.SetDefault("packet.font_regular", d.Packet.FontRegular)
	v.SetDefault("packet.font_bold", d.Packet.FontBold)
	v.SetDefault("packet.author", d.Packet.Author)
}
