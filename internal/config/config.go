package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rzbill/pollbus/internal/broker"
	logpkg "github.com/rzbill/pollbus/pkg/log"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "POLLBUS"

// Config is the top-level configuration loaded from file/env.
type Config struct {
	Broker    BrokerConfig    `mapstructure:"broker"`
	Server    ServerConfig    `mapstructure:"server"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       logpkg.Config   `mapstructure:"log"`
}

// BrokerConfig holds the broker timings.
type BrokerConfig struct {
	RetentionWindow time.Duration `mapstructure:"retention_window"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	PollTimeout     time.Duration `mapstructure:"poll_timeout"`
}

// ServerConfig holds listener settings for the HTTP and gRPC surfaces.
type ServerConfig struct {
	HTTPAddr        string `mapstructure:"http_addr"`
	GRPCAddr        string `mapstructure:"grpc_addr"`
	MaxPayloadBytes int64  `mapstructure:"max_payload_bytes"`
}

// RateLimitConfig limits pushes per client address. PushPerSecond <= 0
// disables limiting.
type RateLimitConfig struct {
	PushPerSecond float64 `mapstructure:"push_per_second"`
	PushBurst     int     `mapstructure:"push_burst"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Broker: BrokerConfig{
			RetentionWindow: broker.DefaultRetentionWindow,
			SweepInterval:   broker.DefaultSweepInterval,
			PollTimeout:     broker.DefaultPollTimeout,
		},
		Server: ServerConfig{
			HTTPAddr:        ":8080",
			GRPCAddr:        ":50051",
			MaxPayloadBytes: 1 << 20,
		},
		RateLimit: RateLimitConfig{
			PushPerSecond: 0,
			PushBurst:     50,
		},
		Log: logpkg.Config{Level: "info", Format: "text"},
	}
}

// Load reads configuration from path (format chosen by extension) and
// overlays the environment. If path is empty, a pollbus.{json,yaml,toml} is
// searched for in DefaultConfigDirs; finding none is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	v := newViper(cfg)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("pollbus")
		for _, dir := range DefaultConfigDirs() {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv overlays POLLBUS_* environment variables onto cfg, e.g.
// POLLBUS_BROKER_POLL_TIMEOUT=5s or POLLBUS_SERVER_HTTP_ADDR=:9000.
func FromEnv(cfg *Config) error {
	v := newViper(*cfg)
	return v.Unmarshal(cfg)
}

// Validate rejects configurations the broker cannot run with.
func (c Config) Validate() error {
	b := c.Broker
	switch {
	case b.RetentionWindow <= 0:
		return errors.New("config: broker.retention_window must be positive")
	case b.SweepInterval <= 0:
		return errors.New("config: broker.sweep_interval must be positive")
	case b.PollTimeout <= 0:
		return errors.New("config: broker.poll_timeout must be positive")
	case b.SweepInterval > b.RetentionWindow:
		return fmt.Errorf("config: broker.sweep_interval %s exceeds retention_window %s", b.SweepInterval, b.RetentionWindow)
	case c.Server.HTTPAddr == "":
		return errors.New("config: server.http_addr is required")
	case c.Server.GRPCAddr == "":
		return errors.New("config: server.grpc_addr is required")
	case c.Server.MaxPayloadBytes <= 0:
		return errors.New("config: server.max_payload_bytes must be positive")
	case c.RateLimit.PushPerSecond > 0 && c.RateLimit.PushBurst <= 0:
		return errors.New("config: rate_limit.push_burst must be positive when limiting")
	}
	return nil
}

// BrokerOptions maps the broker section onto broker.Options.
func (c Config) BrokerOptions() broker.Options {
	return broker.Options{
		RetentionWindow: c.Broker.RetentionWindow,
		SweepInterval:   c.Broker.SweepInterval,
		PollTimeout:     c.Broker.PollTimeout,
	}
}

// newViper returns a viper instance seeded with base so that every key is
// known to AutomaticEnv.
func newViper(base Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("broker.retention_window", base.Broker.RetentionWindow)
	v.SetDefault("broker.sweep_interval", base.Broker.SweepInterval)
	v.SetDefault("broker.poll_timeout", base.Broker.PollTimeout)
	v.SetDefault("server.http_addr", base.Server.HTTPAddr)
	v.SetDefault("server.grpc_addr", base.Server.GRPCAddr)
	v.SetDefault("server.max_payload_bytes", base.Server.MaxPayloadBytes)
	v.SetDefault("rate_limit.push_per_second", base.RateLimit.PushPerSecond)
	v.SetDefault("rate_limit.push_burst", base.RateLimit.PushBurst)
	v.SetDefault("log.level", base.Log.Level)
	v.SetDefault("log.format", base.Log.Format)
	v.SetDefault("log.output", base.Log.Output)
	return v
}
