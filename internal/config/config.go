package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. GUESSD_AUTHORITY.
const EnvPrefix = "GUESSD"

// Config holds the node daemon settings.
type Config struct {
	Home      string `mapstructure:"home"`
	Addr      string `mapstructure:"addr"`
	Transport string `mapstructure:"transport"`
	Authority string `mapstructure:"authority"`
	// AuthorityPubKey is the hex ed25519 key pinned for Authority when a
	// fresh home is initialised.
	AuthorityPubKey string `mapstructure:"authority_pubkey"`
	DBBackend       string `mapstructure:"db_backend"`
	LogLevel        string `mapstructure:"log_level"`
	LogJSON         bool   `mapstructure:"log_json"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("home", ".guessd")
	v.SetDefault("addr", "tcp://127.0.0.1:26658")
	v.SetDefault("transport", "socket")
	v.SetDefault("authority", "")
	v.SetDefault("authority_pubkey", "")
	v.SetDefault("db_backend", "goleveldb")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// Load resolves configuration from defaults, <home>/config.toml, GUESSD_*
// environment variables and any flags already bound to v, in increasing
// order of precedence.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(v.GetString("home"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Home == "" {
		return fmt.Errorf("home must not be empty")
	}
	switch c.Transport {
	case "socket", "grpc":
	default:
		return fmt.Errorf("unsupported transport %q (socket|grpc)", c.Transport)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if _, err := c.AuthorityKey(); err != nil {
		return err
	}
	return nil
}

// AuthorityKey decodes AuthorityPubKey. It returns nil when none is set.
func (c *Config) AuthorityKey() ([]byte, error) {
	s := strings.TrimPrefix(strings.TrimSpace(c.AuthorityPubKey), "0x")
	if s == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid authority_pubkey: %w", err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("authority_pubkey must be %d bytes, got %d", ed25519.PublicKeySize, len(key))
	}
	return key, nil
}

func (c *Config) DataDir() string {
	return filepath.Join(c.Home, "data")
}

// NewLogger builds the daemon logger writing to w.
func (c *Config) NewLogger(w io.Writer) (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	opts := []log.Option{log.LevelOption(lvl)}
	if c.LogJSON {
		opts = append(opts, log.OutputJSONOption())
	}
	return log.NewLogger(w, opts...), nil
}
