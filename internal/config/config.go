// Package config loads the server configuration from an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/strichliste-rs/strichliste-rs-sub000/internal/money"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Limits   LimitsConfig   `mapstructure:"limits"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LimitsConfig is the balance corridor in minor units.
type LimitsConfig struct {
	Lower money.Value `mapstructure:"lower"`
	Upper money.Value `mapstructure:"upper"`
}

func newDefault() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "data/tally.db"},
		// Matches the common club setup: members may owe up to 100.00 and
		// hold up to 300.00.
		Limits: LimitsConfig{Lower: -10000, Upper: 30000},
	}
}

// Load reads path when non-empty, otherwise looks for tally.yaml in the
// working directory. A missing default file is not an error; environment
// variables prefixed TALLY_ override either source.
func Load(path string) (*Config, error) {
	cfg := newDefault()

	// Registering the defaults makes the keys known to viper, so pure
	// environment overrides survive Unmarshal.
	viper.SetDefault("server.addr", cfg.Server.Addr)
	viper.SetDefault("database.path", cfg.Database.Path)
	viper.SetDefault("limits.lower", int64(cfg.Limits.Lower))
	viper.SetDefault("limits.upper", int64(cfg.Limits.Upper))

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("tally")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TALLY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Limits.Lower > 0 {
		return nil, fmt.Errorf("limits.lower must not be positive, got %d", cfg.Limits.Lower)
	}
	if cfg.Limits.Upper < 0 {
		return nil, fmt.Errorf("limits.upper must not be negative, got %d", cfg.Limits.Upper)
	}
	return cfg, nil
}
