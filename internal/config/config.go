// Package config provides Viper-based configuration loading for the dice bot.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds storage settings. Driver selects the backend; the
// connection fields apply to postgres and SQLitePath to sqlite.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Enabled starts the Telnet transport under "serve".
	Enabled bool `mapstructure:"enabled"`
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// DefaultChannel is the channel a session joins after login.
	DefaultChannel string `mapstructure:"default_channel"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// TelegramConfig holds Telegram bot settings.
type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	// PollTimeout is the long-polling timeout for getUpdates.
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
	// Debug enables request logging inside the Telegram client.
	Debug bool `mapstructure:"debug"`
}

// BotConfig holds command dispatch settings shared by every transport.
type BotConfig struct {
	// Prefix marks a message as a command, e.g. "--roll".
	Prefix string `mapstructure:"prefix"`
	// ParserDebug logs why each grammar rejected an input.
	ParserDebug bool `mapstructure:"parser_debug"`
	// Seed makes dice deterministic when non-zero.
	Seed uint64 `mapstructure:"seed"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Telnet   TelnetConfig   `mapstructure:"telnet"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Bot      BotConfig      `mapstructure:"bot"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTelnet(c.Telnet); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTelegram(c.Telegram); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBot(c.Bot); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	switch d.Driver {
	case DriverSQLite:
		if d.SQLitePath == "" {
			return errors.New("database.sqlite_path must not be empty")
		}
		return nil
	case DriverPostgres:
	default:
		return fmt.Errorf("database.driver must be one of [postgres, sqlite], got %q", d.Driver)
	}

	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTelnet(t TelnetConfig) error {
	var errs []string
	if t.Port < 1 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("telnet.port must be 1-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if t.DefaultChannel == "" {
		errs = append(errs, "telnet.default_channel must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTelegram(t TelegramConfig) error {
	if t.Enabled && t.Token == "" {
		return errors.New("telegram.token must not be empty when telegram is enabled")
	}
	if t.PollTimeout < 0 {
		return errors.New("telegram.poll_timeout must not be negative")
	}
	return nil
}

func validateBot(b BotConfig) error {
	if strings.TrimSpace(b.Prefix) == "" {
		return errors.New("bot.prefix must not be blank")
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path loads defaults and
// environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with FATE_ prefix
	v.SetEnvPrefix("FATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.sqlite_path", "fate.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "fate")
	v.SetDefault("database.password", "fate")
	v.SetDefault("database.name", "fate")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("telnet.enabled", true)
	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "30m")
	v.SetDefault("telnet.write_timeout", "30s")
	v.SetDefault("telnet.default_channel", "lobby")

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.debug", false)
	v.SetDefault("telegram.poll_timeout", "60s")

	v.SetDefault("bot.prefix", "--")
	v.SetDefault("bot.parser_debug", false)
	v.SetDefault("bot.seed", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
