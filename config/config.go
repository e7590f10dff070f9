package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shrek82/jmapper/dialect"
	"github.com/shrek82/jmapper/validator"
)

// ErrNoConnection is returned when a profile cannot be found.
var ErrNoConnection = errors.New("config: no connection profile")

// Config is the configuration of a jmapper application.
type Config struct {
	Connections         []Connection `mapstructure:"connections" yaml:"connections"`
	DefaultConnection   string       `mapstructure:"default_connection" yaml:"default_connection"`
	CommandTimeout      int          `mapstructure:"command_timeout" yaml:"command_timeout"`
	IgnoreMissingColumn bool         `mapstructure:"ignore_missing_column" yaml:"ignore_missing_column"`
	Log                 Log          `mapstructure:"log" yaml:"log"`
}

// Connection is a named database profile.
type Connection struct {
	Name            string        `mapstructure:"name" yaml:"name"`
	Driver          string        `mapstructure:"driver" yaml:"driver"`
	DSN             string        `mapstructure:"dsn" yaml:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// Log holds the logger settings.
type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

var (
	configRules = validator.Rules{
		"CommandTimeout": {validator.Range(0, math.MaxInt32).Msg("command_timeout must be between 0 and 2147483647 seconds")},
	}
	logRules = validator.Rules{
		"Level":  {validator.In("silent", "off", "none", "error", "warn", "warning", "info", "debug", "sql").Optional()},
		"Format": {validator.In("text", "json").Optional()},
	}
	connectionRules = validator.Rules{
		"Name":            {validator.Required, validator.MaxLen(64), validator.Regexp(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)},
		"Driver":          {validator.Required},
		"DSN":             {validator.Required},
		"MaxOpenConns":    {validator.Range(0, math.MaxInt32)},
		"MaxIdleConns":    {validator.Range(0, math.MaxInt32)},
		"ConnMaxLifetime": {validator.Range(0, math.MaxInt64)},
	}
)

// Validate checks the configuration and every connection profile.
func (cfg *Config) Validate() error {
	if err := configRules.Validate(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := logRules.Validate(&cfg.Log); err != nil {
		return fmt.Errorf("config: log: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Connections))
	for i := range cfg.Connections {
		c := &cfg.Connections[i]
		if err := connectionRules.Validate(c); err != nil {
			return fmt.Errorf("config: connection %d (%s): %w", i, c.Name, err)
		}
		if _, ok := dialect.Get(c.Driver); !ok {
			return fmt.Errorf("config: connection %s: unknown driver %q", c.Name, c.Driver)
		}
		if seen[c.Name] {
			return fmt.Errorf("config: duplicate connection name %q", c.Name)
		}
		seen[c.Name] = true
	}

	if cfg.DefaultConnection != "" && !seen[cfg.DefaultConnection] {
		return fmt.Errorf("%w: default %q is not defined", ErrNoConnection, cfg.DefaultConnection)
	}
	return nil
}

// Connection returns the named profile. An empty name selects the default
// connection, or the first one when no default is set.
func (cfg *Config) Connection(name string) (*Connection, error) {
	if name == "" {
		name = cfg.DefaultConnection
	}
	if name == "" {
		if len(cfg.Connections) == 0 {
			return nil, ErrNoConnection
		}
		return &cfg.Connections[0], nil
	}

	for i := range cfg.Connections {
		if cfg.Connections[i].Name == name {
			return &cfg.Connections[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoConnection, name)
}

// HasConnection checks if a connection with the given name exists.
func (cfg *Config) HasConnection(name string) bool {
	_, err := cfg.Connection(name)
	return err == nil && name != ""
}
