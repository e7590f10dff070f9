package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configDir  = ".jmapper"
	configFile = "jmapper"
	envPrefix  = "JMAPPER"
)

// Load reads the configuration from path. With an empty path it searches
// ./jmapper.{yaml,json,toml} and ~/.jmapper/, returning the defaults when no
// file exists. Environment variables prefixed with JMAPPER_ override file
// values, e.g. JMAPPER_LOG_LEVEL=debug.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("command_timeout", 500)
	v.SetDefault("ignore_missing_column", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"default_connection", "command_timeout", "ignore_missing_column", "log.level", "log.format"} {
		_ = v.BindEnv(key)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFile)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, configDir))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
