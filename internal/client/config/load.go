package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	appDir         = "gostrapi"
	configFileName = "config"
	envPrefix      = "STRAPI"
)

// Config keys and the flags bound to them.
const (
	KeyBaseURL      = "base_url"
	KeyTimeout      = "timeout"
	KeyMaxRedirects = "max_redirects"
	KeyStateDSN     = "state_dsn"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
)

var flagKeys = map[string]string{
	"base-url":      KeyBaseURL,
	"timeout":       KeyTimeout,
	"max-redirects": KeyMaxRedirects,
	"state":         KeyStateDSN,
	"log-level":     KeyLogLevel,
	"log-format":    KeyLogFormat,
}

// configSearchDirs lists where a config file is looked for when none is
// given explicitly. Tests replace it.
var configSearchDirs = func() []string {
	dirs := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, appDir))
	}
	return dirs
}

// RegisterFlags adds the configuration flags to fs with their defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.String("base-url", d.BaseURL, "backend address")
	fs.Duration("timeout", d.Timeout, "request timeout, 0 for none")
	fs.Int("max-redirects", d.MaxRedirects, "redirects followed per request")
	fs.String("state", d.StateDSN, "state database (SQLite DSN, :memory: for none)")
	fs.String("log-level", d.LogLevel, "debug, info, warn or error")
	fs.String("log-format", d.LogFormat, "console, json or text")
}

// LoadConfig builds a Config from, in increasing precedence: defaults, the
// config file, STRAPI_* environment variables and the flags of fs that were
// set explicitly. configFile may be empty, in which case config.{yaml,json,toml}
// is looked up in the working directory and the user config directory; a
// missing file is not an error.
func LoadConfig(fs *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()

	var d Config
	d.LoadDefaults()
	v.SetDefault(KeyBaseURL, d.BaseURL)
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeyMaxRedirects, d.MaxRedirects)
	v.SetDefault(KeyStateDSN, d.StateDSN)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configFileName)
		for _, dir := range configSearchDirs() {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		BaseURL:      v.GetString(KeyBaseURL),
		Timeout:      v.GetDuration(KeyTimeout),
		MaxRedirects: v.GetInt(KeyMaxRedirects),
		StateDSN:     v.GetString(KeyStateDSN),
		LogLevel:     v.GetString(KeyLogLevel),
		LogFormat:    v.GetString(KeyLogFormat),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
