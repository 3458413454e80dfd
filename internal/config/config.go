// Package config loads the timeline settings from .timeline.yaml, TIMELINE_*
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Keys.
const (
	BackendURL = "backend_url"
	Token      = "token"
	DB         = "db"
	CacheDir   = "cache_dir"
	Addr       = "addr"
	Timezone   = "timezone"
	LogLevel   = "log_level"
)

type Config struct {
	BackendURL string
	Token      string
	DB         string
	CacheDir   string
	Addr       string
	Location   *time.Location
	LogLevel   string
}

// New returns a viper instance with the defaults and search paths set.
// Flags can be bound to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(BackendURL, "http://localhost:9000")
	v.SetDefault(DB, "~/.timeline/archive.db")
	v.SetDefault(CacheDir, "~/.timeline/cache")
	v.SetDefault(Addr, ":8080")
	v.SetDefault(LogLevel, "info")

	v.SetConfigName(".timeline") // .yaml is implicit
	v.SetEnvPrefix("TIMELINE")
	v.AutomaticEnv()

	if override := os.Getenv("TIMELINE_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}
	return v
}

// Load reads the config file, if any, and resolves the settings.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	db, err := homedir.Expand(v.GetString(DB))
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", DB, err)
	}
	cacheDir, err := homedir.Expand(v.GetString(CacheDir))
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", CacheDir, err)
	}

	loc := time.Local
	if tz := v.GetString(Timezone); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("load timezone: %w", err)
		}
	}

	return &Config{
		BackendURL: v.GetString(BackendURL),
		Token:      v.GetString(Token),
		DB:         db,
		CacheDir:   cacheDir,
		Addr:       v.GetString(Addr),
		Location:   loc,
		LogLevel:   v.GetString(LogLevel),
	}, nil
}

// ConfigFile is the file settings were read from, if any.
func ConfigFile(v *viper.Viper) string {
	return v.ConfigFileUsed()
}
