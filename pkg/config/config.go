// Package config loads komik settings from config.yml, KOMIK_ environment
// variables and command-line flags, in rising order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config maps directly to the structure of config.yml.
type Config struct {
	API struct {
		BaseURL   string        `mapstructure:"base_url"`
		Timeout   time.Duration `mapstructure:"timeout"`
		RateLimit float64       `mapstructure:"rate_limit"`
		Burst     int           `mapstructure:"burst"`
	} `mapstructure:"api"`
	Reader struct {
		Quality string `mapstructure:"quality"`
	} `mapstructure:"reader"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
		File   string `mapstructure:"file"`
	} `mapstructure:"log"`
	Export struct {
		Dir       string  `mapstructure:"dir"`
		Workers   int     `mapstructure:"workers"`
		RateLimit float64 `mapstructure:"rate_limit"`
		Device    string  `mapstructure:"device"`
	} `mapstructure:"export"`
}

// Dir is where komik keeps its config file and log.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".komik"
	}
	return filepath.Join(home, ".komik")
}

// New returns a viper instance with every default set and KOMIK_ environment
// overrides enabled, e.g. KOMIK_API_BASE_URL overrides api.base_url.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("KOMIK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	downloads := "Downloads"
	if home, err := os.UserHomeDir(); err == nil {
		downloads = filepath.Join(home, "Downloads")
	}

	v.SetDefault("api.base_url", "https://api.shngm.io/v1")
	v.SetDefault("api.timeout", "20s")
	v.SetDefault("api.rate_limit", 5)
	v.SetDefault("api.burst", 10)
	v.SetDefault("reader.quality", "high")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", filepath.Join(Dir(), "komik.log"))
	v.SetDefault("export.dir", downloads)
	v.SetDefault("export.workers", 3)
	v.SetDefault("export.rate_limit", 2)
	v.SetDefault("export.device", "")
	return v
}

// Load reads file, or config.yml from the working directory or Dir() when
// file is empty, and unmarshals the merged settings. A missing default
// config file is not an error; a missing explicit one is.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("invalid api.timeout: %s (must be positive)", c.API.Timeout)
	}
	if c.API.RateLimit < 0 || c.API.Burst < 0 {
		return fmt.Errorf("invalid api rate limit: %v/s burst %d (must not be negative)", c.API.RateLimit, c.API.Burst)
	}

	validQualities := map[string]bool{"high": true, "hd": true, "low": true, "sd": true}
	if !validQualities[strings.ToLower(c.Reader.Quality)] {
		return fmt.Errorf("invalid reader.quality: %s (must be high or low)", c.Reader.Quality)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Log.Format)
	}

	if c.Export.Workers <= 0 {
		return fmt.Errorf("invalid export.workers: %d (must be positive)", c.Export.Workers)
	}
	if c.Export.RateLimit < 0 {
		return fmt.Errorf("invalid export.rate_limit: %v (must not be negative)", c.Export.RateLimit)
	}
	return nil
}
