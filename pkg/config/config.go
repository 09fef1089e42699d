// Package config loads the daemon configuration: TOML file over
// built-in defaults, then BOOKSIM_* environment overrides.
package config

import (
	"os"
	"strconv"

	"booksim/pkg/models"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type AppConfig struct {
	Listen string `toml:"listen"`
	Depth  int    `toml:"depth"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	Filename   string `toml:"filename"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// VenueConfig holds one venue's feed settings. Symbols are given in the
// venue's own wire format; URL overrides the adapter default when set.
type VenueConfig struct {
	Enabled bool     `toml:"enabled"`
	URL     string   `toml:"url"`
	Symbols []string `toml:"symbols"`
}

type Config struct {
	App    AppConfig              `toml:"app"`
	Log    LogConfig              `toml:"log"`
	Venues map[string]VenueConfig `toml:"venues"`
}

func Defaults() Config {
	return Config{
		App: AppConfig{
			Listen: ":8080",
			Depth:  15,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 10,
			MaxAgeDays: 14,
		},
		Venues: map[string]VenueConfig{
			"okx":     {Enabled: true, Symbols: []string{"BTC-USDT"}},
			"bybit":   {Enabled: true, Symbols: []string{"BTC-USDT"}},
			"deribit": {Enabled: true, Symbols: []string{"BTC-PERPETUAL"}},
		},
	}
}

// Load merges the TOML file at path (skipped when empty) over defaults
// and applies env overrides. Call Validate on the result before use.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, errors.Wrapf(err, "config file %q", path)
		}
	}

	// .env is optional.
	_ = godotenv.Load()

	setStr(&cfg.App.Listen, "BOOKSIM_LISTEN")
	setInt(&cfg.App.Depth, "BOOKSIM_DEPTH")
	setStr(&cfg.Log.Level, "BOOKSIM_LOG_LEVEL")
	setStr(&cfg.Log.Filename, "BOOKSIM_LOG_FILE")

	return &cfg, nil
}

// Validate fails fast on anything the process could not run with. An
// unknown venue key is fatal here, never silently defaulted.
func (c *Config) Validate() error {
	if c.App.Depth <= 0 {
		return errors.Errorf("depth %d must be positive", c.App.Depth)
	}
	if c.App.Listen == "" {
		return errors.New("listen address must not be empty")
	}

	enabled := 0
	for name, vc := range c.Venues {
		if _, err := models.ParseVenue(name); err != nil {
			return err
		}
		if !vc.Enabled {
			continue
		}
		enabled++
		if len(vc.Symbols) == 0 {
			return errors.Errorf("venue %q is enabled but has no symbols", name)
		}
	}
	if enabled == 0 {
		return errors.New("no venues enabled")
	}

	return nil
}

// EnabledVenues returns the enabled venue set in a stable order.
func (c *Config) EnabledVenues() []models.Venue {
	var out []models.Venue
	for _, v := range models.Venues() {
		if vc, ok := c.Venues[v.String()]; ok && vc.Enabled {
			out = append(out, v)
		}
	}
	return out
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
