// Package config loads runtime settings: built-in defaults, then an
// optional YAML tuning file, then MIKDASH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/mikdash/engine/spatial"
)

// MinAltarRadius is half the width of the altar's solid footprint. A
// smaller radius leaves no walkable point near the altar.
const MinAltarRadius = 4.0

// Config is the full runtime configuration.
type Config struct {
	DBPath        string        `yaml:"db_path" env:"MIKDASH_DB"`
	CatalogDir    string        `yaml:"catalog_dir" env:"MIKDASH_CATALOG"`
	LogFile       string        `yaml:"log_file" env:"MIKDASH_LOG_FILE"`
	LogLevel      string        `yaml:"log_level" env:"MIKDASH_LOG_LEVEL"`
	Autosave      time.Duration `yaml:"autosave" env:"MIKDASH_AUTOSAVE"`
	StartingCoins int           `yaml:"starting_coins" env:"MIKDASH_STARTING_COINS"`
	MaxProfiles   int           `yaml:"max_profiles" env:"MIKDASH_MAX_PROFILES"`

	Geometry Geometry `yaml:"geometry"`
}

// Geometry holds the courtyard layout numbers.
type Geometry struct {
	NorthZoneZ     float64 `yaml:"north_zone_z" env:"MIKDASH_NORTH_ZONE_Z"`
	AltarRadius    float64 `yaml:"altar_radius" env:"MIKDASH_ALTAR_RADIUS"`
	InteractRadius float64 `yaml:"interact_radius" env:"MIKDASH_INTERACT_RADIUS"`
	Bound          float64 `yaml:"bound" env:"MIKDASH_BOUND"`
}

// Default returns the built-in configuration.
func Default() Config {
	z := spatial.DefaultZones()
	return Config{
		DBPath:        defaultDBPath(),
		LogLevel:      "info",
		Autosave:      10 * time.Second,
		StartingCoins: 50,
		MaxProfiles:   10,
		Geometry: Geometry{
			NorthZoneZ:     z.NorthZoneZ,
			AltarRadius:    z.AltarRadius,
			InteractRadius: z.InteractRadius,
			Bound:          z.Bounds.MaxX,
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mikdash.db"
	}
	return filepath.Join(home, ".mikdash", "mikdash.db")
}

// Load builds a Config. An empty path skips the YAML layer.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if c.Autosave <= 0 {
		errs = append(errs, fmt.Errorf("autosave must be positive, got %s", c.Autosave))
	}
	if c.StartingCoins < 0 {
		errs = append(errs, fmt.Errorf("starting_coins must not be negative, got %d", c.StartingCoins))
	}
	if c.MaxProfiles < 1 {
		errs = append(errs, fmt.Errorf("max_profiles must be at least 1, got %d", c.MaxProfiles))
	}
	if c.Geometry.Bound <= 0 {
		errs = append(errs, fmt.Errorf("geometry.bound must be positive, got %g", c.Geometry.Bound))
	}
	if c.Geometry.AltarRadius <= 0 || c.Geometry.InteractRadius <= 0 {
		errs = append(errs, errors.New("geometry radii must be positive"))
	}
	if b := c.Geometry.Bound; b > 0 && (c.Geometry.NorthZoneZ <= -b || c.Geometry.NorthZoneZ >= b) {
		errs = append(errs, fmt.Errorf("geometry.north_zone_z must lie inside the bounds (-%g, %g), got %g",
			b, b, c.Geometry.NorthZoneZ))
	}
	if r := c.Geometry.AltarRadius; r > 0 && r < MinAltarRadius {
		errs = append(errs, fmt.Errorf("geometry.altar_radius must be at least %g, got %g", MinAltarRadius, r))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Zones converts the geometry settings into spatial zones.
func (c Config) Zones() spatial.Zones {
	z := spatial.DefaultZones()
	z.NorthZoneZ = c.Geometry.NorthZoneZ
	z.AltarRadius = c.Geometry.AltarRadius
	z.InteractRadius = c.Geometry.InteractRadius
	b := c.Geometry.Bound
	z.Bounds = spatial.Rect{MinX: -b, MinZ: -b, MaxX: b, MaxZ: b}
	return z
}
