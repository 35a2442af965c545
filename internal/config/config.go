// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Load for omitted settings.
const (
	DefaultTilesDir     = "tiles"
	DefaultZoomLimit    = 6
	DefaultOverlayColor = "#10141c99"
	DefaultDraftTTL     = 30 * time.Minute
)

// Config represents the root configuration file structure.
type Config struct {
	// path to an open-states GeoJSON file; the bundled asset is used when empty
	OpenStates  string    `yaml:"open_states,omitempty" json:"-"`
	Attribution string    `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	Regions     []Region  `yaml:"regions,omitempty" json:"-"`
	Overlay     Overlay   `yaml:"overlay" json:"overlay"`
	Tiles       Tiles     `yaml:"tiles" json:"-"`
	Drafts      Drafts    `yaml:"drafts" json:"-"`
	RateLimit   RateLimit `yaml:"rate_limit" json:"-"`
	CORSOrigins []string  `yaml:"cors_origins,omitempty" json:"-"`
}

// Region adds lookup aliases to a region of the open-states dataset.
type Region struct {
	Key     string   `yaml:"key"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// Overlay controls how the locked overlay is built and painted.
type Overlay struct {
	// enforce RFC 7946 ring winding on the inverse polygon
	Normalize bool   `yaml:"normalize" json:"normalize"`
	Color     string `yaml:"color,omitempty" json:"color"`
}

// Tiles controls the raster overlay tiles.
type Tiles struct {
	Dir       string `yaml:"dir,omitempty"`
	ZoomLimit int    `yaml:"zoom,omitempty"`
}

// Drafts controls the in-memory parcel drafts.
type Drafts struct {
	TTL time.Duration `yaml:"ttl,omitempty"`
}

// RateLimit limits API requests per second; zero disables it.
type RateLimit struct {
	RPS   float64 `yaml:"rps,omitempty"`
	Burst int     `yaml:"burst,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified path.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Aliases returns the configured region aliases keyed by region key.
func (c *Config) Aliases() map[string][]string {
	out := make(map[string][]string, len(c.Regions))
	for _, r := range c.Regions {
		out[r.Key] = append(out[r.Key], r.Aliases...)
	}
	return out
}

func (c *Config) applyDefaults() {
	if c.Tiles.Dir == "" {
		c.Tiles.Dir = DefaultTilesDir
	}
	if c.Tiles.ZoomLimit <= 0 {
		c.Tiles.ZoomLimit = DefaultZoomLimit
	}
	if c.Overlay.Color == "" {
		c.Overlay.Color = DefaultOverlayColor
	}
	if c.Drafts.TTL <= 0 {
		c.Drafts.TTL = DefaultDraftTTL
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = int(c.RateLimit.RPS)
		if c.RateLimit.Burst < 1 {
			c.RateLimit.Burst = 1
		}
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
}
