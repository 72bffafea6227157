// Package config provides configuration loading and defaults for notestrip.
//
// Configuration is read from an optional TOML file (notestrip.toml in the
// working directory by default). Values in the file override the built-in
// defaults; command-line flags override both.
package config

//go:generate go run ../../cmd/genconfig

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"tools.zach/dev/notestrip/internal/hexcolor"
	"tools.zach/dev/notestrip/internal/paths"
	"tools.zach/dev/notestrip/internal/strip"
)

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level application configuration.
type Config struct {
	// Layout holds canvas padding, glyph spacing, and background settings.
	Layout LayoutConfig `toml:"layout"`
	// Assets holds glyph asset directory settings.
	Assets AssetsConfig `toml:"assets"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
}

// LayoutConfig holds the output layout settings.
type LayoutConfig struct {
	// Background is the canvas color in web hex format ("#rgb" or "#rrggbb").
	Background string `toml:"background"`
	// Spacing is the gap in pixels between adjacent glyphs.
	Spacing int `toml:"spacing"`
	// Padding holds the background margin around the glyph row.
	Padding PaddingConfig `toml:"padding"`
}

// PaddingConfig holds per-side padding in pixels.
type PaddingConfig struct {
	Top    int `toml:"top"`
	Left   int `toml:"left"`
	Right  int `toml:"right"`
	Bottom int `toml:"bottom"`
}

// AssetsConfig holds glyph asset directory settings.
type AssetsConfig struct {
	// Dir is the directory holding one image per character.
	Dir string `toml:"dir"`
	// Ignore lists glob patterns for directory entries that are never glyphs.
	Ignore []string `toml:"ignore"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error, fail).
	Level string `toml:"level"`
	// File is an optional log file path; logs are always written to stderr too.
	File string `toml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns a Config populated with the built-in defaults.
func DefaultConfig() *Config {
	l := strip.DefaultLayout()
	return &Config{
		Layout: LayoutConfig{
			Background: strip.DefaultBackground,
			Spacing:    l.Spacing,
			Padding: PaddingConfig{
				Top:    l.Padding.Top,
				Left:   l.Padding.Left,
				Right:  l.Padding.Right,
				Bottom: l.Padding.Bottom,
			},
		},
		Assets: AssetsConfig{
			Dir:    paths.AssetDir,
			Ignore: []string{},
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// ExampleConfig returns a Config suitable for generating config.default.toml.
func ExampleConfig() *Config {
	return DefaultConfig()
}

// ///////////////////////////////////////////////
// Loading
// ///////////////////////////////////////////////

// Load reads and parses the configuration file at path on top of
// [DefaultConfig]. If the file doesn't exist, returns DefaultConfig.
// Unknown keys are logged and otherwise ignored.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML bytes on top of [DefaultConfig] and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key", "key", key.String())
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fail": true,
}

// Validate checks that all configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if _, err := c.StripLayout(); err != nil {
		return err
	}

	if c.Assets.Dir == "" {
		return fmt.Errorf("assets.dir must not be empty")
	}
	for _, p := range c.Assets.Ignore {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid assets.ignore pattern %q", p)
		}
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, error, or fail", c.Log.Level)
	}

	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}

	return nil
}

// StripLayout converts the layout section into a [strip.Layout], parsing the
// background color and rejecting negative padding or spacing.
func (c *Config) StripLayout() (strip.Layout, error) {
	bg, err := hexcolor.Parse(c.Layout.Background)
	if err != nil {
		return strip.Layout{}, fmt.Errorf("layout.background: %w", err)
	}
	l := strip.Layout{
		Padding: strip.Padding{
			Top:    c.Layout.Padding.Top,
			Left:   c.Layout.Padding.Left,
			Right:  c.Layout.Padding.Right,
			Bottom: c.Layout.Padding.Bottom,
		},
		Spacing:    c.Layout.Spacing,
		Background: bg,
	}
	if err := l.Validate(); err != nil {
		return strip.Layout{}, err
	}
	return l, nil
}
