// Package config holds runtime configuration: defaults, the optional YAML
// config file, environment overrides, CLI flag parsing, and validation.
// Defaults match the legacy XCImageAssetsRename script so a bare invocation
// behaves the same way.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then layered by [LoadFile], [ApplyEnv] and [ParseFlags] before being
// passed (by pointer) to packages that need it.
type Config struct {
	// Path to the catalog root (set from the positional arg).
	CatalogDir string `yaml:"-"`

	// Catalog layout.
	ManifestName string `yaml:"manifest_name" env:"MANIFEST"`      // Default: "Contents.json".
	FolderSuffix string `yaml:"folder_suffix" env:"FOLDER_SUFFIX"` // Default: ".imageset".
	ImagesKey    string `yaml:"images_key" env:"IMAGES_KEY"`       // Default: "images".

	// Behavior.
	DryRun bool     `yaml:"dry_run" env:"DRY_RUN"`
	Skip   []string `yaml:"skip" env:"SKIP" envSeparator:","` // doublestar patterns, catalog-relative.

	// Display and logging.
	Verbose   bool      `yaml:"verbose" env:"VERBOSE"`
	ColorMode ColorMode `yaml:"color" env:"COLOR"` // Default: "auto".
	LogFile   string    `yaml:"log_file" env:"LOG_FILE"`

	// Set by ParseFlags when the positional argument count is not exactly
	// one. The caller prints usage and carries on regardless.
	ArgCountMismatch bool `yaml:"-"`
}

// DefaultConfig returns a Config matching the legacy script's constants.
func DefaultConfig() Config {
	return Config{
		ManifestName: "Contents.json",
		FolderSuffix: ".imageset",
		ImagesKey:    "images",
		ColorMode:    ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks the layout names, color mode and skip patterns. The
// catalog path itself is checked later by the pipeline, because an invalid
// root is reported and tolerated rather than treated as a config error.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ManifestName) == "" {
		return errors.New("manifest name must not be empty")
	}
	if strings.ContainsRune(c.ManifestName, '/') {
		return fmt.Errorf("manifest name %q must be a bare filename", c.ManifestName)
	}
	if strings.TrimSpace(c.ImagesKey) == "" {
		return errors.New("images key must not be empty")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	for _, p := range c.Skip {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid skip pattern %q", p)
		}
	}
	return nil
}
