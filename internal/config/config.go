// Package config holds the tunables that stay constant across a
// workbook's lifetime rather than varying per operation: the grid
// bounds a process reports to its user, and the log verbosity it
// starts telemetry at. A process normally uses Default; an operator
// can override either field with a YAML file.
package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Limits mirrors the grid bounds internal/ref enforces (informational
// here, not a second source of truth -- ref.MaxColumn/ref.MaxRow are
// the ones CheckBounds actually uses) and the telemetry level a
// process should start at.
type Limits struct {
	MaxCol int `yaml:"max_col"`
	MaxRow int `yaml:"max_row"`

	// LogLevel is one of zerolog's level names ("debug", "info",
	// "warn", "error", "disabled"); see ZerologLevel.
	LogLevel string `yaml:"log_level"`
}

// Default matches the bounds spec.md fixes (column "ZZZZ", row 9999)
// and a quiet-by-default log level.
var Default = Limits{
	MaxCol:   maxColZZZZ,
	MaxRow:   9999,
	LogLevel: "info",
}

// maxColZZZZ is the base-26 bijective value of column "ZZZZ", matching
// internal/ref.MaxColumn.
const maxColZZZZ = 26*26*26*26 + 26*26*26 + 26*26 + 26

// Load reads a YAML file and overlays it onto config.Default, so a
// file only needs to set the fields it wants to change.
func Load(path string) (Limits, error) {
	limits := Default
	data, err := os.ReadFile(path)
	if err != nil {
		return Limits{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &limits); err != nil {
		return Limits{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return limits, nil
}

// ZerologLevel parses LogLevel, falling back to zerolog.InfoLevel for
// an empty or unrecognized value.
func (l Limits) ZerologLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(l.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
