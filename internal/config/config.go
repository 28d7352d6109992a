// Package config loads lineage configuration from file, environment
// variables and defaults.
package config

import (
	"errors"
	"fmt"

	"github.com/chrono-code/lineage/internal/longevity"
	"github.com/chrono-code/lineage/internal/provenance"
)

// Config is the top-level configuration struct for lineage.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Walk    WalkConfig    `mapstructure:"walk"`
	Output  OutputConfig  `mapstructure:"output"`
	Authors AuthorsConfig `mapstructure:"authors"`
}

// WalkConfig holds history walk settings.
type WalkConfig struct {
	Head         string `mapstructure:"head"`
	Tail         string `mapstructure:"tail"`
	SkipVendored bool   `mapstructure:"skip_vendored"`
}

// OutputConfig holds report output settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// AuthorsConfig holds author identity settings. Dict points to an identity
// file; Track lists inline identity entries and takes precedence.
type AuthorsConfig struct {
	Dict  string   `mapstructure:"dict"`
	Track []string `mapstructure:"track"`
}

// Default configuration values.
const (
	DefaultWalkHead         = provenance.DefaultHeadRef
	DefaultWalkSkipVendored = false
	DefaultOutputFormat     = longevity.FormatYAML
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidFormat indicates the output format is not supported.
	ErrInvalidFormat = errors.New("output.format must be one of yaml, json, table, plot")
	// ErrEmptyHead indicates the head revision is empty.
	ErrEmptyHead = errors.New("walk.head must not be empty")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Walk.Head == "" {
		return ErrEmptyHead
	}

	switch c.Output.Format {
	case longevity.FormatYAML, longevity.FormatJSON, longevity.FormatTable, longevity.FormatPlot:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidFormat, c.Output.Format)
	}

	return nil
}

// Identities materializes the configured author identity set. Inline entries
// win over the dict file; with neither, it returns nil and every author is
// reported individually.
func (c *Config) Identities() (*longevity.Identities, error) {
	if len(c.Authors.Track) > 0 {
		return longevity.ParseIdentities(c.Authors.Track), nil
	}

	if c.Authors.Dict != "" {
		return longevity.LoadIdentities(c.Authors.Dict)
	}

	return nil, nil //nolint:nilnil // absent identity set is a valid state.
}
