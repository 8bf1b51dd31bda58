// Package config defines core configuration types for gonixfmt.
// These types are pure data structures; discovery and merging live in
// internal/configloader.
package config

import (
	"slices"
)

// Defaults.
const (
	DefaultIndentWidth   = 2
	DefaultMaxBlankLines = 1
	DefaultBackupMode    = "sidecar"
)

// RuleConfig holds per-rule configuration.
type RuleConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// BackupsConfig controls backup behavior when writing formatted files.
type BackupsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Mode    string `yaml:"mode"` // "sidecar" or "none"
}

// MarkdownConfig controls formatting of Nix code embedded in Markdown.
type MarkdownConfig struct {
	// Enabled formats fenced code blocks tagged nix in .md files.
	Enabled *bool `yaml:"enabled,omitempty"`

	// DetectUntagged also formats untagged fences that look like Nix.
	DetectUntagged *bool `yaml:"detect_untagged,omitempty"`
}

// OutputFormat specifies how results are reported.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatJSON    OutputFormat = "json"
	FormatDiff    OutputFormat = "diff"
	FormatSummary OutputFormat = "summary"
)

// IsValid returns true if the format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatDiff, FormatSummary:
		return true
	default:
		return false
	}
}

// Config is the root configuration structure for gonixfmt.
type Config struct {
	// IndentWidth is the number of spaces per indentation level. Zero means default.
	IndentWidth int `yaml:"indent_width,omitempty"`

	// MaxBlankLines caps consecutive blank lines kept when re-indenting.
	MaxBlankLines *int `yaml:"max_blank_lines,omitempty"`

	// Rules contains per-rule configuration keyed by rule name.
	Rules map[string]RuleConfig `yaml:"rules,omitempty"`

	// Ignore contains glob patterns for files to skip.
	Ignore []string `yaml:"ignore,omitempty"`

	// Extensions lists file extensions treated as Nix, with the leading dot.
	Extensions []string `yaml:"extensions,omitempty"`

	Markdown MarkdownConfig `yaml:"markdown,omitempty"`

	Backups BackupsConfig `yaml:"backups"`

	// CLI-level options (not persisted to config files).

	// Check reports files that need formatting without writing them.
	Check bool `yaml:"-"`

	// Diff prints a unified diff instead of writing files.
	Diff bool `yaml:"-"`

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-"`

	// DisableRules contains rule names to disable for this run.
	DisableRules []string `yaml:"-"`

	// NoBackups disables backup creation.
	NoBackups bool `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	blank := DefaultMaxBlankLines
	return &Config{
		IndentWidth:   DefaultIndentWidth,
		MaxBlankLines: &blank,
		Rules:         make(map[string]RuleConfig),
		Extensions:    []string{".nix"},
		Backups: BackupsConfig{
			Enabled: false,
			Mode:    DefaultBackupMode,
		},
		Format: FormatText,
		Jobs:   0, // 0 means use GOMAXPROCS
	}
}

// EffectiveIndentWidth returns the indentation width, falling back to the default.
func (c *Config) EffectiveIndentWidth() int {
	if c == nil || c.IndentWidth <= 0 {
		return DefaultIndentWidth
	}
	return c.IndentWidth
}

// EffectiveMaxBlankLines returns the blank line cap, falling back to the default.
func (c *Config) EffectiveMaxBlankLines() int {
	if c == nil || c.MaxBlankLines == nil || *c.MaxBlankLines < 0 {
		return DefaultMaxBlankLines
	}
	return *c.MaxBlankLines
}

// MarkdownEnabled reports whether fenced Nix blocks in Markdown are formatted.
func (c *Config) MarkdownEnabled() bool {
	return c != nil && c.Markdown.Enabled != nil && *c.Markdown.Enabled
}

// DetectUntagged reports whether untagged Markdown fences are classified.
func (c *Config) DetectUntagged() bool {
	return c.MarkdownEnabled() && c.Markdown.DetectUntagged != nil && *c.Markdown.DetectUntagged
}

// DisabledRules returns the sorted, de-duplicated names of rules disabled in
// the rules map or on the command line.
func (c *Config) DisabledRules() []string {
	if c == nil {
		return nil
	}
	var names []string
	for name, rc := range c.Rules {
		if rc.Enabled != nil && !*rc.Enabled {
			names = append(names, name)
		}
	}
	names = append(names, c.DisableRules...)
	slices.Sort(names)
	return slices.Compact(names)
}

// BackupsEnabled reports whether backups should be written.
func (c *Config) BackupsEnabled() bool {
	return c != nil && c.Backups.Enabled && !c.NoBackups && c.Backups.Mode != "none"
}
