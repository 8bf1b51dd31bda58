package configloader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/yaklabco/gonixfmt/pkg/config"
	"github.com/yaklabco/gonixfmt/pkg/rules"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid configuration")

// maxIndentWidth bounds indent_width.
const maxIndentWidth = 16

// ValidationError represents a configuration validation finding.
type ValidationError struct {
	// Field is the path to the field, e.g. "rules.assignment".
	Field string

	Value any

	Message string

	// FilePath is the config file containing the error, if known.
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidConfig }

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors prevent loading.
	Errors []ValidationError

	// Warnings are reported but do not stop a run.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err joins all errors, or returns nil.
func (r *ValidationResult) Err() error {
	errs := make([]error, 0, len(r.Errors))
	for i := range r.Errors {
		errs = append(errs, &r.Errors[i])
	}
	return errors.Join(errs...)
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownBackupModes = map[string]bool{
	"sidecar": true,
	"none":    true,
}

// Validate checks cfg against the given rule registry. A nil registry means
// rules.Default().
func Validate(cfg *config.Config, registry *rules.Registry) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}
	if registry == nil {
		registry = rules.Default()
	}

	if cfg.IndentWidth < 0 || cfg.IndentWidth > maxIndentWidth {
		result.fail("indent_width", cfg.IndentWidth, "must be between 1 and %d", maxIndentWidth)
	}
	if cfg.MaxBlankLines != nil && *cfg.MaxBlankLines < 0 {
		result.fail("max_blank_lines", *cfg.MaxBlankLines, "must be >= 0")
	}
	if cfg.Format != "" && !cfg.Format.IsValid() {
		result.fail("format", cfg.Format, "invalid format %q; must be one of: text, json, diff, summary", cfg.Format)
	}
	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "must be >= 0 (0 means auto)")
	}
	if cfg.Backups.Mode != "" && !knownBackupModes[cfg.Backups.Mode] {
		result.fail("backups.mode", cfg.Backups.Mode, "invalid backup mode %q; must be one of: sidecar, none", cfg.Backups.Mode)
	}

	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			result.fail(fmt.Sprintf("extensions[%d]", i), ext, "extension %q must start with a dot", ext)
		}
	}

	for i, pattern := range cfg.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			result.fail(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}

	for name := range cfg.Rules {
		if _, ok := registry.Get(name); !ok {
			result.warn("rules."+name, name, "unknown rule %q; it will be ignored", name)
		}
	}
	for _, name := range cfg.DisableRules {
		if _, ok := registry.Get(name); !ok {
			result.fail("disable", name, "unknown rule %q", name)
		}
	}

	return result
}

// pruneUnknownRules drops rules entries the registry does not know, so a
// stale config file does not stop the formatter from resolving its rules.
func pruneUnknownRules(cfg *config.Config, registry *rules.Registry) {
	for name := range cfg.Rules {
		if _, ok := registry.Get(name); !ok {
			delete(cfg.Rules, name)
		}
	}
}

// ValidateWithFile validates cfg and attributes every finding to filePath.
func ValidateWithFile(cfg *config.Config, registry *rules.Registry, filePath string) *ValidationResult {
	result := Validate(cfg, registry)
	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}
	return result
}
