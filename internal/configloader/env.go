package configloader

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/yaklabco/gonixfmt/pkg/config"
)

// EnvPrefix is the prefix of every gonixfmt environment variable.
const EnvPrefix = "GONIXFMT_"

type envSetter func(cfg *config.Config, value string) error

type envVar struct {
	suffix      string
	description string
	set         envSetter
}

//nolint:gochecknoglobals // Read-only lookup table.
var envVars = []envVar{
	{"INDENT_WIDTH", "Spaces per indentation level", intSetter(func(c *config.Config, v int) { c.IndentWidth = v })},
	{"MAX_BLANK_LINES", "Consecutive blank lines kept", intSetter(func(c *config.Config, v int) { c.MaxBlankLines = &v })},
	{"CHECK", "Report files that need formatting without writing: true or false", boolSetter(func(c *config.Config, v bool) { c.Check = v })},
	{"DIFF", "Print a unified diff instead of writing: true or false", boolSetter(func(c *config.Config, v bool) { c.Diff = v })},
	{"JOBS", "Number of parallel workers (0 = auto)", intSetter(func(c *config.Config, v int) { c.Jobs = v })},
	{"FORMAT", "Output format: text, json, diff, or summary", func(c *config.Config, v string) error {
		c.Format = config.OutputFormat(v)
		return nil
	}},
	{"IGNORE", "Comma-separated ignore globs", sliceSetter(func(c *config.Config, v []string) { c.Ignore = v })},
	{"EXTENSIONS", "Comma-separated Nix file extensions", sliceSetter(func(c *config.Config, v []string) { c.Extensions = v })},
	{"DISABLE", "Comma-separated rule names to disable", sliceSetter(func(c *config.Config, v []string) { c.DisableRules = v })},
	{"MARKDOWN", "Format Nix code blocks in Markdown: true or false", boolSetter(func(c *config.Config, v bool) { c.Markdown.Enabled = &v })},
	{"BACKUPS_ENABLED", "Write backups before formatting: true or false", boolSetter(func(c *config.Config, v bool) { c.Backups.Enabled = v })},
	{"BACKUPS_MODE", "Backup mode: sidecar or none", func(c *config.Config, v string) error {
		c.Backups.Mode = v
		return nil
	}},
	{"NO_BACKUPS", "Disable backups: true or false", boolSetter(func(c *config.Config, v bool) { c.NoBackups = v })},
}

// LoadFromEnv applies GONIXFMT_* environment variables to cfg.
func LoadFromEnv(cfg *config.Config) error {
	return loadFromEnv(cfg, os.Getenv)
}

func loadFromEnv(cfg *config.Config, getenv func(string) string) error {
	if cfg == nil {
		return nil
	}
	for _, ev := range envVars {
		name := EnvPrefix + ev.suffix
		value := getenv(name)
		if value == "" {
			continue
		}
		if err := ev.set(cfg, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func intSetter(set func(*config.Config, int)) envSetter {
	return func(cfg *config.Config, value string) error {
		i, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		set(cfg, i)
		return nil
	}
}

func boolSetter(set func(*config.Config, bool)) envSetter {
	return func(cfg *config.Config, value string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid boolean %q (expected true/false/1/0)", value)
		}
		set(cfg, b)
		return nil
	}
}

func sliceSetter(set func(*config.Config, []string)) envSetter {
	return func(cfg *config.Config, value string) error {
		set(cfg, parseSliceValue(value))
		return nil
	}
}

// parseSliceValue splits a comma-separated list, dropping empty elements.
func parseSliceValue(value string) []string {
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ListEnvVars returns the supported environment variables with descriptions,
// sorted by name.
func ListEnvVars() []string {
	out := make([]string, 0, len(envVars))
	for _, ev := range envVars {
		out = append(out, EnvPrefix+ev.suffix+"\t"+ev.description)
	}
	slices.Sort(out)
	return out
}
