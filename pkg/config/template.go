package config

import (
	"bytes"
	"fmt"
	"strings"
)

// commentWrapWidth is the maximum width of wrapped comments in templates.
const commentWrapWidth = 70

// RuleInfo describes a rule for template generation.
type RuleInfo struct {
	Name        string
	Description string
}

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full lists every rule with its description.
	Full bool

	// Rules is used by full templates.
	Rules []RuleInfo
}

// GenerateTemplate creates a commented configuration file template.
func GenerateTemplate(opts TemplateOptions) []byte {
	var buf bytes.Buffer

	buf.WriteString(`# gonixfmt configuration
# See: https://github.com/yaklabco/gonixfmt

# Spaces per indentation level
indent_width: 2

# Consecutive blank lines kept when a line is re-indented
max_blank_lines: 1

# File extensions formatted when walking directories
extensions:
  - .nix

# File patterns to skip (glob patterns)
# ignore:
#   - "vendor/**"
#   - "result/**"

# Format fenced nix code blocks in Markdown files
# markdown:
#   enabled: true
#   detect_untagged: false

# Keep a copy of each file before rewriting it
backups:
  enabled: false
  mode: sidecar
`)

	if !opts.Full || len(opts.Rules) == 0 {
		buf.WriteString(`
# Disable individual rules by name (see: gonixfmt rules)
# rules:
#   let-in:
#     enabled: false
`)
		return buf.Bytes()
	}

	buf.WriteString("\n# Every rule is enabled by default.\nrules:\n")
	for _, rule := range opts.Rules {
		for _, line := range wrapComment(rule.Description, commentWrapWidth) {
			fmt.Fprintf(&buf, "  # %s\n", line)
		}
		fmt.Fprintf(&buf, "  %s:\n    enabled: true\n", rule.Name)
	}
	return buf.Bytes()
}

// wrapComment breaks text into lines no wider than width.
func wrapComment(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}
