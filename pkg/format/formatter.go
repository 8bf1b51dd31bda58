// Package format formats single files: it parses Nix source, runs the
// formatting engine with the configured rules, verifies that the result is
// stable, and writes it back safely.
package format

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/gonixfmt/pkg/config"
	"github.com/yaklabco/gonixfmt/pkg/engine"
	"github.com/yaklabco/gonixfmt/pkg/parser/nix"
	"github.com/yaklabco/gonixfmt/pkg/rules"
)

// Output is the result of formatting one piece of Nix source.
type Output struct {
	// Content is the formatted source. It aliases the input when nothing
	// changed.
	Content []byte

	// Edits is the number of edits applied.
	Edits int

	// Reasons counts edits per rule name.
	Reasons map[string]int
}

// Changed reports whether formatting altered the source.
func (o *Output) Changed() bool {
	return o != nil && o.Edits > 0
}

// Formatter formats Nix source with a fixed rule set. It is safe for
// concurrent use.
type Formatter struct {
	parser *nix.Parser
	rules  *rules.Resolved
	opts   engine.Options
}

// NewFormatter builds a Formatter from a registry and a configuration.
// Disabling an unknown rule fails with an error wrapping rules.ErrUnknownRule.
func NewFormatter(registry *rules.Registry, cfg *config.Config) (*Formatter, error) {
	if registry == nil {
		registry = rules.Default()
	}

	resolved, err := registry.Resolve(cfg.DisabledRules())
	if err != nil {
		return nil, fmt.Errorf("resolve rules: %w", err)
	}

	return &Formatter{
		parser: nix.New(),
		rules:  resolved,
		opts: engine.Options{
			IndentWidth:   cfg.EffectiveIndentWidth(),
			MaxBlankLines: cfg.EffectiveMaxBlankLines(),
			DisabledFixes: resolved.DisabledFixes,
		},
	}, nil
}

// Format formats src. path is used in error messages only.
//
// The formatted result is formatted a second time; if that produces further
// edits the rule set is not stable and an error wrapping ErrNotIdempotent is
// returned.
func (f *Formatter) Format(ctx context.Context, path string, src []byte) (*Output, error) {
	out, err := f.pass(ctx, path, src)
	if err != nil {
		return nil, err
	}
	if !out.Changed() {
		return out, nil
	}

	again, err := f.pass(ctx, path, out.Content)
	if err != nil {
		if errors.Is(err, ErrParseFailure) {
			return nil, fmt.Errorf("%w: %s: formatted output does not parse: %w", ErrNotIdempotent, path, err)
		}
		return nil, err
	}
	if again.Changed() {
		return nil, fmt.Errorf("%w: %s: second pass produced %d edits", ErrNotIdempotent, path, again.Edits)
	}
	return out, nil
}

// Code formats a code fragment, as found in a Markdown block.
func (f *Formatter) Code(ctx context.Context, code []byte) ([]byte, error) {
	out, err := f.Format(ctx, "", code)
	if err != nil {
		return nil, err
	}
	return out.Content, nil
}

func (f *Formatter) pass(ctx context.Context, path string, src []byte) (*Output, error) {
	tree, err := f.parser.Parse(ctx, path, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("processing cancelled: %w", err)
		}
		return nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
	}

	diff, err := engine.Format(ctx, tree, f.rules.Spacing, f.rules.Indent, f.opts)
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", path, err)
	}

	return &Output{
		Content: diff.Apply(src),
		Edits:   diff.Len(),
		Reasons: diff.Reasons(),
	}, nil
}
