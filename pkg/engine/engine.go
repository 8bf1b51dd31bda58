// Package engine computes the whitespace edits that bring a syntax tree into
// its canonical layout.
//
// Format runs three passes over the tree in order:
//
//  1. Spacing: every matching spacing rule shapes the whitespace around each
//     significant element. This may add or remove line breaks.
//  2. Indentation: every element that now starts a line is indented by the
//     single indentation rule that matches it, or one level deeper than its
//     base when none does.
//  3. Fix-ups: narrow rewrites that need final columns, such as re-indenting
//     the body of multi-line indented strings.
//
// Passes share a Model, which records changes without touching the tree.
// Only whitespace and the literal-internal fix-ups are ever edited.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/yaklabco/gonixfmt/internal/logging"
	"github.com/yaklabco/gonixfmt/pkg/dsl"
	"github.com/yaklabco/gonixfmt/pkg/syntax"
)

// Default option values.
const (
	DefaultIndentWidth   = 2
	DefaultMaxBlankLines = 1
)

// Options tune a formatting run.
type Options struct {
	// IndentWidth is the number of spaces per indentation level.
	IndentWidth int

	// MaxBlankLines caps the number of consecutive blank lines kept when a
	// line is re-indented.
	MaxBlankLines int

	// DisabledFixes lists fix-ups to skip, by name.
	DisabledFixes []string
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		IndentWidth:   DefaultIndentWidth,
		MaxBlankLines: DefaultMaxBlankLines,
	}
}

func (o Options) withDefaults() Options {
	if o.IndentWidth <= 0 {
		o.IndentWidth = DefaultIndentWidth
	}
	if o.MaxBlankLines < 0 {
		o.MaxBlankLines = DefaultMaxBlankLines
	}
	return o
}

// Format computes the edits that format tree according to the spacing and
// indentation rules. The tree is not modified.
//
// An inconsistent indentation rule set fails with an *IndentConflictError,
// which matches ErrConfiguration. No partial diff is returned on error.
// ctx is checked between passes.
func Format(
	ctx context.Context,
	tree *syntax.Tree,
	spacing *dsl.SpacingDsl,
	indent *dsl.IndentDsl,
	opts Options,
) (*Diff, error) {
	if tree == nil || tree.Root == nil {
		return &Diff{}, nil
	}
	if spacing == nil {
		spacing = dsl.NewSpacing()
	}
	if indent == nil {
		indent = dsl.NewIndent()
	}

	logger := logging.FromContext(ctx)
	model := NewModel(tree, opts)
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("format cancelled: %w", err)
	}

	spacingSet := spacing.Set()
	for e := range syntax.WalkNonWhitespace(tree.Root) {
		for _, rule := range spacingSet.Matching(e) {
			applySpacing(model, rule, e)
		}
	}
	logger.Debug("spacing pass done",
		logging.FieldPath, tree.Path,
		logging.FieldPass, "spacing",
		logging.FieldDuration, time.Since(start))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("format cancelled: %w", err)
	}

	in := &indenter{
		model:   model,
		rules:   indent.Set(),
		anchors: indent.AnchorSet(),
	}
	for e := range syntax.WalkNonWhitespace(tree.Root) {
		if err := in.indent(e); err != nil {
			return nil, err
		}
	}
	logger.Debug("indentation pass done",
		logging.FieldPath, tree.Path,
		logging.FieldPass, "indentation",
		logging.FieldDuration, time.Since(start))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("format cancelled: %w", err)
	}

	for e := range syntax.WalkNonWhitespace(tree.Root) {
		applyFixes(model, e)
	}

	diff, err := model.IntoDiff()
	if err != nil {
		return nil, err
	}
	logger.Debug("format done",
		logging.FieldPath, tree.Path,
		logging.FieldEdits, diff.Len(),
		logging.FieldDuration, time.Since(start))

	return diff, nil
}
