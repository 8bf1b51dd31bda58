package engine

import (
	"github.com/yaklabco/gonixfmt/pkg/dsl"
	"github.com/yaklabco/gonixfmt/pkg/pattern"
	"github.com/yaklabco/gonixfmt/pkg/syntax"
)

// applySpacing shapes the whitespace a spacing rule controls around e.
func applySpacing(m *Model, rule *dsl.SpacingRule, e syntax.Element) {
	switch rule.Location {
	case dsl.Before:
		applySpacingValue(m.BlockFor(e, BlockBefore), rule, e)
	case dsl.After:
		applySpacingValue(m.BlockFor(e, BlockAfter), rule, e)
	case dsl.Around:
		applySpacingValue(m.BlockFor(e, BlockBefore), rule, e)
		applySpacingValue(m.BlockFor(e, BlockAfter), rule, e)
	}
}

func applySpacingValue(b *SpaceBlock, rule *dsl.SpacingRule, e syntax.Element) {
	// Nothing precedes the first element of a file.
	if b.atFileStart && b.rng.StartOffset == 0 && b.rng.EndOffset == e.Range().StartOffset {
		b.SetText("", rule.Name)
		return
	}

	switch rule.Value {
	case dsl.Single:
		b.SetText(" ", rule.Name)
	case dsl.SingleOptionalNewline:
		if !b.HasNewline() {
			b.SetText(" ", rule.Name)
		}
	case dsl.SingleOrNewline:
		if parentMultiline(e) {
			b.SetLineBreakPreservingExistingNewlines(rule.Name)
		} else {
			b.SetText(" ", rule.Name)
		}
	case dsl.Newline:
		b.SetLineBreakPreservingExistingNewlines(rule.Name)
	case dsl.ExactNewline:
		b.SetText(b.eol, rule.Name)
	case dsl.None:
		b.SetText("", rule.Name)
	case dsl.NoneOptionalNewline:
		if !b.HasNewline() {
			b.SetText("", rule.Name)
		}
	case dsl.NoneOrNewline:
		if parentMultiline(e) {
			b.SetLineBreakPreservingExistingNewlines(rule.Name)
		} else {
			b.SetText("", rule.Name)
		}
	}
}

// parentMultiline reports whether the construct around e was laid out over
// several lines in the source.
func parentMultiline(e syntax.Element) bool {
	if parent := e.Parent(); parent != nil {
		return pattern.IsMultiline(syntax.NodeElement(parent))
	}
	return pattern.IsMultiline(e)
}
