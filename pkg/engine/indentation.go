package engine

import (
	"github.com/yaklabco/gonixfmt/pkg/dsl"
	"github.com/yaklabco/gonixfmt/pkg/pattern"
	"github.com/yaklabco/gonixfmt/pkg/syntax"
)

// defaultIndentReason is recorded for blocks indented without a matching rule.
const defaultIndentReason = "default-indent"

type indenter struct {
	model   *Model
	rules   *pattern.Set[*dsl.IndentRule]
	anchors *pattern.Set[*dsl.Anchor]
}

// indent places e if it starts a line. It returns an *IndentConflictError
// when more than one rule matches.
func (in *indenter) indent(e syntax.Element) error {
	parent := e.Parent()
	if parent == nil {
		return nil
	}

	block := in.model.BlockFor(e, BlockBefore)
	if !block.HasNewline() {
		return nil
	}
	// The head of a construct is placed together with the construct.
	if parent.Range().StartOffset == e.Range().StartOffset {
		return nil
	}

	matching := in.rules.Matching(e)
	switch len(matching) {
	case 0:
		block.SetIndent(in.base(e)+in.model.opts.IndentWidth, defaultIndentReason)
	case 1:
		rule := matching[0]
		block.SetIndent(in.column(rule, e), rule.Name)
	default:
		return in.conflict(e, matching)
	}
	return nil
}

func (in *indenter) column(rule *dsl.IndentRule, e syntax.Element) int {
	switch rule.Value {
	case dsl.Column:
		return rule.Col
	case dsl.Align:
		return in.base(e)
	default:
		return in.base(e) + in.model.opts.IndentWidth
	}
}

// base returns the line indentation of the nearest ancestor of e that is an
// anchor or starts a line. The root always qualifies.
func (in *indenter) base(e syntax.Element) int {
	for n := range e.Ancestors() {
		el := syntax.NodeElement(n)
		if n.Parent == nil || in.anchors.Any(el) || in.model.StartsLine(el) {
			return in.model.LineIndent(el)
		}
	}
	return 0
}

func (in *indenter) conflict(e syntax.Element, rules []*dsl.IndentRule) error {
	tree := in.model.tree
	line, col := tree.LineAt(e.Range().StartOffset)
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Name)
	}
	return &IndentConflictError{
		Path:   tree.Path,
		Line:   line,
		Column: col,
		Kind:   e.Kind().String(),
		Rules:  names,
	}
}
