// Package pattern matches syntax elements against declarative predicates.
//
// A Pattern is plain data: an optional set of kinds the element must have and
// a side-effect free predicate. Rules in the dsl package carry a Pattern, and
// a Set finds the rules whose pattern holds for a given element.
package pattern

import (
	"slices"
	"strings"

	"github.com/yaklabco/gonixfmt/pkg/syntax"
)

// Pattern is a predicate over a syntax element.
// A nil Pattern matches everything.
type Pattern struct {
	// kinds restricts the element kind. Empty means any kind.
	kinds []syntax.Kind

	// pred is evaluated after the kind check. Nil means true.
	pred func(syntax.Element) bool

	desc string
}

// Matches reports whether the element satisfies the pattern.
func (p *Pattern) Matches(e syntax.Element) bool {
	if p == nil {
		return true
	}
	if len(p.kinds) > 0 && !slices.Contains(p.kinds, e.Kind()) {
		return false
	}
	return p.pred == nil || p.pred(e)
}

// Kinds returns the kinds this pattern is restricted to, or nil.
func (p *Pattern) Kinds() []syntax.Kind {
	if p == nil {
		return nil
	}
	return p.kinds
}

// String describes the pattern for listings and diagnostics.
func (p *Pattern) String() string {
	if p == nil || p.desc == "" {
		return "*"
	}
	return p.desc
}

// Kind matches elements of any of the given kinds.
func Kind(kinds ...syntax.Kind) *Pattern {
	return &Pattern{kinds: kinds, desc: kindList(kinds)}
}

// Any matches every element.
func Any() *Pattern {
	return &Pattern{desc: "*"}
}

// Predicate wraps an arbitrary predicate. desc is used by String.
func Predicate(desc string, pred func(syntax.Element) bool) *Pattern {
	return &Pattern{pred: pred, desc: desc}
}

// Inside matches elements whose parent has one of the given kinds.
func Inside(kinds ...syntax.Kind) *Pattern {
	return &Pattern{
		pred: func(e syntax.Element) bool {
			parent := e.Parent()
			return parent != nil && slices.Contains(kinds, parent.Kind)
		},
		desc: "inside(" + kindList(kinds) + ")",
	}
}

// Within matches elements with any ancestor of one of the given kinds.
func Within(kinds ...syntax.Kind) *Pattern {
	return &Pattern{
		pred: func(e syntax.Element) bool {
			for n := range e.Ancestors() {
				if slices.Contains(kinds, n.Kind) {
					return true
				}
			}
			return false
		},
		desc: "within(" + kindList(kinds) + ")",
	}
}

// Text matches tokens whose text equals one of the given strings.
func Text(texts ...string) *Pattern {
	return &Pattern{
		pred: func(e syntax.Element) bool {
			return e.IsToken() && slices.Contains(texts, e.Text())
		},
		desc: "text(" + strings.Join(texts, "|") + ")",
	}
}

// FirstChild matches elements that are the first non-trivia child of their parent.
func FirstChild() *Pattern {
	return &Pattern{
		pred: func(e syntax.Element) bool {
			if e.Parent() == nil {
				return false
			}
			_, ok := e.PrevNonTrivia()
			return !ok
		},
		desc: "first-child",
	}
}

// LastChild matches elements that are the last non-trivia child of their parent.
func LastChild() *Pattern {
	return &Pattern{
		pred: func(e syntax.Element) bool {
			if e.Parent() == nil {
				return false
			}
			_, ok := e.NextNonTrivia()
			return !ok
		},
		desc: "last-child",
	}
}

// After matches elements whose previous non-trivia sibling has one of the kinds.
func After(kinds ...syntax.Kind) *Pattern {
	return &Pattern{
		pred: func(e syntax.Element) bool {
			prev, ok := e.PrevNonTrivia()
			return ok && slices.Contains(kinds, prev.Kind())
		},
		desc: "after(" + kindList(kinds) + ")",
	}
}

// Before matches elements whose next non-trivia sibling has one of the kinds.
func Before(kinds ...syntax.Kind) *Pattern {
	return &Pattern{
		pred: func(e syntax.Element) bool {
			next, ok := e.NextNonTrivia()
			return ok && slices.Contains(kinds, next.Kind())
		},
		desc: "before(" + kindList(kinds) + ")",
	}
}

// OnlyTrivia matches whitespace and comment tokens.
func OnlyTrivia() *Pattern {
	return &Pattern{
		kinds: []syntax.Kind{syntax.TokWhitespace, syntax.TokComment},
		desc:  "trivia",
	}
}

// Multiline matches nodes whose source text contains a line break outside of
// string literals, and tokens with a line break in their text.
func Multiline() *Pattern {
	return &Pattern{
		pred: IsMultiline,
		desc: "multiline",
	}
}

// IsMultiline reports whether the element was laid out over several lines in
// the source. Line breaks inside strings do not count; line comments do,
// because they always end a line.
func IsMultiline(e syntax.Element) bool {
	if e.IsToken() {
		return e.ContainsNewline()
	}
	n := e.Node()
	tree := n.Tree
	for i := n.FirstToken; i <= n.LastToken && i < len(tree.Tokens); i++ {
		tok := tree.Tokens[i]
		switch tok.Kind {
		case syntax.TokWhitespace:
			if strings.Contains(tok.Text(), "\n") {
				return true
			}
		case syntax.TokComment:
			if strings.HasPrefix(tok.Text(), "#") && i < n.LastToken {
				return true
			}
		}
	}
	return false
}

// And matches when every pattern matches. Kind filters are intersected so
// that a Set can still index the result by kind.
func And(patterns ...*Pattern) *Pattern {
	var kinds []syntax.Kind
	descs := make([]string, 0, len(patterns))
	for _, p := range patterns {
		descs = append(descs, p.String())
		if len(p.Kinds()) == 0 {
			continue
		}
		if kinds == nil {
			kinds = slices.Clone(p.kinds)
			continue
		}
		kinds = slices.DeleteFunc(kinds, func(k syntax.Kind) bool {
			return !slices.Contains(p.kinds, k)
		})
		if len(kinds) == 0 {
			// Contradictory kind filters: nothing can match.
			return &Pattern{pred: func(syntax.Element) bool { return false }, desc: strings.Join(descs, " & ")}
		}
	}
	return &Pattern{
		kinds: kinds,
		pred: func(e syntax.Element) bool {
			for _, p := range patterns {
				if !p.Matches(e) {
					return false
				}
			}
			return true
		},
		desc: strings.Join(descs, " & "),
	}
}

// Or matches when any pattern matches.
func Or(patterns ...*Pattern) *Pattern {
	descs := make([]string, 0, len(patterns))
	var kinds []syntax.Kind
	indexable := true
	for _, p := range patterns {
		descs = append(descs, p.String())
		if len(p.Kinds()) == 0 {
			indexable = false
		}
		for _, k := range p.Kinds() {
			if !slices.Contains(kinds, k) {
				kinds = append(kinds, k)
			}
		}
	}
	if !indexable {
		kinds = nil
	}
	return &Pattern{
		kinds: kinds,
		pred: func(e syntax.Element) bool {
			for _, p := range patterns {
				if p.Matches(e) {
					return true
				}
			}
			return false
		},
		desc: "(" + strings.Join(descs, " | ") + ")",
	}
}

// Not matches when p does not.
func Not(p *Pattern) *Pattern {
	return &Pattern{
		pred: func(e syntax.Element) bool { return !p.Matches(e) },
		desc: "!" + p.String(),
	}
}

func kindList(kinds []syntax.Kind) string {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}
	return strings.Join(names, "|")
}
