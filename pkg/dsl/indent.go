package dsl

import (
	"fmt"
	"slices"

	"github.com/yaklabco/gonixfmt/pkg/pattern"
	"github.com/yaklabco/gonixfmt/pkg/syntax"
)

// IndentValue is how an indentation rule positions an element.
type IndentValue uint8

const (
	// Indent places the element one level deeper than its base.
	Indent IndentValue = iota
	// Align places the element at its base column.
	Align
	// Column places the element at a fixed column.
	Column
)

func (v IndentValue) String() string {
	switch v {
	case Indent:
		return "indent"
	case Align:
		return "align"
	case Column:
		return "column"
	default:
		return fmt.Sprintf("IndentValue(%d)", uint8(v))
	}
}

// IndentRule places elements that start a line.
type IndentRule struct {
	Name  string
	When  *pattern.Pattern
	Value IndentValue

	// Col is the target column for Column rules.
	Col int
}

// Pattern implements pattern.Rule.
func (r *IndentRule) Pattern() *pattern.Pattern {
	return r.When
}

func (r *IndentRule) String() string {
	if r.Value == Column {
		return fmt.Sprintf("%s: column %d %s", r.Name, r.Col, r.When)
	}
	return fmt.Sprintf("%s: %s %s", r.Name, r.Value, r.When)
}

// Anchor marks ancestors whose line indentation serves as the base for the
// elements nested in them.
type Anchor struct {
	Name string
	When *pattern.Pattern
}

// Pattern implements pattern.Rule.
func (a *Anchor) Pattern() *pattern.Pattern {
	return a.When
}

// IndentDsl is an ordered collection of indentation rules and anchors.
type IndentDsl struct {
	rules   []*IndentRule
	anchors []*Anchor
}

// NewIndent creates an empty indentation rule collection.
func NewIndent() *IndentDsl {
	return &IndentDsl{}
}

// Anchor declares an anchor.
func (d *IndentDsl) Anchor(name string, when *pattern.Pattern) *IndentDsl {
	d.anchors = append(d.anchors, &Anchor{Name: name, When: when})
	return d
}

// Add appends fully-formed rules.
func (d *IndentDsl) Add(rules ...*IndentRule) *IndentDsl {
	d.rules = append(d.rules, rules...)
	return d
}

// Rule starts a new rule with the given name.
func (d *IndentDsl) Rule(name string) *IndentBuilder {
	return &IndentBuilder{dsl: d, name: name}
}

// Rules returns the rules in declaration order.
func (d *IndentDsl) Rules() []*IndentRule {
	return slices.Clone(d.rules)
}

// Anchors returns the anchors in declaration order.
func (d *IndentDsl) Anchors() []*Anchor {
	return slices.Clone(d.anchors)
}

// Len returns the number of rules, anchors excluded.
func (d *IndentDsl) Len() int {
	return len(d.rules)
}

// Filter returns a new collection with the rules for which keep returns true.
// Anchors are always kept.
func (d *IndentDsl) Filter(keep func(name string) bool) *IndentDsl {
	out := &IndentDsl{anchors: slices.Clone(d.anchors)}
	for _, r := range d.rules {
		if keep(r.Name) {
			out.rules = append(out.rules, r)
		}
	}
	return out
}

// Set indexes the rules for matching.
func (d *IndentDsl) Set() *pattern.Set[*IndentRule] {
	return pattern.NewSet(d.rules...)
}

// AnchorSet indexes the anchors for matching.
func (d *IndentDsl) AnchorSet() *pattern.Set[*Anchor] {
	return pattern.NewSet(d.anchors...)
}

// IndentBuilder assembles one indentation rule.
type IndentBuilder struct {
	dsl     *IndentDsl
	name    string
	parents []syntax.Kind
	kinds   []syntax.Kind
	extra   []*pattern.Pattern
}

// Inside restricts the rule to elements whose parent has one of the kinds.
func (b *IndentBuilder) Inside(kinds ...syntax.Kind) *IndentBuilder {
	b.parents = append(b.parents, kinds...)
	return b
}

// Matching restricts the rule to elements of the given kinds.
func (b *IndentBuilder) Matching(kinds ...syntax.Kind) *IndentBuilder {
	b.kinds = append(b.kinds, kinds...)
	return b
}

// NotMatching excludes elements of the given kinds.
func (b *IndentBuilder) NotMatching(kinds ...syntax.Kind) *IndentBuilder {
	b.extra = append(b.extra, pattern.Not(pattern.Kind(kinds...)))
	return b
}

// When adds an extra condition.
func (b *IndentBuilder) When(p *pattern.Pattern) *IndentBuilder {
	b.extra = append(b.extra, p)
	return b
}

func (b *IndentBuilder) Indent() *IndentDsl { return b.build(Indent, 0) }

func (b *IndentBuilder) Align() *IndentDsl { return b.build(Align, 0) }

func (b *IndentBuilder) Column(col int) *IndentDsl { return b.build(Column, col) }

func (b *IndentBuilder) build(value IndentValue, col int) *IndentDsl {
	b.dsl.rules = append(b.dsl.rules, &IndentRule{
		Name:  b.name,
		When:  compose(b.kinds, b.parents, b.extra),
		Value: value,
		Col:   col,
	})
	return b.dsl
}
