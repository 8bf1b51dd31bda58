// Package dsl holds the declarative rule data consumed by the formatting
// engine: spacing rules that shape the whitespace around an element, and
// indentation rules that place an element starting a line.
//
// Rules are immutable once built. They are authored with the fluent
// builders in this package:
//
//	s := dsl.NewSpacing()
//	s.Rule("lambda-colon").Inside(syntax.NodeLambda).After(syntax.TokColon).SingleOrNewline()
package dsl

import (
	"fmt"
	"slices"

	"github.com/yaklabco/gonixfmt/pkg/pattern"
	"github.com/yaklabco/gonixfmt/pkg/syntax"
)

// Location selects the whitespace a spacing rule controls, relative to the
// element it matched.
type Location uint8

const (
	// Before is the whitespace preceding the element.
	Before Location = iota
	// After is the whitespace following the element.
	After
	// Around is both.
	Around
)

func (l Location) String() string {
	switch l {
	case Before:
		return "before"
	case After:
		return "after"
	case Around:
		return "around"
	default:
		return fmt.Sprintf("Location(%d)", uint8(l))
	}
}

// SpacingValue is the shape a spacing rule gives to a whitespace run.
type SpacingValue uint8

const (
	// Single is exactly one space, joining lines.
	Single SpacingValue = iota
	// SingleOptionalNewline keeps line breaks, otherwise one space.
	SingleOptionalNewline
	// SingleOrNewline is a line break when the parent spans several lines,
	// otherwise one space.
	SingleOrNewline
	// Newline forces a line break, keeping existing blank lines.
	Newline
	// ExactNewline forces exactly one line break.
	ExactNewline
	// None removes the whitespace, joining lines.
	None
	// NoneOptionalNewline keeps line breaks, otherwise nothing.
	NoneOptionalNewline
	// NoneOrNewline is a line break when the parent spans several lines,
	// otherwise nothing.
	NoneOrNewline
)

//nolint:gochecknoglobals // Read-only lookup table.
var spacingNames = map[SpacingValue]string{
	Single:                "single",
	SingleOptionalNewline: "single-optional-newline",
	SingleOrNewline:       "single-or-newline",
	Newline:               "newline",
	ExactNewline:          "exact-newline",
	None:                  "none",
	NoneOptionalNewline:   "none-optional-newline",
	NoneOrNewline:         "none-or-newline",
}

func (v SpacingValue) String() string {
	if name, ok := spacingNames[v]; ok {
		return name
	}
	return fmt.Sprintf("SpacingValue(%d)", uint8(v))
}

// SpacingRule binds a pattern to the whitespace shape around matching elements.
type SpacingRule struct {
	// Name identifies the rule in edits, listings and configuration.
	Name string

	// When selects the elements the rule applies to.
	When *pattern.Pattern

	// Location is the whitespace run controlled by the rule.
	Location Location

	// Value is the shape given to that run.
	Value SpacingValue
}

// Pattern implements pattern.Rule.
func (r *SpacingRule) Pattern() *pattern.Pattern {
	return r.When
}

func (r *SpacingRule) String() string {
	return fmt.Sprintf("%s: %s %s %s", r.Name, r.Value, r.Location, r.When)
}

// SpacingDsl is an ordered collection of spacing rules.
type SpacingDsl struct {
	rules []*SpacingRule
}

// NewSpacing creates an empty spacing rule collection.
func NewSpacing() *SpacingDsl {
	return &SpacingDsl{}
}

// Add appends fully-formed rules.
func (d *SpacingDsl) Add(rules ...*SpacingRule) *SpacingDsl {
	d.rules = append(d.rules, rules...)
	return d
}

// Rule starts a new rule with the given name.
func (d *SpacingDsl) Rule(name string) *SpacingBuilder {
	return &SpacingBuilder{dsl: d, name: name}
}

// Rules returns the rules in declaration order.
func (d *SpacingDsl) Rules() []*SpacingRule {
	return slices.Clone(d.rules)
}

// Len returns the number of rules.
func (d *SpacingDsl) Len() int {
	return len(d.rules)
}

// Filter returns a new collection with the rules for which keep returns true.
func (d *SpacingDsl) Filter(keep func(name string) bool) *SpacingDsl {
	out := NewSpacing()
	for _, r := range d.rules {
		if keep(r.Name) {
			out.rules = append(out.rules, r)
		}
	}
	return out
}

// Set indexes the rules for matching.
func (d *SpacingDsl) Set() *pattern.Set[*SpacingRule] {
	return pattern.NewSet(d.rules...)
}

// SpacingBuilder assembles one spacing rule. Terminal methods such as Single
// or Newline append the rule to the collection.
type SpacingBuilder struct {
	dsl      *SpacingDsl
	name     string
	parents  []syntax.Kind
	kinds    []syntax.Kind
	extra    []*pattern.Pattern
	location Location
}

// Inside restricts the rule to elements whose parent has one of the kinds.
func (b *SpacingBuilder) Inside(kinds ...syntax.Kind) *SpacingBuilder {
	b.parents = append(b.parents, kinds...)
	return b
}

// Before targets the whitespace before elements of the given kinds.
func (b *SpacingBuilder) Before(kinds ...syntax.Kind) *SpacingBuilder {
	b.kinds = kinds
	b.location = Before
	return b
}

// After targets the whitespace after elements of the given kinds.
func (b *SpacingBuilder) After(kinds ...syntax.Kind) *SpacingBuilder {
	b.kinds = kinds
	b.location = After
	return b
}

// Around targets the whitespace on both sides of elements of the given kinds.
func (b *SpacingBuilder) Around(kinds ...syntax.Kind) *SpacingBuilder {
	b.kinds = kinds
	b.location = Around
	return b
}

// Between targets the whitespace separating an element of kind left from a
// following sibling of kind right.
func (b *SpacingBuilder) Between(left, right []syntax.Kind) *SpacingBuilder {
	b.kinds = right
	b.location = Before
	b.extra = append(b.extra, pattern.After(left...))
	return b
}

// When adds an extra condition.
func (b *SpacingBuilder) When(p *pattern.Pattern) *SpacingBuilder {
	b.extra = append(b.extra, p)
	return b
}

func (b *SpacingBuilder) Single() *SpacingDsl { return b.build(Single) }

func (b *SpacingBuilder) SingleOptionalNewline() *SpacingDsl {
	return b.build(SingleOptionalNewline)
}

func (b *SpacingBuilder) SingleOrNewline() *SpacingDsl { return b.build(SingleOrNewline) }

func (b *SpacingBuilder) Newline() *SpacingDsl { return b.build(Newline) }

func (b *SpacingBuilder) ExactNewline() *SpacingDsl { return b.build(ExactNewline) }

func (b *SpacingBuilder) None() *SpacingDsl { return b.build(None) }

func (b *SpacingBuilder) NoneOptionalNewline() *SpacingDsl {
	return b.build(NoneOptionalNewline)
}

func (b *SpacingBuilder) NoneOrNewline() *SpacingDsl { return b.build(NoneOrNewline) }

func (b *SpacingBuilder) build(value SpacingValue) *SpacingDsl {
	b.dsl.rules = append(b.dsl.rules, &SpacingRule{
		Name:     b.name,
		When:     compose(b.kinds, b.parents, b.extra),
		Location: b.location,
		Value:    value,
	})
	return b.dsl
}

// compose joins a kind filter, a parent filter and extra conditions.
func compose(kinds, parents []syntax.Kind, extra []*pattern.Pattern) *pattern.Pattern {
	var parts []*pattern.Pattern
	if len(kinds) > 0 {
		parts = append(parts, pattern.Kind(kinds...))
	}
	if len(parents) > 0 {
		parts = append(parts, pattern.Inside(parents...))
	}
	parts = append(parts, extra...)

	switch len(parts) {
	case 0:
		return pattern.Any()
	case 1:
		return parts[0]
	default:
		return pattern.And(parts...)
	}
}
