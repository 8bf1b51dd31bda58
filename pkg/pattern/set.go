package pattern

import (
	"slices"

	"github.com/yaklabco/gonixfmt/pkg/syntax"
)

// Rule is anything guarded by a Pattern.
type Rule interface {
	Pattern() *Pattern
}

// Set is an ordered collection of rules. Rules whose pattern carries a kind
// filter are indexed by kind; the rest are checked against every element.
// A Set is read-only after construction and safe for concurrent use.
type Set[T Rule] struct {
	rules     []T
	byKind    map[syntax.Kind][]int
	unindexed []int
}

// NewSet builds a Set preserving the declaration order of rules.
func NewSet[T Rule](rules ...T) *Set[T] {
	s := &Set[T]{
		rules:  slices.Clone(rules),
		byKind: make(map[syntax.Kind][]int),
	}
	for i, r := range s.rules {
		kinds := r.Pattern().Kinds()
		if len(kinds) == 0 {
			s.unindexed = append(s.unindexed, i)
			continue
		}
		for _, k := range kinds {
			s.byKind[k] = append(s.byKind[k], i)
		}
	}
	return s
}

// Len returns the number of rules.
func (s *Set[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// All returns the rules in declaration order.
func (s *Set[T]) All() []T {
	if s == nil {
		return nil
	}
	return slices.Clone(s.rules)
}

// Matching returns the rules whose pattern holds for e, in declaration order.
func (s *Set[T]) Matching(e syntax.Element) []T {
	if s == nil {
		return nil
	}
	candidates := append(slices.Clone(s.byKind[e.Kind()]), s.unindexed...)
	slices.Sort(candidates)
	candidates = slices.Compact(candidates)

	var out []T
	for _, i := range candidates {
		if s.rules[i].Pattern().Matches(e) {
			out = append(out, s.rules[i])
		}
	}
	return out
}

// Any reports whether at least one rule matches e.
func (s *Set[T]) Any(e syntax.Element) bool {
	if s == nil {
		return false
	}
	for _, i := range s.byKind[e.Kind()] {
		if s.rules[i].Pattern().Matches(e) {
			return true
		}
	}
	for _, i := range s.unindexed {
		if s.rules[i].Pattern().Matches(e) {
			return true
		}
	}
	return false
}
