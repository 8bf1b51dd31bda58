package engine

import (
	"github.com/yaklabco/gonixfmt/pkg/fix"
)

// Diff is the result of a formatting run: edits sorted by offset, pairwise
// disjoint, to be applied to the original content. It holds no reference to
// the tree it was computed from.
type Diff struct {
	Edits []fix.TextEdit
}

// IsEmpty reports whether the content is already formatted.
func (d *Diff) IsEmpty() bool {
	return d == nil || len(d.Edits) == 0
}

// Len returns the number of edits.
func (d *Diff) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Edits)
}

// Apply returns content with the edits applied. content must be the text the
// diff was computed from.
func (d *Diff) Apply(content []byte) []byte {
	if d.IsEmpty() {
		return content
	}
	return fix.ApplyEdits(content, d.Edits)
}

// Reasons returns how many edits each rule produced.
func (d *Diff) Reasons() map[string]int {
	counts := make(map[string]int)
	if d == nil {
		return counts
	}
	for _, e := range d.Edits {
		counts[e.Reason]++
	}
	return counts
}
