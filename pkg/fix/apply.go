package fix

import "fmt"

// ApplyEdits splices edits into content and returns the new text. The edits
// must already be sorted and disjoint, as PrepareEdits returns them. The
// result equals splicing them one at a time from the last offset to the
// first; it is built in a single forward pass instead.
func ApplyEdits(content []byte, edits []TextEdit) []byte {
	if len(edits) == 0 {
		return content
	}

	size := len(content)
	for _, e := range edits {
		size += len(e.NewText) - e.Len()
	}

	out := make([]byte, 0, size)
	prev := 0
	for _, e := range edits {
		out = append(out, content[prev:e.StartOffset]...)
		out = append(out, e.NewText...)
		prev = e.EndOffset
	}
	return append(out, content[prev:]...)
}

// Apply prepares edits against content and applies them. Invalid or
// overlapping edits leave content untouched and return the preparation error.
func Apply(content []byte, edits []TextEdit) ([]byte, error) {
	prepared, err := PrepareEdits(edits, len(content))
	if err != nil {
		return content, fmt.Errorf("apply %d edits: %w", len(edits), err)
	}
	return ApplyEdits(content, prepared), nil
}
