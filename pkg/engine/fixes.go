package engine

import (
	"strconv"
	"strings"

	"github.com/yaklabco/gonixfmt/pkg/syntax"
)

// Names of the built-in fix-ups, usable in Options.DisabledFixes.
const (
	FixStringIndent = "string-indent"
	FixURIQuote     = "uri-to-string"
)

// applyFixes runs the fix-ups that apply to e. Each one only reads final
// block state and writes raw edits inside the element, so their order does
// not matter.
func applyFixes(m *Model, e syntax.Element) {
	switch e.Kind() {
	case syntax.NodeString:
		if m.fixEnabled(FixStringIndent) {
			fixStringIndent(m, e.Node())
		}
	case syntax.TokURI:
		if m.fixEnabled(FixURIQuote) {
			fixURI(m, e.Token())
		}
	}
}

func (m *Model) fixEnabled(name string) bool {
	for _, d := range m.opts.DisabledFixes {
		if d == name {
			return false
		}
	}
	return true
}

// fixStringIndent shifts every content line of a multi-line indented string
// by the amount its opening line moved.
func fixStringIndent(m *Model, n *syntax.Node) {
	open, ok := n.ChildToken(syntax.TokIndQuote)
	if !ok || open.Index != n.FirstToken {
		return
	}

	el := syntax.NodeElement(n)
	if !el.ContainsNewline() {
		return
	}
	delta := m.LineIndent(el) - m.tree.OriginalIndent(n.Range().StartOffset)
	if delta == 0 {
		return
	}

	for _, child := range n.Children {
		tok := child.Token()
		if tok == nil || tok.Kind != syntax.TokStringContent {
			continue
		}
		m.shifts[tok.Index] = delta
		shiftContentLines(m, tok, delta)
	}
}

func shiftContentLines(m *Model, tok *syntax.Token, delta int) {
	text := tok.Text()
	for i := 0; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}
		lineStart := i + 1
		lineEnd := strings.IndexByte(text[lineStart:], '\n')
		if lineEnd < 0 {
			lineEnd = len(text)
		} else {
			lineEnd += lineStart
		}

		line := strings.TrimRight(text[lineStart:lineEnd], "\r")
		blank := strings.TrimLeft(line, " \t") == ""
		// Whitespace-only lines are left alone unless the string continues
		// on them with a delimiter or an interpolation.
		if blank && lineEnd < len(text) {
			continue
		}

		at := tok.StartOffset + lineStart
		if delta > 0 {
			m.RawEdit(syntax.Range{StartOffset: at, EndOffset: at}, strings.Repeat(" ", delta), FixStringIndent)
			continue
		}
		remove := min(-delta, leadingSpaces(line))
		if remove > 0 {
			m.RawEdit(syntax.Range{StartOffset: at, EndOffset: at + remove}, "", FixStringIndent)
		}
	}
}

// fixURI rewrites a bare URI literal as a quoted string.
func fixURI(m *Model, tok *syntax.Token) {
	m.RawEdit(tok.Range(), strconv.Quote(tok.Text()), FixURIQuote)
}

func leadingSpaces(s string) int {
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}
