package syntax

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders the tree under root, one element per line, indented by depth:
//
//	NODE_ROOT 0..5
//	  NODE_IDENT 0..1
//	    TOKEN_IDENT 0..1 "x"
func Dump(root *Node) string {
	var b strings.Builder
	dumpElement(&b, NodeElement(root), 0)
	return b.String()
}

func dumpElement(b *strings.Builder, e Element, depth int) {
	r := e.Range()
	b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(b, "%s %d..%d", e.Kind(), r.StartOffset, r.EndOffset)
	if e.IsToken() {
		b.WriteByte(' ')
		b.WriteString(strconv.Quote(e.Text()))
	}
	b.WriteByte('\n')

	if n := e.Node(); n != nil {
		for _, child := range n.Children {
			dumpElement(b, child, depth+1)
		}
	}
}
