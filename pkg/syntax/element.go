package syntax

import "iter"

// Token is a classified span of bytes. Tokens are contiguous and
// non-overlapping, covering [0, len(Tree.Content)).
type Token struct {
	// Kind classifies what this token represents.
	Kind Kind

	// StartOffset is the byte index where this token begins (inclusive).
	StartOffset int

	// EndOffset is the byte index where this token ends (exclusive).
	EndOffset int

	// Index is the position of this token in Tree.Tokens.
	Index int

	// Parent is the innermost node containing this token.
	Parent *Node

	// Tree is a back-reference to the containing Tree.
	Tree *Tree

	// slot is the position of this token in Parent.Children.
	slot int
}

// Text returns the source text of this token.
func (t *Token) Text() string {
	if t.Tree == nil {
		return ""
	}
	return t.Tree.Text(t.Range())
}

// Range returns the byte range of this token.
func (t *Token) Range() Range {
	return Range{StartOffset: t.StartOffset, EndOffset: t.EndOffset}
}

// Len returns the length of this token in bytes.
func (t *Token) Len() int {
	return t.EndOffset - t.StartOffset
}

// Node is an interior element of the tree. Its token span is contiguous.
type Node struct {
	// Kind identifies what type of node this is.
	Kind Kind

	// Parent is nil for the root.
	Parent *Node

	// Children holds nodes and tokens, trivia included, in textual order.
	Children []Element

	// Token span (indices into Tree.Tokens), inclusive on both ends.
	FirstToken int
	LastToken  int

	// Tree is a back-reference to the containing Tree.
	Tree *Tree

	// slot is the position of this node in Parent.Children.
	slot int
}

// Range returns the byte range covered by this node.
func (n *Node) Range() Range {
	if n.Tree == nil || n.FirstToken < 0 || n.LastToken < n.FirstToken ||
		n.LastToken >= len(n.Tree.Tokens) {
		return Range{}
	}
	return Range{
		StartOffset: n.Tree.Tokens[n.FirstToken].StartOffset,
		EndOffset:   n.Tree.Tokens[n.LastToken].EndOffset,
	}
}

// Text returns the source text for this node.
func (n *Node) Text() string {
	if n.Tree == nil {
		return ""
	}
	return n.Tree.Text(n.Range())
}

// ChildNodes returns the direct children that are nodes.
func (n *Node) ChildNodes() []*Node {
	var nodes []*Node
	for _, child := range n.Children {
		if child.node != nil {
			nodes = append(nodes, child.node)
		}
	}
	return nodes
}

// ChildToken returns the first direct child token of the given kind.
func (n *Node) ChildToken(kind Kind) (*Token, bool) {
	for _, child := range n.Children {
		if child.token != nil && child.token.Kind == kind {
			return child.token, true
		}
	}
	return nil, false
}

// Element is either a node or a token. The zero value is neither.
type Element struct {
	node  *Node
	token *Token
}

// NodeElement wraps a node.
func NodeElement(n *Node) Element {
	return Element{node: n}
}

// TokenElement wraps a token.
func TokenElement(t *Token) Element {
	return Element{token: t}
}

// Node returns the wrapped node, or nil for tokens.
func (e Element) Node() *Node {
	return e.node
}

// Token returns the wrapped token, or nil for nodes.
func (e Element) Token() *Token {
	return e.token
}

// IsNode returns true if the element wraps a node.
func (e Element) IsNode() bool {
	return e.node != nil
}

// IsToken returns true if the element wraps a token.
func (e Element) IsToken() bool {
	return e.token != nil
}

// IsZero returns true for the zero Element.
func (e Element) IsZero() bool {
	return e.node == nil && e.token == nil
}

// Kind returns the kind of the wrapped node or token.
func (e Element) Kind() Kind {
	switch {
	case e.node != nil:
		return e.node.Kind
	case e.token != nil:
		return e.token.Kind
	default:
		return TokError
	}
}

// Range returns the byte range of the element.
func (e Element) Range() Range {
	switch {
	case e.node != nil:
		return e.node.Range()
	case e.token != nil:
		return e.token.Range()
	default:
		return Range{}
	}
}

// Text returns the source text of the element.
func (e Element) Text() string {
	switch {
	case e.node != nil:
		return e.node.Text()
	case e.token != nil:
		return e.token.Text()
	default:
		return ""
	}
}

// Tree returns the tree the element belongs to.
func (e Element) Tree() *Tree {
	switch {
	case e.node != nil:
		return e.node.Tree
	case e.token != nil:
		return e.token.Tree
	default:
		return nil
	}
}

// Parent returns the parent node, or nil for the root.
func (e Element) Parent() *Node {
	switch {
	case e.node != nil:
		return e.node.Parent
	case e.token != nil:
		return e.token.Parent
	default:
		return nil
	}
}

// FirstToken returns the index of the first token of the element.
func (e Element) FirstToken() int {
	switch {
	case e.node != nil:
		return e.node.FirstToken
	case e.token != nil:
		return e.token.Index
	default:
		return -1
	}
}

// LastToken returns the index of the last token of the element.
func (e Element) LastToken() int {
	switch {
	case e.node != nil:
		return e.node.LastToken
	case e.token != nil:
		return e.token.Index
	default:
		return -1
	}
}

func (e Element) slot() int {
	switch {
	case e.node != nil:
		return e.node.slot
	case e.token != nil:
		return e.token.slot
	default:
		return -1
	}
}

// PrevSibling returns the sibling immediately before e, trivia included.
func (e Element) PrevSibling() (Element, bool) {
	parent := e.Parent()
	if parent == nil {
		return Element{}, false
	}
	idx := e.slot() - 1
	if idx < 0 {
		return Element{}, false
	}
	return parent.Children[idx], true
}

// NextSibling returns the sibling immediately after e, trivia included.
func (e Element) NextSibling() (Element, bool) {
	parent := e.Parent()
	if parent == nil {
		return Element{}, false
	}
	idx := e.slot() + 1
	if idx >= len(parent.Children) {
		return Element{}, false
	}
	return parent.Children[idx], true
}

// PrevNonTrivia returns the closest preceding sibling that is not trivia.
func (e Element) PrevNonTrivia() (Element, bool) {
	for sib, ok := e.PrevSibling(); ok; sib, ok = sib.PrevSibling() {
		if !sib.Kind().IsTrivia() {
			return sib, true
		}
	}
	return Element{}, false
}

// NextNonTrivia returns the closest following sibling that is not trivia.
func (e Element) NextNonTrivia() (Element, bool) {
	for sib, ok := e.NextSibling(); ok; sib, ok = sib.NextSibling() {
		if !sib.Kind().IsTrivia() {
			return sib, true
		}
	}
	return Element{}, false
}

// Ancestors yields the parent of e, then its parent, up to the root.
func (e Element) Ancestors() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for n := e.Parent(); n != nil; n = n.Parent {
			if !yield(n) {
				return
			}
		}
	}
}

// ContainsNewline returns true if the element's source text has a line break.
func (e Element) ContainsNewline() bool {
	tree := e.Tree()
	if tree == nil {
		return false
	}
	r := e.Range()
	for _, c := range tree.Content[r.StartOffset:r.EndOffset] {
		if c == '\n' {
			return true
		}
	}
	return false
}
