package syntax

import (
	"errors"
	"fmt"
)

// ErrUnbalanced is returned by Builder.Finish when nodes are left open or
// finished without being started.
var ErrUnbalanced = errors.New("unbalanced node builder")

// Builder assembles a Tree from a stream of tokens and node boundaries.
// Tokens must be pushed in textual order and must cover the content.
type Builder struct {
	tree  *Tree
	stack []*Node
	err   error
}

// Checkpoint marks a position among the children of the currently open node.
// StartNodeAt uses it to wrap already-built children in a new node.
type Checkpoint struct {
	parent *Node
	slot   int
}

// NewBuilder creates a Builder for the given content.
func NewBuilder(path string, content []byte) *Builder {
	return &Builder{
		tree: &Tree{
			Path:    path,
			Content: content,
			Lines:   BuildLines(content),
		},
	}
}

// StartNode opens a new node as the last child of the current node.
func (b *Builder) StartNode(kind Kind) {
	node := &Node{
		Kind:       kind,
		FirstToken: len(b.tree.Tokens),
		LastToken:  -1,
		Tree:       b.tree,
	}
	if parent := b.current(); parent != nil {
		node.Parent = parent
		node.slot = len(parent.Children)
		parent.Children = append(parent.Children, NodeElement(node))
	} else if b.tree.Root != nil {
		b.fail(fmt.Errorf("%w: second root node %s", ErrUnbalanced, kind))
		return
	} else {
		b.tree.Root = node
	}
	b.stack = append(b.stack, node)
}

// Checkpoint returns a marker for the current child position.
func (b *Builder) Checkpoint() Checkpoint {
	parent := b.current()
	if parent == nil {
		return Checkpoint{}
	}
	return Checkpoint{parent: parent, slot: len(parent.Children)}
}

// StartNodeAt opens a new node that adopts every child added to the current
// node since cp was taken.
func (b *Builder) StartNodeAt(cp Checkpoint, kind Kind) {
	parent := b.current()
	if parent == nil || cp.parent != parent || cp.slot > len(parent.Children) {
		b.fail(fmt.Errorf("%w: stale checkpoint for %s", ErrUnbalanced, kind))
		return
	}

	adopted := append([]Element(nil), parent.Children[cp.slot:]...)
	parent.Children = parent.Children[:cp.slot]

	node := &Node{
		Kind:       kind,
		Parent:     parent,
		FirstToken: len(b.tree.Tokens),
		LastToken:  -1,
		Tree:       b.tree,
		slot:       cp.slot,
	}
	if len(adopted) > 0 {
		node.FirstToken = adopted[0].FirstToken()
	}
	for i, child := range adopted {
		reparent(child, node, i)
	}
	node.Children = adopted
	parent.Children = append(parent.Children, NodeElement(node))
	b.stack = append(b.stack, node)
}

// FinishNode closes the current node. Nodes that received no tokens are dropped.
func (b *Builder) FinishNode() {
	if len(b.stack) == 0 {
		b.fail(fmt.Errorf("%w: finish without start", ErrUnbalanced))
		return
	}
	node := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]

	if node.FirstToken >= len(b.tree.Tokens) {
		if node.Parent != nil {
			node.Parent.Children = node.Parent.Children[:node.slot]
		}
		return
	}
	node.LastToken = len(b.tree.Tokens) - 1
}

// Token appends a token covering [start, end) to the current node.
func (b *Builder) Token(kind Kind, start, end int) {
	parent := b.current()
	if parent == nil {
		b.fail(fmt.Errorf("%w: token %s outside of any node", ErrUnbalanced, kind))
		return
	}
	tok := &Token{
		Kind:        kind,
		StartOffset: start,
		EndOffset:   end,
		Index:       len(b.tree.Tokens),
		Parent:      parent,
		Tree:        b.tree,
		slot:        len(parent.Children),
	}
	b.tree.Tokens = append(b.tree.Tokens, tok)
	parent.Children = append(parent.Children, TokenElement(tok))
}

// Depth returns the number of open nodes.
func (b *Builder) Depth() int {
	return len(b.stack)
}

// Finish validates and returns the Tree.
func (b *Builder) Finish() (*Tree, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.stack) != 0 {
		return nil, fmt.Errorf("%w: %d nodes still open", ErrUnbalanced, len(b.stack))
	}
	if b.tree.Root == nil {
		return nil, fmt.Errorf("%w: no root node", ErrUnbalanced)
	}
	if !ValidateTokens(b.tree.Tokens, len(b.tree.Content)) {
		return nil, errors.New("tokens do not cover content contiguously")
	}
	return b.tree, nil
}

func (b *Builder) current() *Node {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func reparent(child Element, parent *Node, slot int) {
	switch {
	case child.node != nil:
		child.node.Parent = parent
		child.node.slot = slot
	case child.token != nil:
		child.token.Parent = parent
		child.token.slot = slot
	}
}

// ValidateTokens checks that a token slice is valid:
// - Tokens are contiguous and non-overlapping.
// - Tokens cover the full content range [0, contentLen).
func ValidateTokens(tokens []*Token, contentLen int) bool {
	if len(tokens) == 0 {
		return contentLen == 0
	}
	if tokens[0].StartOffset != 0 {
		return false
	}
	if tokens[len(tokens)-1].EndOffset != contentLen {
		return false
	}
	for i := 1; i < len(tokens); i++ {
		if tokens[i].StartOffset != tokens[i-1].EndOffset {
			return false
		}
	}
	return true
}
