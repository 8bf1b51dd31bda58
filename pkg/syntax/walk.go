package syntax

import "iter"

// WalkFunc is the function signature for Walk callbacks.
// Return a non-nil error to stop the walk.
type WalkFunc func(e Element) error

// Walk performs a pre-order traversal of every element under root, root
// included. If walkFunc returns a non-nil error, the walk stops immediately
// and returns that error.
func Walk(root *Node, walkFunc WalkFunc) error {
	if root == nil {
		return nil
	}
	return walkElement(NodeElement(root), walkFunc)
}

func walkElement(e Element, walkFunc WalkFunc) error {
	if err := walkFunc(e); err != nil {
		return err
	}
	if e.node == nil {
		return nil
	}
	for _, child := range e.node.Children {
		if err := walkElement(child, walkFunc); err != nil {
			return err
		}
	}
	return nil
}

// Preorder yields every element under root in pre-order, root included.
func Preorder(root *Node) iter.Seq[Element] {
	return func(yield func(Element) bool) {
		if root == nil {
			return
		}
		preorder(NodeElement(root), yield)
	}
}

func preorder(e Element, yield func(Element) bool) bool {
	if !yield(e) {
		return false
	}
	if e.node == nil {
		return true
	}
	for _, child := range e.node.Children {
		if !preorder(child, yield) {
			return false
		}
	}
	return true
}

// WalkNonWhitespace yields, in pre-order, every node and every token that is
// not whitespace. Comments are yielded. Start offsets never decrease along
// the sequence, and a parent is always yielded before its descendants.
func WalkNonWhitespace(root *Node) iter.Seq[Element] {
	return func(yield func(Element) bool) {
		for e := range Preorder(root) {
			if e.Kind() == TokWhitespace {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// FindAll returns all elements matching the predicate, in pre-order.
func FindAll(root *Node, predicate func(e Element) bool) []Element {
	var result []Element
	for e := range Preorder(root) {
		if predicate(e) {
			result = append(result, e)
		}
	}
	return result
}

// FindFirst returns the first element matching the predicate.
func FindFirst(root *Node, predicate func(e Element) bool) (Element, bool) {
	for e := range Preorder(root) {
		if predicate(e) {
			return e, true
		}
	}
	return Element{}, false
}

// FindByKind returns all elements of the specified kind.
func FindByKind(root *Node, kind Kind) []Element {
	return FindAll(root, func(e Element) bool {
		return e.Kind() == kind
	})
}
