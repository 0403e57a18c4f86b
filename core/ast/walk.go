package ast

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the node just visited.
func Walk(n *Node, fn func(n *Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, child := range n.children {
		walk(child, depth+1, fn)
	}
}

// Equal reports whether a and b have the same shape: kinds, leaf text,
// field labels and children. Spans are ignored.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind || a.text != b.text || len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if a.fields[i] != b.fields[i] || !Equal(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n *Node) int {
	count := 0
	Walk(n, func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// Depth returns the height of the tree rooted at n (a leaf has depth 1).
func Depth(n *Node) int {
	if n == nil {
		return 0
	}
	deepest := 0
	for _, child := range n.children {
		if d := Depth(child); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// Errors returns the ERROR nodes in the tree, in source order.
func Errors(n *Node) []*Node {
	var out []*Node
	Walk(n, func(node *Node, _ int) bool {
		if node.kind == KindError {
			out = append(out, node)
		}
		return true
	})
	return out
}
