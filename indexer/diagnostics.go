package indexer

import (
	"fmt"
	"strings"
)

// MaxDepth returns the number of levels on the longest root-to-leaf path.
func (t *Tree[R]) MaxDepth() int {
	return maxDepth(t.root.Load())
}

func maxDepth[R comparable](n Node[R]) int {
	internal, ok := n.(*InternalNode[R])
	if !ok {
		return 1
	}
	deepest := 0
	for _, s := range internal.oracle.Payloads() {
		deepest = max(deepest, maxDepth(s.Load()))
	}
	return 1 + deepest
}

// NodeSizes lists every node's oracle size in pre-order.
func (t *Tree[R]) NodeSizes() []int {
	var sizes []int
	walk(t.root.Load(), 0, func(n Node[R], _ int) {
		sizes = append(sizes, n.Len())
	})
	return sizes
}

// Structure renders the tree as one line per node, indented by depth, showing each
// node's oracle size.
func (t *Tree[R]) Structure() string {
	var b strings.Builder
	walk(t.root.Load(), 0, func(n Node[R], depth int) {
		kind := "internal"
		if n.IsLeaf() {
			kind = "leaf"
		}
		fmt.Fprintf(&b, "%s%s %d\n", strings.Repeat("  ", depth), kind, n.Len())
	})
	return b.String()
}

// Records returns every indexed record in leaf order.
func (t *Tree[R]) Records() []R {
	_, records, err := flatten(t.root.Load())
	if err != nil {
		return nil
	}
	return records
}

func walk[R comparable](n Node[R], depth int, fn func(Node[R], int)) {
	fn(n, depth)
	if internal, ok := n.(*InternalNode[R]); ok {
		for _, s := range internal.oracle.Payloads() {
			walk(s.Load(), depth+1, fn)
		}
	}
}
