package model

import "time"

// ResultNode is one node of the search trail tree.
//
// Top-level nodes stand for a visit that used a remembered search; their
// Label is the search value and Host/VisitedAt describe the visit.
// Nested nodes are the pages clicked afterwards; their Label is the page title.
type ResultNode struct {
	// URL is the address of the page the node stands for.
	URL string `json:"url"`

	// Label is the text shown for the node.
	Label string `json:"label"`

	// Annotation is extra text shown after the label, such as
	// "@ example.com 3 days ago (repeat 2)" or "(click 3)".
	Annotation string `json:"annotation,omitempty"`

	// Host is the visited host without a leading "www.". Top-level nodes only.
	Host string `json:"host,omitempty"`

	// VisitedAt is when the search result page was visited. Top-level nodes only.
	VisitedAt time.Time `json:"visited_at,omitzero"`

	// Children are the visible pages reached from this one.
	Children []ResultNode `json:"children,omitempty"`
}

// Count returns the number of nodes in the subtree rooted at n, n included.
func (n ResultNode) Count() int {
	total := 1
	for _, child := range n.Children {
		total += child.Count()
	}
	return total
}

// Depth returns the depth of the deepest node below n.
// A node without children has depth 0.
func (n ResultNode) Depth() int {
	deepest := 0
	for _, child := range n.Children {
		if d := child.Depth() + 1; d > deepest {
			deepest = d
		}
	}
	return deepest
}

// Walk calls fn for n and every node below it in depth-first order.
// depth is 0 for n itself.
func (n ResultNode) Walk(fn func(node ResultNode, depth int)) {
	n.walk(fn, 0)
}

func (n ResultNode) walk(fn func(node ResultNode, depth int), depth int) {
	fn(n, depth)
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}
