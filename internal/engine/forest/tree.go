package forest

import (
	"fmt"

	"github.com/kailas-cloud/reportscore/internal/domain/feature"
	"github.com/kailas-cloud/reportscore/internal/domain/report"
)

// Node is one decision-tree node. Leaves have Feature == -1. Internal nodes
// send a vector left when its weight at Feature is <= Threshold.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	// Genuine and Total count the bootstrap rows that reached the node.
	Genuine int
	Total   int
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool { return n.Feature < 0 }

// Label is the majority class of the node; an even split resolves to fraud.
func (n Node) Label() report.Label {
	if 2*n.Genuine > n.Total {
		return report.Genuine
	}
	return report.Fraud
}

// Tree is an immutable decision tree stored as a flat pre-order node list.
type Tree struct {
	nodes []Node
}

// NewTree validates a node list. Children must come after their parent, which
// rules out cycles.
func NewTree(nodes []Node, numFeatures int) (Tree, error) {
	if len(nodes) == 0 {
		return Tree{}, fmt.Errorf("tree has no nodes")
	}
	for i, n := range nodes {
		if n.Total < 1 || n.Genuine < 0 || n.Genuine > n.Total {
			return Tree{}, fmt.Errorf("node %d: invalid counts %d/%d", i, n.Genuine, n.Total)
		}
		if n.IsLeaf() {
			continue
		}
		if n.Feature >= numFeatures {
			return Tree{}, fmt.Errorf("node %d: feature %d out of range %d", i, n.Feature, numFeatures)
		}
		if n.Left <= i || n.Right <= i || n.Left >= len(nodes) || n.Right >= len(nodes) {
			return Tree{}, fmt.Errorf("node %d: invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return Tree{nodes: append([]Node(nil), nodes...)}, nil
}

// Nodes returns a copy of the node list.
func (t Tree) Nodes() []Node { return append([]Node(nil), t.nodes...) }

// Len returns the number of nodes.
func (t Tree) Len() int { return len(t.nodes) }

// Depth returns the length of the longest root-to-leaf path.
func (t Tree) Depth() int {
	if len(t.nodes) == 0 {
		return 0
	}
	return t.depth(0)
}

func (t Tree) depth(i int) int {
	n := t.nodes[i]
	if n.IsLeaf() {
		return 0
	}
	return 1 + max(t.depth(n.Left), t.depth(n.Right))
}

func (t Tree) predict(fv feature.Vector) report.Label {
	i := 0
	for {
		n := t.nodes[i]
		if n.IsLeaf() {
			return n.Label()
		}
		if fv.At(n.Feature) <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}
