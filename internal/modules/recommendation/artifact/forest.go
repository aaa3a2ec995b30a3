package artifact

import "fmt"

// Node is one decision node in a binary tree. Leaf nodes have Feature == -1
// and carry the positive-class probability in Value.
type Node struct {
	Split   float64 `msgpack:"split"`
	Value   float64 `msgpack:"value"`
	Feature int     `msgpack:"feature"`
	Left    int     `msgpack:"left"`
	Right   int     `msgpack:"right"`
}

// Tree is a flattened binary decision tree, rooted at node 0.
// The split rule is x[feature] <= split goes left.
type Tree struct {
	Nodes []Node `msgpack:"nodes"`
}

// Ensemble is the per-label tree ensemble; its score is the mean of the
// member trees' leaf probabilities.
type Ensemble struct {
	Trees []Tree `msgpack:"trees"`
}

// Score returns one independent probability-like score per label for the
// given feature vector. The vector shape must match what the trees were
// trained on; a feature index beyond the vector is an artifact/version
// mismatch, not a user input error.
func (b *Bundle) Score(x []float64) ([]float64, error) {
	scores := make([]float64, len(b.Models))
	for i, model := range b.Models {
		total := 0.0
		for _, tree := range model.Trees {
			p, err := tree.eval(x)
			if err != nil {
				return nil, fmt.Errorf("label %s: %w", b.Labels[i], err)
			}
			total += p
		}
		scores[i] = total / float64(len(model.Trees))
	}
	return scores, nil
}

func (t Tree) eval(x []float64) (float64, error) {
	idx := 0
	// Bounded by node count to catch malformed trees with cycles
	for steps := 0; steps <= len(t.Nodes); steps++ {
		node := t.Nodes[idx]
		if node.Feature < 0 {
			return node.Value, nil
		}
		if node.Feature >= len(x) {
			return 0, fmt.Errorf("tree references feature %d but vector has %d features", node.Feature, len(x))
		}
		if x[node.Feature] <= node.Split {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return 0, fmt.Errorf("tree traversal did not reach a leaf")
}

func (t Tree) validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	for i, node := range t.Nodes {
		if node.Feature < 0 {
			continue // leaf
		}
		if node.Left < 0 || node.Left >= len(t.Nodes) || node.Right < 0 || node.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has child out of range", i)
		}
	}
	return nil
}
