package ml

import (
    "errors"
    "fmt"
)

// DecisionTree is a regression tree stored as a flat node array with node 0 as root.
type DecisionTree struct {
    nodes     []TreeNode
    nFeatures int
}

type TreeNode struct {
    FeatureIdx int     `json:"feature_idx"`
    Threshold  float64 `json:"threshold"`
    LeftChild  int     `json:"left_child"`
    RightChild int     `json:"right_child"`
    Value      float64 `json:"value"`
    IsLeaf     bool    `json:"is_leaf"`
}

// NewDecisionTree builds a tree over nFeatures inputs. nFeatures <= 0 skips the
// width check and only guards per-node indexes.
func NewDecisionTree(nodes []TreeNode, nFeatures int) *DecisionTree {
    return &DecisionTree{nodes: append([]TreeNode(nil), nodes...), nFeatures: nFeatures}
}

func (dt *DecisionTree) Predict(features []float64) (float64, error) {
    if len(dt.nodes) == 0 {
        return 0, ErrNotTrained
    }
    if dt.nFeatures > 0 && len(features) != dt.nFeatures {
        return 0, fmt.Errorf("%w: got %d features, tree expects %d", ErrShapeMismatch, len(features), dt.nFeatures)
    }
    idx := 0
    for steps := 0; steps <= len(dt.nodes); steps++ {
        node := dt.nodes[idx]
        if node.IsLeaf {
            return node.Value, nil
        }
        if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
            return 0, fmt.Errorf("%w: node %d reads feature %d of %d", ErrShapeMismatch, idx, node.FeatureIdx, len(features))
        }
        if features[node.FeatureIdx] <= node.Threshold {
            idx = node.LeftChild
        } else {
            idx = node.RightChild
        }
        if idx < 0 || idx >= len(dt.nodes) {
            return 0, errors.New("invalid tree state")
        }
    }
    return 0, errors.New("tree contains a cycle")
}

func (dt *DecisionTree) Depth() int {
    if len(dt.nodes) == 0 {
        return 0
    }
    return dt.depth(0, 0)
}

func (dt *DecisionTree) depth(idx, seen int) int {
    if idx < 0 || idx >= len(dt.nodes) || seen > len(dt.nodes) {
        return 0
    }
    node := dt.nodes[idx]
    if node.IsLeaf {
        return 1
    }
    return 1 + max(dt.depth(node.LeftChild, seen+1), dt.depth(node.RightChild, seen+1))
}
