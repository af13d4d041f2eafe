package pipeline

import (
	"fmt"
	"math/rand"
	"sort"
)

// Forest is a bagged ensemble of regression trees. Each tree fits a bootstrap
// resample of the training set; prediction averages the trees. With a fixed
// Seed and fixed input order, Fit is fully deterministic.
type Forest struct {
	Trees    []*TreeNode
	NumTrees int
	MaxDepth int
	MinLeaf  int
	Seed     int64
}

// TreeNode is one node of a regression tree. Leaf nodes carry the mean target
// of their training partition; interior nodes route on Feature <= Threshold.
type TreeNode struct {
	Leaf      bool
	Value     float64
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
}

// Fit trains the ensemble on X (row-major feature vectors) and y.
func (f *Forest) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("forest: %d rows vs %d targets", len(X), len(y))
	}

	rng := rand.New(rand.NewSource(f.Seed))
	f.Trees = make([]*TreeNode, f.NumTrees)
	for t := 0; t < f.NumTrees; t++ {
		idx := make([]int, len(X))
		for i := range idx {
			idx[i] = rng.Intn(len(X))
		}
		f.Trees[t] = buildTree(X, y, idx, 0, f.MaxDepth, f.MinLeaf)
	}
	return nil
}

// Predict averages the per-tree predictions for x.
func (f *Forest) Predict(x []float64) (float64, error) {
	if len(f.Trees) == 0 {
		return 0, fmt.Errorf("forest: not fitted")
	}
	var sum float64
	for _, tree := range f.Trees {
		sum += tree.predict(x)
	}
	return sum / float64(len(f.Trees)), nil
}

func (n *TreeNode) predict(x []float64) float64 {
	for !n.Leaf {
		if n.Feature < len(x) && x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// buildTree grows one tree over the rows named by idx. Splits greedily on the
// largest sum-of-squared-error reduction; stops at maxDepth, at minLeaf-sized
// partitions, or when the partition target is constant.
func buildTree(X [][]float64, y []float64, idx []int, depth, maxDepth, minLeaf int) *TreeNode {
	mean := meanTarget(y, idx)
	if depth >= maxDepth || len(idx) < 2*minLeaf || constantTarget(y, idx) {
		return &TreeNode{Leaf: true, Value: mean}
	}

	feature, threshold, ok := bestSplit(X, y, idx, minLeaf)
	if !ok {
		return &TreeNode{Leaf: true, Value: mean}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(X, y, left, depth+1, maxDepth, minLeaf),
		Right:     buildTree(X, y, right, depth+1, maxDepth, minLeaf),
	}
}

// bestSplit scans every feature for the threshold minimizing the summed SSE of
// the two partitions. Candidate thresholds are midpoints between adjacent
// distinct feature values; ties resolve to the first (lowest feature index,
// lowest threshold) so the tree shape is deterministic.
func bestSplit(X [][]float64, y []float64, idx []int, minLeaf int) (feature int, threshold float64, ok bool) {
	nFeatures := len(X[idx[0]])
	n := len(idx)

	total, totalSq := sums(y, idx)
	bestGain := 0.0
	parentSSE := totalSq - total*total/float64(n)

	type pair struct{ v, y float64 }
	pairs := make([]pair, n)

	for f := 0; f < nFeatures; f++ {
		for i, row := range idx {
			pairs[i] = pair{X[row][f], y[row]}
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].v < pairs[j].v })

		var leftSum, leftSq float64
		for i := 0; i < n-1; i++ {
			leftSum += pairs[i].y
			leftSq += pairs[i].y * pairs[i].y
			if pairs[i].v == pairs[i+1].v {
				continue
			}
			nl, nr := i+1, n-i-1
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/float64(nl)) +
				(rightSq - rightSum*rightSum/float64(nr))
			gain := parentSSE - sse
			if gain > bestGain {
				bestGain = gain
				feature = f
				threshold = (pairs[i].v + pairs[i+1].v) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func sums(y []float64, idx []int) (sum, sumSq float64) {
	for _, i := range idx {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	return sum, sumSq
}

func meanTarget(y []float64, idx []int) float64 {
	sum, _ := sums(y, idx)
	return sum / float64(len(idx))
}

func constantTarget(y []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if y[i] != y[idx[0]] {
			return false
		}
	}
	return true
}
