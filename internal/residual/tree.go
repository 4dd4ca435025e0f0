package residual

import "sort"

// treeNode is one node of a fitted regression tree, stored in a flat
// slice. Feature < 0 marks a leaf whose prediction is Value; interior
// nodes route on x[Feature] <= Threshold.
type treeNode struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Value     float64 `json:"v"`
}

// tree is a binary regression tree over dense feature vectors.
type tree struct {
	Nodes []treeNode `json:"nodes"`
}

// predict walks the tree for one feature vector. The vector width must
// match the training width; the model checks that before calling in.
func (t *tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// split describes the best cut found for a node.
type split struct {
	feature   int
	threshold float64
	gain      float64
}

// fitTree grows a least-squares regression tree on the sample subset idx.
// Split gains are accumulated per feature into gains, which later become
// the ensemble importances.
func fitTree(rows [][]float64, target []float64, idx []int, maxDepth, minLeaf int, gains []float64) tree {
	var t tree
	t.grow(rows, target, idx, 0, maxDepth, minLeaf, gains)
	return t
}

// grow appends the subtree fitted on idx and returns its node index.
func (t *tree) grow(rows [][]float64, target []float64, idx []int, depth, maxDepth, minLeaf int, gains []float64) int {
	node := len(t.Nodes)
	t.Nodes = append(t.Nodes, treeNode{Feature: -1, Value: meanAt(target, idx)})
	if depth >= maxDepth || len(idx) < 2*minLeaf {
		return node
	}
	best, ok := bestSplit(rows, target, idx, minLeaf)
	if !ok {
		return node
	}
	gains[best.feature] += best.gain

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if rows[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := t.grow(rows, target, left, depth+1, maxDepth, minLeaf, gains)
	r := t.grow(rows, target, right, depth+1, maxDepth, minLeaf, gains)
	t.Nodes[node].Feature = best.feature
	t.Nodes[node].Threshold = best.threshold
	t.Nodes[node].Left = l
	t.Nodes[node].Right = r
	return node
}

// bestSplit scans every feature for the threshold that minimizes the
// summed squared error of the two children. Thresholds are midpoints
// between adjacent distinct feature values. Returns ok=false when no cut
// reduces error while keeping minLeaf samples on each side.
func bestSplit(rows [][]float64, target []float64, idx []int, minLeaf int) (split, bool) {
	n := len(idx)
	width := len(rows[idx[0]])

	var total, totalSq float64
	for _, i := range idx {
		total += target[i]
		totalSq += target[i] * target[i]
	}
	parentSSE := totalSq - total*total/float64(n)

	best := split{feature: -1}
	order := make([]int, n)

	for f := 0; f < width; f++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return rows[order[a]][f] < rows[order[b]][f] })

		var leftSum, leftSq float64
		for k := 0; k < n-1; k++ {
			i := order[k]
			leftSum += target[i]
			leftSq += target[i] * target[i]

			a, b := rows[i][f], rows[order[k+1]][f]
			if a == b {
				continue
			}
			nl, nr := k+1, n-k-1
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			thr := (a + b) / 2
			// The midpoint must separate a from b; adjacent floats can
			// collapse onto one of them.
			if !(a < thr && thr < b) {
				continue
			}
			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/float64(nl)) + (rightSq - rightSum*rightSum/float64(nr))
			if gain := parentSSE - sse; gain > best.gain {
				best = split{feature: f, threshold: thr, gain: gain}
			}
		}
	}

	if best.feature < 0 || best.gain <= 1e-12 {
		return split{}, false
	}
	return best, true
}

func meanAt(vals []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += vals[i]
	}
	return sum / float64(len(idx))
}
