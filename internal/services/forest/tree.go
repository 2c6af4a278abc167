package forest

import (
	"math/rand"
	"sort"
)

const numClasses = 2

type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	leaf      bool
	value     [numClasses]float64
}

// tree is a CART classifier stored as a flat node slice; node 0 is the root.
type tree struct {
	nodes      []node
	importance []float64
}

type treeBuilder struct {
	x           [][]float64
	y           []int
	w           []float64
	minLeaf     int
	maxFeatures int
	rng         *rand.Rand
	t           *tree
	buf         []int
}

// buildTree grows an unpruned tree on a bootstrap sample of x.
func buildTree(x [][]float64, y []int, nFeatures, minLeaf, maxFeatures int, rng *rand.Rand) *tree {
	n := len(x)
	counts := make([]int, n)
	for i := 0; i < n; i++ {
		counts[rng.Intn(n)]++
	}

	w := bootstrapWeights(y, counts)
	rows := make([]int, 0, n)
	for i, c := range counts {
		if c > 0 {
			rows = append(rows, i)
		}
	}

	b := &treeBuilder{
		x:           x,
		y:           y,
		w:           w,
		minLeaf:     minLeaf,
		maxFeatures: maxFeatures,
		rng:         rng,
		t:           &tree{importance: make([]float64, nFeatures)},
		buf:         make([]int, n),
	}
	b.grow(rows)
	return b.t
}

// bootstrapWeights multiplies bootstrap multiplicity by the balanced class
// weight n_boot / (classes_present * count_c) computed on the sample.
func bootstrapWeights(y []int, counts []int) []float64 {
	var perClass [numClasses]int
	total := 0
	for i, c := range counts {
		perClass[y[i]] += c
		total += c
	}
	present := 0
	for _, c := range perClass {
		if c > 0 {
			present++
		}
	}
	var classWeight [numClasses]float64
	for k, c := range perClass {
		if c > 0 {
			classWeight[k] = float64(total) / float64(present*c)
		}
	}
	w := make([]float64, len(y))
	for i, c := range counts {
		w[i] = float64(c) * classWeight[y[i]]
	}
	return w
}

func (b *treeBuilder) totals(rows []int) [numClasses]float64 {
	var out [numClasses]float64
	for _, r := range rows {
		out[b.y[r]] += b.w[r]
	}
	return out
}

func gini(c [numClasses]float64) float64 {
	total := c[0] + c[1]
	if total == 0 {
		return 0
	}
	p0, p1 := c[0]/total, c[1]/total
	return 1 - p0*p0 - p1*p1
}

type split struct {
	feature   int
	threshold float64
	pos       int
	score     float64
	left      [numClasses]float64
	right     [numClasses]float64
}

// grow builds the subtree for rows and returns its node index.
func (b *treeBuilder) grow(rows []int) int {
	idx := len(b.t.nodes)
	b.t.nodes = append(b.t.nodes, node{})

	tot := b.totals(rows)
	impurity := gini(tot)
	if impurity == 0 || len(rows) < 2*b.minLeaf {
		b.t.nodes[idx] = leafNode(tot)
		return idx
	}

	best, ok := b.bestSplit(rows, tot)
	if !ok {
		b.t.nodes[idx] = leafNode(tot)
		return idx
	}

	sortByFeature(b.x, rows, best.feature)
	left := append([]int(nil), rows[:best.pos]...)
	right := append([]int(nil), rows[best.pos:]...)

	wl := best.left[0] + best.left[1]
	wr := best.right[0] + best.right[1]
	b.t.importance[best.feature] += (wl+wr)*impurity - wl*gini(best.left) - wr*gini(best.right)

	l := b.grow(left)
	r := b.grow(right)
	b.t.nodes[idx] = node{feature: best.feature, threshold: best.threshold, left: l, right: r}
	return idx
}

func leafNode(tot [numClasses]float64) node {
	n := node{leaf: true}
	sum := tot[0] + tot[1]
	if sum > 0 {
		n.value[0] = tot[0] / sum
		n.value[1] = tot[1] / sum
	}
	return n
}

// bestSplit draws features in random order until maxFeatures non-constant
// ones have been examined and returns the split with the lowest weighted
// child impurity.
func (b *treeBuilder) bestSplit(rows []int, tot [numClasses]float64) (split, bool) {
	nf := len(b.t.importance)
	order := b.rng.Perm(nf)
	sorted := b.buf[:len(rows)]

	best := split{score: -1}
	found := false
	visited := 0
	for _, f := range order {
		if visited >= b.maxFeatures && found {
			break
		}
		copy(sorted, rows)
		sortByFeature(b.x, sorted, f)
		if b.x[sorted[0]][f] == b.x[sorted[len(sorted)-1]][f] {
			continue
		}
		visited++

		var left [numClasses]float64
		for i := 0; i < len(sorted)-1; i++ {
			r := sorted[i]
			left[b.y[r]] += b.w[r]
			nl := i + 1
			if nl < b.minLeaf {
				continue
			}
			if len(sorted)-nl < b.minLeaf {
				break
			}
			lo, hi := b.x[r][f], b.x[sorted[i+1]][f]
			if lo == hi {
				continue
			}
			right := [numClasses]float64{tot[0] - left[0], tot[1] - left[1]}
			wl := left[0] + left[1]
			wr := right[0] + right[1]
			// Maximizing the negative weighted child impurity.
			score := -(wl*gini(left) + wr*gini(right))
			if !found || score > best.score {
				thr := lo + (hi-lo)/2
				if thr >= hi {
					thr = lo
				}
				best = split{feature: f, threshold: thr, pos: nl, score: score, left: left, right: right}
				found = true
			}
		}
	}
	return best, found
}

func sortByFeature(x [][]float64, rows []int, f int) {
	sort.SliceStable(rows, func(i, j int) bool { return x[rows[i]][f] < x[rows[j]][f] })
}

func (t *tree) predict(row []float64) [numClasses]float64 {
	i := 0
	for !t.nodes[i].leaf {
		n := t.nodes[i]
		if row[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
	return t.nodes[i].value
}

func (t *tree) splits() int {
	return len(t.nodes) / 2
}
