package ml

import (
	"math"
	"math/rand"
	"sort"
)

const (
	defaultTreeCount  = 100
	defaultSampleSize = 256
	defaultSeed       = 42
)

// IsolationForest detects anomalous rows by building random partitioning
// trees over the feature space. Points that are isolated by fewer random
// splits receive higher anomaly scores. Contamination is the fraction of
// rows expected (and therefore flagged) as anomalous.
type IsolationForest struct {
	Trees         int
	SampleSize    int
	Contamination float64
	Seed          int64
}

type isoNode struct {
	splitCol   int
	splitValue float64
	left       *isoNode
	right      *isoNode
	size       int
}

// FitPredict fits the forest on data (row-major, rows x cols) and returns a
// mask marking the flagged rows. The forest is seeded deterministically so
// repeated runs over the same dataset flag the same rows.
func (f *IsolationForest) FitPredict(data [][]float64) []bool {
	rows := len(data)
	flagged := make([]bool, rows)
	if rows == 0 || f.Contamination <= 0 {
		return flagged
	}

	trees := f.Trees
	if trees <= 0 {
		trees = defaultTreeCount
	}
	sampleSize := f.SampleSize
	if sampleSize <= 0 || sampleSize > rows {
		sampleSize = min(defaultSampleSize, rows)
	}
	seed := f.Seed
	if seed == 0 {
		seed = defaultSeed
	}
	rng := rand.New(rand.NewSource(seed))

	maxDepth := int(math.Ceil(math.Log2(float64(sampleSize)))) + 1

	forest := make([]*isoNode, trees)
	for t := range forest {
		sample := make([][]float64, sampleSize)
		for i := range sample {
			sample[i] = data[rng.Intn(rows)]
		}
		forest[t] = buildIsoTree(sample, 0, maxDepth, rng)
	}

	norm := avgPathLength(sampleSize)
	scores := make([]float64, rows)
	for i, row := range data {
		sum := 0.0
		for _, tree := range forest {
			sum += pathLength(tree, row, 0)
		}
		mean := sum / float64(trees)
		scores[i] = math.Pow(2, -mean/norm)
	}

	// Flag the top contamination fraction by score.
	count := int(math.Floor(f.Contamination * float64(rows)))
	if count <= 0 {
		return flagged
	}
	order := make([]int, rows)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	for _, i := range order[:count] {
		flagged[i] = true
	}
	return flagged
}

func buildIsoTree(sample [][]float64, depth, maxDepth int, rng *rand.Rand) *isoNode {
	n := len(sample)
	if n <= 1 || depth >= maxDepth {
		return &isoNode{size: n}
	}
	cols := len(sample[0])

	// Pick a split column with spread; bail out when every column is constant.
	col, lo, hi := -1, 0.0, 0.0
	for attempt := 0; attempt < cols; attempt++ {
		c := rng.Intn(cols)
		cLo, cHi := sample[0][c], sample[0][c]
		for _, row := range sample {
			if row[c] < cLo {
				cLo = row[c]
			}
			if row[c] > cHi {
				cHi = row[c]
			}
		}
		if cHi > cLo {
			col, lo, hi = c, cLo, cHi
			break
		}
	}
	if col < 0 {
		return &isoNode{size: n}
	}

	split := lo + rng.Float64()*(hi-lo)
	var left, right [][]float64
	for _, row := range sample {
		if row[col] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &isoNode{size: n}
	}
	return &isoNode{
		splitCol:   col,
		splitValue: split,
		left:       buildIsoTree(left, depth+1, maxDepth, rng),
		right:      buildIsoTree(right, depth+1, maxDepth, rng),
		size:       n,
	}
}

func pathLength(node *isoNode, row []float64, depth int) float64 {
	if node.left == nil {
		return float64(depth) + avgPathLength(node.size)
	}
	if row[node.splitCol] < node.splitValue {
		return pathLength(node.left, row, depth+1)
	}
	return pathLength(node.right, row, depth+1)
}

// avgPathLength is the expected path length of an unsuccessful BST search
// over n points, the standard normalization term for isolation forests.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	h := math.Log(float64(n-1)) + 0.5772156649 // harmonic number approximation
	return 2*h - 2*float64(n-1)/float64(n)
}
