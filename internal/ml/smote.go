package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

const defaultNeighbors = 5

// SMOTE oversamples minority classes by interpolating between a minority
// sample and one of its nearest minority-class neighbors in feature space.
// Every class is brought up to the majority class count.
type SMOTE struct {
	Neighbors int
	Seed      int64
}

// Resample returns the feature matrix and labels extended with synthetic
// minority samples. Inputs are row-major numeric features and one label per
// row; rows of different classes never mix during interpolation.
func (s *SMOTE) Resample(features [][]float64, labels []string) ([][]float64, []string, error) {
	if len(features) != len(labels) {
		return nil, nil, fmt.Errorf("features and labels length mismatch: %d != %d", len(features), len(labels))
	}

	byClass := make(map[string][]int)
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}

	majority := 0
	for _, idx := range byClass {
		if len(idx) > majority {
			majority = len(idx)
		}
	}

	k := s.Neighbors
	if k <= 0 {
		k = defaultNeighbors
	}
	seed := s.Seed
	if seed == 0 {
		seed = defaultSeed
	}
	rng := rand.New(rand.NewSource(seed))

	outFeatures := append([][]float64(nil), features...)
	outLabels := append([]string(nil), labels...)

	// Deterministic class order.
	classes := make([]string, 0, len(byClass))
	for label := range byClass {
		classes = append(classes, label)
	}
	sort.Strings(classes)

	for _, label := range classes {
		idx := byClass[label]
		need := majority - len(idx)
		if need == 0 {
			continue
		}
		if len(idx) < 2 {
			return nil, nil, fmt.Errorf("class %q has %d sample(s), need at least 2 to synthesize", label, len(idx))
		}
		neighbors := nearestNeighbors(features, idx, min(k, len(idx)-1))
		for n := 0; n < need; n++ {
			base := idx[rng.Intn(len(idx))]
			nbrs := neighbors[base]
			partner := nbrs[rng.Intn(len(nbrs))]
			gap := rng.Float64()
			synth := make([]float64, len(features[base]))
			for c := range synth {
				synth[c] = features[base][c] + gap*(features[partner][c]-features[base][c])
			}
			outFeatures = append(outFeatures, synth)
			outLabels = append(outLabels, label)
		}
	}
	return outFeatures, outLabels, nil
}

// nearestNeighbors returns, for each index in idx, its k nearest same-class
// neighbors by Euclidean distance.
func nearestNeighbors(features [][]float64, idx []int, k int) map[int][]int {
	type candidate struct {
		index int
		dist  float64
	}
	out := make(map[int][]int, len(idx))
	for _, i := range idx {
		candidates := make([]candidate, 0, len(idx)-1)
		for _, j := range idx {
			if i == j {
				continue
			}
			candidates = append(candidates, candidate{index: j, dist: euclidean(features[i], features[j])})
		}
		sort.Slice(candidates, func(a, b int) bool {
			if candidates[a].dist != candidates[b].dist {
				return candidates[a].dist < candidates[b].dist
			}
			return candidates[a].index < candidates[b].index
		})
		if k > len(candidates) {
			k = len(candidates)
		}
		nbrs := make([]int, k)
		for n := 0; n < k; n++ {
			nbrs[n] = candidates[n].index
		}
		out[i] = nbrs
	}
	return out
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
