package cluster

import (
	"math"

	"github.com/praxa/docsegment/internal/features"
)

// KneeEstimate returns the k at the sharpest bend of the distortion
// curve, measured by the largest second difference. It cross-checks a
// dendrogram-derived cluster count; it does not override it. Curves too
// short to bend return 0.
func KneeEstimate(curve []ElbowPoint) int {
	if len(curve) < 3 {
		return 0
	}
	bestK, bestBend := 0, math.Inf(-1)
	for i := 1; i < len(curve)-1; i++ {
		bend := curve[i-1].Distortion - 2*curve[i].Distortion + curve[i+1].Distortion
		if bend > bestBend {
			bestBend = bend
			bestK = curve[i].K
		}
	}
	return bestK
}

// Silhouette returns the mean silhouette coefficient of a labeling over
// the rows of m, in [-1,1]. Rows in singleton clusters contribute zero,
// following the usual convention.
func Silhouette(m *features.Matrix, labels []int) float64 {
	n := m.NumRows()
	if n == 0 || len(labels) != n {
		return 0
	}

	sizes := make(map[int]int)
	for _, l := range labels {
		sizes[l]++
	}
	if len(sizes) < 2 {
		return 0
	}

	total := 0.0
	for i := range m.Data {
		if sizes[labels[i]] == 1 {
			continue
		}

		// Mean distance to own cluster (a) and nearest other cluster (b).
		sums := make(map[int]float64)
		for j := range m.Data {
			if i == j {
				continue
			}
			sums[labels[j]] += math.Sqrt(sqDist(m.Data[i], m.Data[j]))
		}

		a := sums[labels[i]] / float64(sizes[labels[i]]-1)
		b := math.Inf(1)
		for l, sum := range sums {
			if l == labels[i] {
				continue
			}
			b = math.Min(b, sum/float64(sizes[l]))
		}

		if denom := math.Max(a, b); denom > 0 {
			total += (b - a) / denom
		}
	}
	return total / float64(n)
}
