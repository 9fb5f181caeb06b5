// Package impute fills missing satisfaction values in the preprocessed
// feature matrix.
//
// The adopted estimator is neighbor-based: distance over every other
// (already standardized) feature column, a small fixed neighborhood,
// neighborhood mean. A regression-based iterative estimator is computed
// alongside for comparison only; it is never adopted automatically
// because it can produce values outside the observed satisfaction range,
// and that check is a human-review gate, not a threshold.
package impute

import (
	"fmt"
	"math"
	"sort"

	"github.com/praxa/docsegment/internal/errors"
	"github.com/praxa/docsegment/internal/features"
)

// DefaultNeighbors is the adopted neighborhood size.
const DefaultNeighbors = 2

// KNNResult reports what the neighbor-based estimator did.
type KNNResult struct {
	Imputed     int
	Values      []float64
	ObservedMin float64
	ObservedMax float64
}

// KNN fills every missing satisfaction value in place using the mean of
// the k nearest donors, with distance computed over all other feature
// columns. Rows whose satisfaction is known are the only donor pool; if
// that pool is empty the estimator fails explicitly rather than
// inventing a placeholder. Fewer than k donors shrink the neighborhood.
func KNN(m *features.Matrix, k int) (KNNResult, error) {
	const op = "ImputeKNN"

	if k <= 0 {
		return KNNResult{}, errors.NewImputationError(op, fmt.Sprintf("neighborhood size must be positive, got %d", k))
	}

	satIdx := m.SatisfactionIndex()
	if satIdx < 0 {
		return KNNResult{}, errors.NewImputationError(op, "matrix has no satisfaction column")
	}

	var donors []int
	var missingRows []int
	for i, row := range m.Data {
		if math.IsNaN(row[satIdx]) {
			missingRows = append(missingRows, i)
		} else {
			donors = append(donors, i)
		}
	}

	if len(missingRows) == 0 {
		return observedRange(m, satIdx, donors), nil
	}
	if len(donors) == 0 {
		return KNNResult{}, errors.NewImputationError(op, "no row has a known satisfaction value; nothing to estimate from")
	}

	result := observedRange(m, satIdx, donors)

	type neighbor struct {
		row  int
		dist float64
	}

	for _, i := range missingRows {
		neighbors := make([]neighbor, 0, len(donors))
		for _, j := range donors {
			neighbors = append(neighbors, neighbor{row: j, dist: distanceExcluding(m.Data[i], m.Data[j], satIdx)})
		}
		sort.Slice(neighbors, func(a, b int) bool {
			if neighbors[a].dist != neighbors[b].dist {
				return neighbors[a].dist < neighbors[b].dist
			}
			return neighbors[a].row < neighbors[b].row
		})

		size := k
		if size > len(neighbors) {
			size = len(neighbors)
		}
		sum := 0.0
		for _, n := range neighbors[:size] {
			sum += m.Data[n.row][satIdx]
		}
		value := sum / float64(size)

		m.Data[i][satIdx] = value
		result.Imputed++
		result.Values = append(result.Values, value)
	}

	return result, nil
}

func observedRange(m *features.Matrix, satIdx int, donors []int) KNNResult {
	result := KNNResult{ObservedMin: math.Inf(1), ObservedMax: math.Inf(-1)}
	for _, i := range donors {
		v := m.Data[i][satIdx]
		result.ObservedMin = math.Min(result.ObservedMin, v)
		result.ObservedMax = math.Max(result.ObservedMax, v)
	}
	return result
}

// distanceExcluding is the Euclidean distance over all columns except the
// excluded one.
func distanceExcluding(a, b []float64, exclude int) float64 {
	sum := 0.0
	for j := range a {
		if j == exclude {
			continue
		}
		d := a[j] - b[j]
		sum += d * d
	}
	return math.Sqrt(sum)
}
