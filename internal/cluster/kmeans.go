package cluster

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/praxa/docsegment/internal/errors"
	"github.com/praxa/docsegment/internal/features"
)

const (
	maxIterations = 100
	tolerance     = 1e-6
)

// KMeansResult carries one centroid-clustering run: labels in [1,k] and
// the distortion (sum of squared distances to the assigned centroid).
type KMeansResult struct {
	Labels     []int
	Distortion float64
	Iterations int
}

// ElbowPoint is one measurement on the distortion-versus-k curve.
type ElbowPoint struct {
	K          int
	Distortion float64
}

// KMeans runs seeded centroid clustering with k-means++ initialization
// and Lloyd iterations. The same seed on the same input yields the same
// labels; there is no retry with a different seed.
func KMeans(m *features.Matrix, k int, seed int64) (KMeansResult, error) {
	const op = "KMeans"

	n := m.NumRows()
	if k <= 0 || k > n {
		return KMeansResult{}, errors.NewDataQualityError(op, "", "",
			fmt.Sprintf("cluster count must be in [1,%d], got %d", n, k))
	}

	rng := rand.New(rand.NewSource(seed))
	centroids := plusPlusInit(m.Data, k, rng)
	assignments := make([]int, n)

	iterations := 0
	for ; iterations < maxIterations; iterations++ {
		// Assign points to the nearest centroid.
		for i, row := range m.Data {
			best, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				if d := sqDist(row, centroid); d < bestDist {
					best, bestDist = c, d
				}
			}
			assignments[i] = best
		}

		// Recompute centroids.
		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, m.NumCols())
		}
		for i, row := range m.Data {
			c := assignments[i]
			counts[c]++
			for f, v := range row {
				next[c][f] += v
			}
		}
		for c := range next {
			if counts[c] == 0 {
				// Re-seed an empty cluster with the point farthest from
				// its current centroid.
				far, farDist := 0, -1.0
				for i, row := range m.Data {
					if d := sqDist(row, centroids[assignments[i]]); d > farDist {
						far, farDist = i, d
					}
				}
				copy(next[c], m.Data[far])
				counts[c] = 1
				assignments[far] = c
				continue
			}
			for f := range next[c] {
				next[c][f] /= float64(counts[c])
			}
		}

		// Converged when no centroid moved beyond tolerance.
		moved := 0.0
		for c := range centroids {
			moved = math.Max(moved, sqDist(centroids[c], next[c]))
		}
		centroids = next
		if moved < tolerance {
			iterations++
			break
		}
	}

	result := KMeansResult{
		Labels:     make([]int, n),
		Iterations: iterations,
	}
	for i, row := range m.Data {
		result.Labels[i] = assignments[i] + 1
		result.Distortion += sqDist(row, centroids[assignments[i]])
	}
	return result, nil
}

// Sweep records the distortion curve for cluster counts kmin..kmax
// inclusive, for elbow inspection. Each k runs with a seed derived from
// the base seed so the whole sweep is reproducible.
func Sweep(m *features.Matrix, kmin, kmax int, seed int64) ([]ElbowPoint, error) {
	if kmin <= 0 || kmax < kmin {
		return nil, errors.NewDataQualityError("Sweep", "", "",
			fmt.Sprintf("invalid k range [%d,%d]", kmin, kmax))
	}

	curve := make([]ElbowPoint, 0, kmax-kmin+1)
	for k := kmin; k <= kmax; k++ {
		result, err := KMeans(m, k, seed+int64(k))
		if err != nil {
			return nil, err
		}
		curve = append(curve, ElbowPoint{K: k, Distortion: result.Distortion})
	}
	return curve, nil
}

// plusPlusInit seeds centroids with k-means++: the first uniformly, the
// rest weighted by squared distance to the nearest chosen centroid.
func plusPlusInit(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := rng.Intn(len(data))
	centroids = append(centroids, append([]float64(nil), data[first]...))

	dists := make([]float64, len(data))
	for len(centroids) < k {
		total := 0.0
		for i, row := range data {
			nearest := math.Inf(1)
			for _, c := range centroids {
				nearest = math.Min(nearest, sqDist(row, c))
			}
			dists[i] = nearest
			total += nearest
		}

		if total == 0 {
			// All remaining points coincide with a centroid; pick uniformly.
			centroids = append(centroids, append([]float64(nil), data[rng.Intn(len(data))]...))
			continue
		}

		target := rng.Float64() * total
		chosen := len(data) - 1
		acc := 0.0
		for i, d := range dists {
			acc += d
			if acc >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, append([]float64(nil), data[chosen]...))
	}
	return centroids
}

func sqDist(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
